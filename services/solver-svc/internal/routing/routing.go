// Package routing orders a vehicle's destinations to minimize travel
// distance.
//
// Small destination sets (at most MaxExactDefault distinct stops) are solved
// exactly by enumerating every permutation. Larger sets fall back to a
// nearest-neighbor construction followed by repeated full 2-opt passes until
// no improving segment reversal remains, so the heuristic result is a true
// local optimum rather than the outcome of a single sweep.
//
// All functions are deterministic: permutations are enumerated in a fixed
// order and ties are broken by the first candidate found.
package routing

import (
	"math"

	"cvrp/pkg/domain"
)

// MaxExactDefault is the largest distinct-destination count solved by exact
// permutation search. 5! = 120 orderings keeps enumeration cheap.
const MaxExactDefault = 5

// NearestNeighbor builds a route greedily, always moving to the closest
// unvisited destination. Destinations unreachable from the current position
// are appended in their original order.
func NearestNeighbor(net *domain.Network, origin string, destinations []string) []string {
	if len(destinations) == 0 {
		return nil
	}

	route := make([]string, 0, len(destinations))
	unvisited := make(map[string]bool, len(destinations))
	for _, d := range destinations {
		unvisited[d] = true
	}

	current := origin
	for len(unvisited) > 0 {
		bestNext := ""
		bestDistance := math.Inf(1)

		for _, d := range destinations {
			if !unvisited[d] {
				continue
			}
			if dist := net.ShortestPathLength(current, d); dist < bestDistance {
				bestDistance = dist
				bestNext = d
			}
		}

		if bestNext == "" {
			// Nothing reachable from here. Keep the rest in input order.
			for _, d := range destinations {
				if unvisited[d] {
					route = append(route, d)
				}
			}
			break
		}

		route = append(route, bestNext)
		delete(unvisited, bestNext)
		current = bestNext
	}

	return route
}

// TwoOptImprove repeatedly reverses route segments whose reversal shortens
// the total distance, until no improving reversal exists.
func TwoOptImprove(net *domain.Network, origin string, route []string) []string {
	if len(route) < 3 {
		return route
	}

	current := make([]string, len(route))
	copy(current, route)

	improved := true
	for improved {
		improved = false

		for i := 0; i < len(current)-1; i++ {
			for j := i + 2; j < len(current); j++ {
				prev := origin
				if i > 0 {
					prev = current[i-1]
				}

				currCost := net.ShortestPathLength(prev, current[i]) +
					net.ShortestPathLength(current[j-1], current[j])
				newCost := net.ShortestPathLength(prev, current[j-1]) +
					net.ShortestPathLength(current[i], current[j])

				if newCost < currCost {
					reverseSegment(current, i, j)
					improved = true
				}
			}
		}
	}

	return current
}

// reverseSegment reverses current[i:j] (half-open) in place.
func reverseSegment(s []string, i, j int) {
	for lo, hi := i, j-1; lo < hi; lo, hi = lo+1, hi-1 {
		s[lo], s[hi] = s[hi], s[lo]
	}
}

// OptimizeRoute orders destinations with nearest-neighbor construction
// followed by 2-opt improvement.
func OptimizeRoute(net *domain.Network, origin string, destinations []string) []string {
	route := NearestNeighbor(net, origin, destinations)
	return TwoOptImprove(net, origin, route)
}

// OptimizeRouteExact orders destinations optimally when their count is at
// most maxExact, enumerating every permutation and keeping the first ordering
// with minimum total distance. Larger sets delegate to OptimizeRoute.
func OptimizeRouteExact(net *domain.Network, origin string, destinations []string, maxExact int) []string {
	if len(destinations) == 0 {
		return nil
	}

	if len(destinations) > maxExact {
		return OptimizeRoute(net, origin, destinations)
	}

	best := make([]string, len(destinations))
	copy(best, destinations)
	bestCost := math.Inf(1)

	perm := make([]string, len(destinations))
	copy(perm, destinations)

	permute(perm, 0, func(candidate []string) {
		cost := RouteDistance(net, origin, candidate)
		if cost < bestCost {
			bestCost = cost
			copy(best, candidate)
		}
	})

	return best
}

// permute enumerates permutations of s[k:] in a deterministic order,
// invoking visit for each complete permutation.
func permute(s []string, k int, visit func([]string)) {
	if k == len(s) {
		visit(s)
		return
	}
	for i := k; i < len(s); i++ {
		s[k], s[i] = s[i], s[k]
		permute(s, k+1, visit)
		s[k], s[i] = s[i], s[k]
	}
}

// RouteDistance returns the total distance of visiting route in order,
// starting from origin.
func RouteDistance(net *domain.Network, origin string, route []string) float64 {
	if len(route) == 0 {
		return 0
	}

	total := net.ShortestPathLength(origin, route[0])
	for i := 0; i+1 < len(route); i++ {
		total += net.ShortestPathLength(route[i], route[i+1])
	}
	return total
}

// EvaluateRouteEfficiency scores a route as a penalty: lower is better.
//
// The score is the total distance plus 2000 per repeated destination plus a
// backtracking penalty. Backtracking is sampled on every other consecutive
// triple (step 2, not 1) to halve the number of distance lookups; when
// routing through the middle stop exceeds 1.3x the direct distance, twice
// the detour is added. An unreachable leg makes the score infinite.
func EvaluateRouteEfficiency(net *domain.Network, origin string, route []string) float64 {
	if len(route) <= 1 {
		return 0
	}

	penalty := 0.0

	seen := make(map[string]bool, len(route))
	for _, dest := range route {
		if seen[dest] {
			penalty += 2000
		}
		seen[dest] = true
	}

	full := make([]string, 0, len(route)+1)
	full = append(full, origin)
	full = append(full, route...)

	totalDistance := 0.0
	for i := 0; i+1 < len(full); i++ {
		dist := net.ShortestPathLength(full[i], full[i+1])
		if math.IsInf(dist, 1) {
			return math.Inf(1)
		}
		totalDistance += dist
	}

	for i := 0; i+2 < len(full); i += 2 {
		a, b, c := full[i], full[i+1], full[i+2]
		direct := net.ShortestPathLength(a, c)
		through := net.ShortestPathLength(a, b) + net.ShortestPathLength(b, c)

		if through > direct*1.3 {
			penalty += (through - direct) * 2
		}
	}

	return totalDistance + penalty
}

// OptimizeSolutionRoutes reorders every vehicle's shipments so their
// destinations follow the optimized route order. The reorder is stable:
// shipments sharing a destination keep their relative order.
func OptimizeSolutionRoutes(sol *domain.Solution, net *domain.Network, origin string, maxExact int) {
	for _, v := range sol.Vehicles {
		if len(v.Shipments) == 0 {
			continue
		}

		destinations := v.Destinations()
		order := OptimizeRouteExact(net, origin, destinations, maxExact)

		rank := make(map[string]int, len(order))
		for i, dest := range order {
			rank[dest] = i
		}

		reorderStable(v.Shipments, rank)
	}
}

// reorderStable sorts shipments by destination rank, preserving the relative
// order of shipments with equal rank. Destinations missing from the rank map
// sort last.
func reorderStable(shipments []*domain.Shipment, rank map[string]int) {
	rankOf := func(s *domain.Shipment) int {
		if r, ok := rank[s.Destination]; ok {
			return r
		}
		return len(rank)
	}

	// Insertion sort keeps the reorder stable without allocating.
	for i := 1; i < len(shipments); i++ {
		for j := i; j > 0 && rankOf(shipments[j]) < rankOf(shipments[j-1]); j-- {
			shipments[j], shipments[j-1] = shipments[j-1], shipments[j]
		}
	}
}
