// Package neighborhood produces candidate solutions for the annealing search
// by applying one randomly chosen move to a copy of the current solution.
//
// Four move kinds are used, weighted toward inter-vehicle exchanges:
//
//   - swap (0.4): exchange shipments between two vehicles, trying single,
//     common-destination and proximity variants in random order;
//   - transfer (0.3): move one to three shipments from one vehicle to another;
//   - relocate (0.2): reposition a shipment within its vehicle's route;
//   - reverse (0.1): reverse a segment of a vehicle's route.
//
// Capacity checks on moves are hard limits without tolerance. A move that
// finds no feasible change leaves the copy identical to the input; the
// caller still pays the evaluation, which matches how plateau states are
// explored.
package neighborhood

import (
	"cvrp/pkg/domain"
)

// Move kinds reported by Neighbor.
const (
	MoveSwap     = "swap"
	MoveTransfer = "transfer"
	MoveRelocate = "relocate"
	MoveReverse  = "reverse"
)

// proximityThreshold is the distance under which two delivery points are
// considered interchangeable for a proximity swap.
const proximityThreshold = 500.0

// Rand is the randomness source for move selection and operands.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// Generator builds neighbor solutions over a fixed network.
type Generator struct {
	net *domain.Network
	rng Rand
}

// NewGenerator creates a neighbor generator.
func NewGenerator(net *domain.Network, rng Rand) *Generator {
	return &Generator{net: net, rng: rng}
}

// Neighbor clones the solution, applies one weighted-random move to the clone
// and returns it together with the move kind that was attempted.
func (g *Generator) Neighbor(sol *domain.Solution) (*domain.Solution, string) {
	neighbor := sol.Clone()

	kind := g.pickMove()
	switch kind {
	case MoveSwap:
		g.swapBetweenVehicles(neighbor)
	case MoveTransfer:
		g.transferShipments(neighbor)
	case MoveRelocate:
		g.relocateWithinVehicle(neighbor)
	case MoveReverse:
		g.reverseSubroute(neighbor)
	}

	return neighbor, kind
}

func (g *Generator) pickMove() string {
	r := g.rng.Float64()
	switch {
	case r < 0.4:
		return MoveSwap
	case r < 0.7:
		return MoveTransfer
	case r < 0.9:
		return MoveRelocate
	default:
		return MoveReverse
	}
}

// swapBetweenVehicles exchanges shipments between two random vehicles. When
// one of the chosen pair is empty there is nothing to exchange, so the move
// degrades to a transfer.
func (g *Generator) swapBetweenVehicles(sol *domain.Solution) {
	if len(sol.Vehicles) < 2 {
		return
	}

	v1, v2 := g.pickPair(sol.Vehicles)
	if v1.IsEmpty() || v2.IsEmpty() {
		g.transferShipments(sol)
		return
	}

	strategies := []func(*domain.Vehicle, *domain.Vehicle) bool{
		g.singleSwap,
		g.destinationSwap,
		g.proximitySwap,
	}
	g.rng.Shuffle(len(strategies), func(i, j int) {
		strategies[i], strategies[j] = strategies[j], strategies[i]
	})

	for _, strategy := range strategies {
		if strategy(v1, v2) {
			return
		}
	}
}

// singleSwap exchanges one random shipment from each vehicle when both ends
// stay within volume and weight limits.
func (g *Generator) singleSwap(v1, v2 *domain.Vehicle) bool {
	i1 := g.rng.Intn(len(v1.Shipments))
	i2 := g.rng.Intn(len(v2.Shipments))
	return g.trySwap(v1, i1, v2, i2, true)
}

// destinationSwap exchanges two shipments bound for a destination served by
// both vehicles. Rebalances load while keeping the destination sets intact.
func (g *Generator) destinationSwap(v1, v2 *domain.Vehicle) bool {
	common := commonDestinations(v1, v2)
	if len(common) == 0 {
		return false
	}
	dest := common[g.rng.Intn(len(common))]

	c1 := shipmentIndexesFor(v1, dest)
	c2 := shipmentIndexesFor(v2, dest)
	if len(c1) == 0 || len(c2) == 0 {
		return false
	}

	i1 := c1[g.rng.Intn(len(c1))]
	i2 := c2[g.rng.Intn(len(c2))]
	return g.trySwap(v1, i1, v2, i2, true)
}

// proximitySwap exchanges the first found pair of shipments whose delivery
// points lie close to each other. Only volume is checked, matching the
// looser constraint historically applied to near-equivalent deliveries.
func (g *Generator) proximitySwap(v1, v2 *domain.Vehicle) bool {
	for i1, s1 := range v1.Shipments {
		for i2, s2 := range v2.Shipments {
			d := g.net.ShortestPathLength(s1.Destination, s2.Destination)
			if d < proximityThreshold {
				if g.trySwap(v1, i1, v2, i2, false) {
					return true
				}
			}
		}
	}
	return false
}

// trySwap performs the exchange of v1.Shipments[i1] and v2.Shipments[i2] if
// the post-swap loads fit. checkWeight selects whether the weight dimension
// is enforced in addition to volume.
func (g *Generator) trySwap(v1 *domain.Vehicle, i1 int, v2 *domain.Vehicle, i2 int, checkWeight bool) bool {
	s1 := v1.Shipments[i1]
	s2 := v2.Shipments[i2]

	v1Volume := v1.CurrentVolume - s1.Volume + s2.Volume
	v2Volume := v2.CurrentVolume - s2.Volume + s1.Volume
	if v1Volume > v1.MaxVolume() || v2Volume > v2.MaxVolume() {
		return false
	}
	if checkWeight {
		v1Weight := v1.CurrentWeight - s1.Weight + s2.Weight
		v2Weight := v2.CurrentWeight - s2.Weight + s1.Weight
		if v1Weight > v1.MaxWeight || v2Weight > v2.MaxWeight {
			return false
		}
	}

	v1.UnloadAt(i1)
	v2.UnloadAt(i2)
	v1.Load(s2)
	v2.Load(s1)
	return true
}

// transferShipments moves up to three random shipments from a loaded vehicle
// to any other vehicle, if the receiver can take the batch.
func (g *Generator) transferShipments(sol *domain.Solution) {
	active := sol.ActiveVehicles()
	if len(active) == 0 || len(sol.Vehicles) < 2 {
		return
	}

	source := active[g.rng.Intn(len(active))]
	targets := make([]*domain.Vehicle, 0, len(sol.Vehicles)-1)
	for _, v := range sol.Vehicles {
		if v != source {
			targets = append(targets, v)
		}
	}
	target := targets[g.rng.Intn(len(targets))]

	limit := len(source.Shipments)
	if limit > 3 {
		limit = 3
	}
	count := 1 + g.rng.Intn(limit)

	indexes := g.sampleIndexes(len(source.Shipments), count)

	batchVolume := 0.0
	batchWeight := 0.0
	for _, i := range indexes {
		batchVolume += source.Shipments[i].Volume
		batchWeight += source.Shipments[i].Weight
	}

	if !target.CanFit(batchVolume, batchWeight) {
		return
	}

	// Unload back to front so earlier indexes stay valid.
	for k := len(indexes) - 1; k >= 0; k-- {
		target.Load(source.UnloadAt(indexes[k]))
	}
}

// relocateWithinVehicle moves one shipment to another position inside the
// same route. Capacity is unaffected, only the visiting order changes.
func (g *Generator) relocateWithinVehicle(sol *domain.Solution) {
	candidates := vehiclesWithAtLeast(sol, 2)
	if len(candidates) == 0 {
		return
	}
	v := candidates[g.rng.Intn(len(candidates))]

	oldPos := g.rng.Intn(len(v.Shipments))
	newPos := g.rng.Intn(len(v.Shipments))
	if oldPos == newPos {
		return
	}

	s := v.Shipments[oldPos]
	v.Shipments = append(v.Shipments[:oldPos], v.Shipments[oldPos+1:]...)
	v.Shipments = append(v.Shipments, nil)
	copy(v.Shipments[newPos+1:], v.Shipments[newPos:])
	v.Shipments[newPos] = s
}

// reverseSubroute reverses a random segment of at least two shipments inside
// one vehicle's route.
func (g *Generator) reverseSubroute(sol *domain.Solution) {
	candidates := vehiclesWithAtLeast(sol, 3)
	if len(candidates) == 0 {
		return
	}
	v := candidates[g.rng.Intn(len(candidates))]

	n := len(v.Shipments)
	start := g.rng.Intn(n - 2)
	end := start + 2 + g.rng.Intn(n-start-1)

	for i, j := start, end-1; i < j; i, j = i+1, j-1 {
		v.Shipments[i], v.Shipments[j] = v.Shipments[j], v.Shipments[i]
	}
}

// ConsolidateDestinations is a repair pass that gathers shipments bound for
// the same destination onto the vehicle with the most free volume among the
// vehicles already serving it. Applied to the best solution after the search
// terminates.
func ConsolidateDestinations(sol *domain.Solution) {
	type placement struct {
		vehicle  *domain.Vehicle
		shipment *domain.Shipment
	}

	byDest := make(map[string][]placement)
	var destOrder []string
	for _, v := range sol.Vehicles {
		for _, s := range v.Shipments {
			if _, ok := byDest[s.Destination]; !ok {
				destOrder = append(destOrder, s.Destination)
			}
			byDest[s.Destination] = append(byDest[s.Destination], placement{vehicle: v, shipment: s})
		}
	}

	for _, dest := range destOrder {
		items := byDest[dest]
		if len(items) <= 1 {
			continue
		}

		seen := make(map[*domain.Vehicle]bool)
		var serving []*domain.Vehicle
		for _, p := range items {
			if !seen[p.vehicle] {
				seen[p.vehicle] = true
				serving = append(serving, p.vehicle)
			}
		}
		if len(serving) <= 1 {
			continue
		}

		best := serving[0]
		for _, v := range serving[1:] {
			if v.MaxVolume()-v.CurrentVolume > best.MaxVolume()-best.CurrentVolume {
				best = v
			}
		}

		for _, p := range items {
			if p.vehicle == best {
				continue
			}
			if best.CurrentVolume+p.shipment.Volume <= best.MaxVolume() {
				if removeShipment(p.vehicle, p.shipment) {
					best.Load(p.shipment)
				}
			}
		}
	}
}

func (g *Generator) pickPair(vehicles []*domain.Vehicle) (*domain.Vehicle, *domain.Vehicle) {
	i := g.rng.Intn(len(vehicles))
	j := g.rng.Intn(len(vehicles) - 1)
	if j >= i {
		j++
	}
	return vehicles[i], vehicles[j]
}

// sampleIndexes returns count distinct indexes from [0, n) in ascending order.
func (g *Generator) sampleIndexes(n, count int) []int {
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	g.rng.Shuffle(n, func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	picked := all[:count]

	// Ascending order simplifies removal bookkeeping for the caller.
	for i := 1; i < len(picked); i++ {
		for j := i; j > 0 && picked[j] < picked[j-1]; j-- {
			picked[j], picked[j-1] = picked[j-1], picked[j]
		}
	}
	return picked
}

func commonDestinations(v1, v2 *domain.Vehicle) []string {
	in1 := make(map[string]bool, len(v1.Shipments))
	for _, s := range v1.Shipments {
		in1[s.Destination] = true
	}

	seen := make(map[string]bool)
	var common []string
	for _, s := range v2.Shipments {
		if in1[s.Destination] && !seen[s.Destination] {
			seen[s.Destination] = true
			common = append(common, s.Destination)
		}
	}
	return common
}

func shipmentIndexesFor(v *domain.Vehicle, dest string) []int {
	var indexes []int
	for i, s := range v.Shipments {
		if s.Destination == dest {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

func vehiclesWithAtLeast(sol *domain.Solution, n int) []*domain.Vehicle {
	var out []*domain.Vehicle
	for _, v := range sol.Vehicles {
		if len(v.Shipments) >= n {
			out = append(out, v)
		}
	}
	return out
}

// removeShipment unloads the given shipment from the vehicle by identity.
func removeShipment(v *domain.Vehicle, s *domain.Shipment) bool {
	for i, held := range v.Shipments {
		if held == s {
			v.UnloadAt(i)
			return true
		}
	}
	return false
}
