// Package initial builds the first shipment-to-vehicle assignment that seeds
// the annealing search.
//
// Three strategies are supported:
//
//   - ffd_grouped (default): group shipments by destination, rank groups by
//     ascending distance from the depot then descending volume, and best-fit
//     each whole group onto one vehicle; groups that fit nowhere fall back to
//     per-shipment first-fit.
//   - ffd: plain First-Fit-Decreasing by shipment volume.
//   - random: shuffled shipment order and shuffled per-shipment vehicle order.
//
// Shipments that fit no vehicle are dropped from the candidate with a logged
// warning rather than failing the run. Every generated assignment is passed
// through route optimization before it is returned.
package initial

import (
	"sort"

	"cvrp/pkg/apperror"
	"cvrp/pkg/domain"
	"cvrp/pkg/logger"
	"cvrp/services/solver-svc/internal/routing"
)

// Supported construction strategies.
const (
	StrategyFFDGrouped = "ffd_grouped"
	StrategyFFD        = "ffd"
	StrategyRandom     = "random"
)

// Rand is the subset of math/rand used by the random strategy. A single
// seedable source shared with the annealing driver keeps runs reproducible.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Generator builds initial solutions over a fixed fleet and shipment set.
type Generator struct {
	vehicles  []*domain.Vehicle
	shipments []*domain.Shipment
	net       *domain.Network
	depot     string
	rng       Rand
	maxExact  int
}

// NewGenerator creates a generator. depot is the location code routes start
// from. rng is only consulted by the random strategy.
func NewGenerator(vehicles []*domain.Vehicle, shipments []*domain.Shipment, net *domain.Network, depot string, rng Rand, maxExact int) *Generator {
	if maxExact <= 0 {
		maxExact = routing.MaxExactDefault
	}
	return &Generator{
		vehicles:  vehicles,
		shipments: shipments,
		net:       net,
		depot:     depot,
		rng:       rng,
		maxExact:  maxExact,
	}
}

// Generate resets all vehicle state and builds a solution with the given
// strategy, then optimizes the resulting routes.
func (g *Generator) Generate(strategy string) (*domain.Solution, error) {
	for _, v := range g.vehicles {
		v.Reset()
	}

	switch strategy {
	case StrategyRandom:
		g.generateRandom()
	case StrategyFFD:
		g.generateFFD()
	case StrategyFFDGrouped:
		g.generateFFDGrouped()
	default:
		return nil, apperror.New(apperror.CodeUnknownStrategy,
			"unknown construction strategy: "+strategy)
	}

	sol := domain.NewSolution(g.vehicles)
	routing.OptimizeSolutionRoutes(sol, g.net, g.depot, g.maxExact)
	return sol, nil
}

func (g *Generator) generateRandom() {
	shuffled := make([]*domain.Shipment, len(g.shipments))
	copy(shuffled, g.shipments)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	order := make([]*domain.Vehicle, len(g.vehicles))

	for _, s := range shuffled {
		copy(order, g.vehicles)
		g.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		assigned := false
		for _, v := range order {
			if v.CanFitWithTolerance(s.Volume, s.Weight) {
				v.Load(s)
				assigned = true
				break
			}
		}
		if !assigned {
			logger.Log.Warn("Could not assign shipment", "shipment_id", s.ID)
		}
	}
}

func (g *Generator) generateFFD() {
	sorted := make([]*domain.Shipment, len(g.shipments))
	copy(sorted, g.shipments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Volume > sorted[j].Volume
	})

	for _, s := range sorted {
		if !g.firstFit(s) {
			logger.Log.Warn("Could not assign shipment", "shipment_id", s.ID)
		}
	}
}

// destinationGroup is one destination's shipments with ranking keys.
type destinationGroup struct {
	destination string
	shipments   []*domain.Shipment
	totalVolume float64
	distance    float64
}

func (g *Generator) generateFFDGrouped() {
	byDest := make(map[string][]*domain.Shipment)
	var destOrder []string
	for _, s := range g.shipments {
		if _, ok := byDest[s.Destination]; !ok {
			destOrder = append(destOrder, s.Destination)
		}
		byDest[s.Destination] = append(byDest[s.Destination], s)
	}

	groups := make([]destinationGroup, 0, len(destOrder))
	for _, dest := range destOrder {
		group := byDest[dest]
		totalVolume := 0.0
		for _, s := range group {
			totalVolume += s.Volume
		}
		groups = append(groups, destinationGroup{
			destination: dest,
			shipments:   group,
			totalVolume: totalVolume,
			distance:    g.net.ShortestPathLength(g.depot, dest),
		})
	}

	// Near destinations first; bigger groups first within equal distance.
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].distance != groups[j].distance {
			return groups[i].distance < groups[j].distance
		}
		return groups[i].totalVolume > groups[j].totalVolume
	})

	for _, group := range groups {
		sorted := make([]*domain.Shipment, len(group.shipments))
		copy(sorted, group.shipments)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Volume > sorted[j].Volume
		})

		groupVolume := 0.0
		groupWeight := 0.0
		for _, s := range sorted {
			groupVolume += s.Volume
			groupWeight += s.Weight
		}

		// Best fit: the vehicle left with the least residual volume.
		var best *domain.Vehicle
		bestRemaining := -1.0
		for _, v := range g.vehicles {
			if !v.CanFitWithTolerance(groupVolume, groupWeight) {
				continue
			}
			remaining := v.MaxVolume() - (v.CurrentVolume + groupVolume)
			if best == nil || remaining < bestRemaining {
				best = v
				bestRemaining = remaining
			}
		}

		if best != nil {
			for _, s := range sorted {
				best.Load(s)
			}
			logger.Log.Debug("Assigned destination group",
				"destination", group.destination,
				"shipments", len(sorted),
				"vehicle_id", best.ID,
			)
			continue
		}

		// Group does not fit anywhere as a whole. Place individually.
		for _, s := range sorted {
			if !g.firstFit(s) {
				logger.Log.Warn("Could not assign shipment", "shipment_id", s.ID)
			}
		}
	}
}

// firstFit loads the shipment onto the first vehicle that can hold it,
// in fleet order.
func (g *Generator) firstFit(s *domain.Shipment) bool {
	for _, v := range g.vehicles {
		if v.CanFitWithTolerance(s.Volume, s.Weight) {
			v.Load(s)
			return true
		}
	}
	return false
}
