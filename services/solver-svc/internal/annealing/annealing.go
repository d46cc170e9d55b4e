// Package annealing implements the simulated annealing search that drives
// the vehicle routing optimizer.
//
// The search starts from a constructed initial assignment, repeatedly applies
// one neighborhood move per iteration and accepts worse candidates with a
// probability that decays geometrically with temperature. Costs are triangular
// fuzzy numbers; acceptance and best tracking compare their defuzzified
// values.
//
// # Determinism
//
// All randomness flows through the injected rand source, so a fixed seed
// reproduces the full trajectory of the search.
//
// # Context Support
//
// Optimize honors context cancellation between iterations. A cancelled search
// still runs the terminal consolidation pass and returns the best solution
// found so far.
package annealing

import (
	"context"
	"math"

	"cvrp/pkg/domain"
	"cvrp/pkg/fuzzy"
	"cvrp/pkg/logger"
	"cvrp/pkg/metrics"
	"cvrp/services/solver-svc/internal/costing"
	"cvrp/services/solver-svc/internal/initial"
	"cvrp/services/solver-svc/internal/neighborhood"
	"cvrp/services/solver-svc/internal/routing"
	"cvrp/services/solver-svc/internal/validate"
)

// State identifies the phase the optimizer is in.
type State int32

const (
	// StateInitializing covers construction and evaluation of the first
	// solution.
	StateInitializing State = iota

	// StateSearching is the main temperature loop.
	StateSearching

	// StateTerminated means the search has finished and the terminal
	// consolidation pass has run.
	StateTerminated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "INITIALIZING"
	case StateSearching:
		return "SEARCHING"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// routeOptimizationInterval controls how often the freshly generated neighbor
// gets its routes re-optimized. Doing it every iteration dominates runtime on
// larger fleets without changing the search outcome much.
const routeOptimizationInterval = 50

// Thresholds below which a vehicle's load is considered wasteful and the
// utilization penalty applies.
const (
	minVolumeUtilization = 60.0
	minWeightUtilization = 30.0
)

// Parameters configures the annealing schedule.
//
// Zero values are not usable directly; start from DefaultParameters.
type Parameters struct {
	// InitialTemperature is the starting temperature of the schedule.
	InitialTemperature float64

	// CoolingRate is the geometric factor applied after every iteration,
	// including iterations whose candidate was invalid.
	CoolingRate float64

	// TerminationTemperature stops the search once the temperature falls
	// to or below it.
	TerminationTemperature float64

	// MaxIterations caps the number of iterations regardless of
	// temperature.
	MaxIterations int

	// MinAcceptance is the floor of the acceptance probability for
	// worsening moves. Keeps late-stage exploration alive when the
	// Boltzmann factor underflows.
	MinAcceptance float64
}

// DefaultParameters returns the schedule used in production runs.
func DefaultParameters() Parameters {
	return Parameters{
		InitialTemperature:     2000.0,
		CoolingRate:            0.995,
		TerminationTemperature: 0.1,
		MaxIterations:          1000,
		MinAcceptance:          0.0001,
	}
}

// Statistics are counters accumulated over one search.
type Statistics struct {
	Iterations   int `json:"iterations"`
	Accepted     int `json:"accepted"`
	Rejected     int `json:"rejected"`
	Improvements int `json:"improvements"`

	// BestCostHistory records the defuzzified best cost at the start of
	// the search and after every improvement, in order.
	BestCostHistory []float64 `json:"-"`
}

// VehicleMetrics describes one vehicle in the final solution. Vehicles that
// carry nothing still get an entry with zero values.
type VehicleMetrics struct {
	ShipmentCount     int      `json:"num_shipments"`
	Distance          float64  `json:"distance"`
	BorderCrossings   int      `json:"border_crossings"`
	VolumeUtilization float64  `json:"volume_utilization"`
	WeightUtilization float64  `json:"weight_utilization"`
	Route             []string `json:"route"`
}

// Metrics aggregates the final solution.
type Metrics struct {
	TotalDistance        float64                   `json:"total_distance"`
	TotalBorderCrossings int                       `json:"total_border_crossings"`
	VehiclesUsed         int                       `json:"vehicles_used"`
	TotalShipments       int                       `json:"total_shipments"`
	VehicleMetrics       map[string]VehicleMetrics `json:"vehicle_metrics"`
}

// Result bundles everything a caller needs from one optimization run.
type Result struct {
	BestSolution *domain.Solution
	BestCost     fuzzy.Triangular
	Validation   *validate.Result
	Metrics      Metrics
	Statistics   Statistics
}

// Rand is the randomness the optimizer consumes, a superset of what the
// construction and neighborhood generators need.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// Optimizer runs simulated annealing over a fixed scenario.
type Optimizer struct {
	vehicles  []*domain.Vehicle
	shipments []*domain.Shipment
	net       *domain.Network
	depot     string
	calc      *costing.Calculator
	validator *validate.Validator
	params    Parameters
	rng       Rand
	defuzz        fuzzy.DefuzzMethod
	maxExact      int
	routeInterval int

	construct *initial.Generator
	neighbors *neighborhood.Generator
	metrics   *metrics.Metrics

	state       State
	temperature float64
}

// NewOptimizer wires an optimizer for one scenario. depot is the location
// code all routes start from. The validator may carry historical costs for
// comparison; pass validate.NewValidator(nil, ...) when none exist.
func NewOptimizer(
	vehicles []*domain.Vehicle,
	shipments []*domain.Shipment,
	net *domain.Network,
	depot string,
	calc *costing.Calculator,
	validator *validate.Validator,
	params Parameters,
	rng Rand,
) *Optimizer {
	return &Optimizer{
		vehicles:    vehicles,
		shipments:   shipments,
		net:         net,
		depot:       depot,
		calc:        calc,
		validator:   validator,
		params:      params,
		rng:         rng,
		defuzz:        fuzzy.DefuzzCentroid,
		maxExact:      routing.MaxExactDefault,
		routeInterval: routeOptimizationInterval,
		construct:     initial.NewGenerator(vehicles, shipments, net, depot, rng, routing.MaxExactDefault),
		neighbors:     neighborhood.NewGenerator(net, rng),
		metrics:       metrics.Get(),
		state:         StateInitializing,
		temperature:   params.InitialTemperature,
	}
}

// WithDefuzzMethod sets the defuzzification method used when comparing
// candidate costs. Returns the receiver for chaining.
func (o *Optimizer) WithDefuzzMethod(method fuzzy.DefuzzMethod) *Optimizer {
	if method != "" {
		o.defuzz = method
	}
	return o
}

// WithMaxExactDestinations sets the route size up to which routes are
// ordered by exhaustive permutation instead of nearest-neighbor.
func (o *Optimizer) WithMaxExactDestinations(n int) *Optimizer {
	if n > 0 {
		o.maxExact = n
		o.construct = initial.NewGenerator(o.vehicles, o.shipments, o.net, o.depot, o.rng, n)
	}
	return o
}

// WithRouteOptimizationPeriod sets how many iterations pass between
// route re-ordering of the candidate solution.
func (o *Optimizer) WithRouteOptimizationPeriod(period int) *Optimizer {
	if period > 0 {
		o.routeInterval = period
	}
	return o
}

// State reports the current phase.
func (o *Optimizer) State() State {
	return o.state
}

// Temperature reports the current temperature of the schedule.
func (o *Optimizer) Temperature() float64 {
	return o.temperature
}

// Optimize runs the full search and returns the best solution found.
// strategy selects the initial construction heuristic; an unknown strategy
// fails before any search work is done.
func (o *Optimizer) Optimize(ctx context.Context, strategy string) (*Result, error) {
	o.state = StateInitializing
	o.temperature = o.params.InitialTemperature

	logger.Log.Info("Generating initial solution", "strategy", strategy)
	current, err := o.construct.Generate(strategy)
	if err != nil {
		return nil, err
	}

	currentCost, _ := o.evaluate(current)

	best := current.Clone()
	bestCost := currentCost
	bestValue := bestCost.Defuzzify(o.defuzz)

	stats := Statistics{
		BestCostHistory: []float64{bestValue},
	}

	logger.Log.Info("Initial cost", "cost", bestValue)

	o.state = StateSearching

	iteration := 0
	for o.temperature > o.params.TerminationTemperature && iteration < o.params.MaxIterations {
		if ctx.Err() != nil {
			logger.Log.Warn("Search cancelled", "iteration", iteration)
			break
		}

		neighbor, moveKind := o.neighbors.Neighbor(current)

		if iteration%o.routeInterval == 0 {
			routing.OptimizeSolutionRoutes(neighbor, o.net, o.depot, o.maxExact)
		}

		neighborCost, neighborValidation := o.evaluate(neighbor)

		if !neighborValidation.IsValid {
			stats.Rejected++
			o.metrics.RecordNeighborMove(moveKind, false)
			iteration++
			o.temperature *= o.params.CoolingRate
			continue
		}

		currentValue := currentCost.Defuzzify(o.defuzz)
		neighborValue := neighborCost.Defuzzify(o.defuzz)
		diff := neighborValue - currentValue

		if o.rng.Float64() < o.acceptanceProbability(diff) {
			current = neighbor
			currentCost = neighborCost
			stats.Accepted++
			o.metrics.RecordNeighborMove(moveKind, true)

			if neighborValue < bestValue {
				best = neighbor.Clone()
				bestCost = neighborCost
				bestValue = neighborValue
				stats.Improvements++
				stats.BestCostHistory = append(stats.BestCostHistory, bestValue)
				logger.Log.Info("New best solution",
					"cost", bestValue,
					"iteration", iteration,
				)
			}
		} else {
			stats.Rejected++
			o.metrics.RecordNeighborMove(moveKind, false)
		}

		o.temperature *= o.params.CoolingRate
		iteration++

		if iteration%100 == 0 {
			logger.Log.Info("Search progress",
				"iteration", iteration,
				"temperature", o.temperature,
				"current_cost", currentCost.Defuzzify(o.defuzz),
				"best_cost", bestValue,
			)
		}
	}

	stats.Iterations = iteration

	o.state = StateTerminated

	// Terminal repair: group same-destination shipments, redo all routes
	// with the full optimizer and take the resulting cost as final.
	neighborhood.ConsolidateDestinations(best)
	routing.OptimizeSolutionRoutes(best, o.net, o.depot, o.maxExact)
	finalCost, finalValidation := o.evaluate(best)

	logger.Log.Info("Optimization complete",
		"best_cost", finalCost.Defuzzify(o.defuzz),
		"iterations", stats.Iterations,
		"accepted", stats.Accepted,
		"rejected", stats.Rejected,
		"improvements", stats.Improvements,
	)

	return &Result{
		BestSolution: best,
		BestCost:     finalCost,
		Validation:   finalValidation,
		Metrics:      o.calculateMetrics(best),
		Statistics:   stats,
	}, nil
}

// EvaluateSolution prices and validates a ready-made solution without
// running the search. Used when a cached assignment is replayed onto the
// current fleet.
func (o *Optimizer) EvaluateSolution(sol *domain.Solution) *Result {
	routing.OptimizeSolutionRoutes(sol, o.net, o.depot, o.maxExact)
	cost, validation := o.evaluate(sol)

	return &Result{
		BestSolution: sol,
		BestCost:     cost,
		Validation:   validation,
		Metrics:      o.calculateMetrics(sol),
	}
}

// evaluate prices a solution and checks its feasibility. Per vehicle the
// cost is the route cost plus an underutilization penalty when volume or
// weight usage falls below the thresholds, plus a detour penalty scaled from
// the route efficiency score.
func (o *Optimizer) evaluate(sol *domain.Solution) (fuzzy.Triangular, *validate.Result) {
	total := fuzzy.Zero()
	costs := make(map[string]fuzzy.Triangular)

	for _, v := range sol.Vehicles {
		if v.IsEmpty() {
			continue
		}

		route := costing.ImplicitRoute(o.depot, v)
		routeCost := o.calc.RouteCost(route, o.net, v, v.Shipments)

		if v.VolumeUtilization() < minVolumeUtilization || v.WeightUtilization() < minWeightUtilization {
			routeCost = routeCost.Add(fuzzy.MustNew(500, 750, 1000))
		}

		if efficiency := routing.EvaluateRouteEfficiency(o.net, o.depot, route[1:]); efficiency > 0 {
			routeCost = routeCost.Add(fuzzy.MustNew(
				efficiency*0.1,
				efficiency*0.15,
				efficiency*0.2,
			))
		}

		costs[v.ID] = routeCost
		total = total.Add(routeCost)
	}

	return total, o.validator.ValidateSolution(sol, costs)
}

// acceptanceProbability returns 1 for non-worsening moves and a clamped
// Boltzmann factor otherwise.
func (o *Optimizer) acceptanceProbability(costDiff float64) float64 {
	if costDiff <= 0 {
		return 1.0
	}

	prob := math.Exp(-costDiff / math.Max(o.temperature, 0.001))
	return math.Max(o.params.MinAcceptance, math.Min(1.0, prob))
}

// calculateMetrics aggregates distances, border crossings and utilization
// for the final solution. Empty vehicles get explicit zero entries so the
// report can show the whole fleet.
func (o *Optimizer) calculateMetrics(sol *domain.Solution) Metrics {
	m := Metrics{
		VehicleMetrics: make(map[string]VehicleMetrics, len(sol.Vehicles)),
	}

	for _, v := range sol.Vehicles {
		if v.IsEmpty() {
			m.VehicleMetrics[v.ID] = VehicleMetrics{Route: []string{}}
			continue
		}

		m.VehiclesUsed++
		m.TotalShipments += len(v.Shipments)

		route := costing.ImplicitRoute(o.depot, v)
		distance := routing.RouteDistance(o.net, o.depot, route[1:])
		m.TotalDistance += distance

		crossings := o.countBorderCrossings(route)
		m.TotalBorderCrossings += crossings

		m.VehicleMetrics[v.ID] = VehicleMetrics{
			ShipmentCount:     len(v.Shipments),
			Distance:          distance,
			BorderCrossings:   crossings,
			VolumeUtilization: v.VolumeUtilization(),
			WeightUtilization: v.WeightUtilization(),
			Route:             o.namedRoute(route),
		}
	}

	return m
}

// countBorderCrossings walks the route and counts country changes.
// Locations without a known country do not reset the current country.
func (o *Optimizer) countBorderCrossings(route []string) int {
	if len(route) == 0 {
		return 0
	}

	crossings := 0
	country := o.net.GetCountry(route[0])
	for _, code := range route[1:] {
		next := o.net.GetCountry(code)
		if next != "" && next != country {
			crossings++
			country = next
		}
	}
	return crossings
}

// namedRoute maps location codes to display names, falling back to the code
// when no name is known.
func (o *Optimizer) namedRoute(route []string) []string {
	named := make([]string, len(route))
	for i, code := range route {
		if name, ok := o.net.NameByCode(code); ok {
			named[i] = name
		} else {
			named[i] = code
		}
	}
	return named
}
