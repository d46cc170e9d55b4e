// services/solver-svc/factory.go
package solversvc

import (
	"math/rand"
	"time"

	"cvrp/pkg/cache"
	"cvrp/pkg/config"
	"cvrp/pkg/domain"
	"cvrp/pkg/fuzzy"
	"cvrp/services/solver-svc/internal/annealing"
	"cvrp/services/solver-svc/internal/costing"
	"cvrp/services/solver-svc/internal/loader"
	"cvrp/services/solver-svc/internal/validate"
)

// NewRand создаёт генератор случайных чисел. Нулевой seed означает
// недетерминированный запуск от текущего времени.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ParametersFromConfig переносит настройки расписания поиска из конфигурации.
func ParametersFromConfig(cfg config.SolverConfig) annealing.Parameters {
	params := annealing.DefaultParameters()

	if cfg.InitialTemperature > 0 {
		params.InitialTemperature = cfg.InitialTemperature
	}
	if cfg.CoolingRate > 0 && cfg.CoolingRate < 1 {
		params.CoolingRate = cfg.CoolingRate
	}
	if cfg.TerminationTemperature > 0 {
		params.TerminationTemperature = cfg.TerminationTemperature
	}
	if cfg.MaxIterations > 0 {
		params.MaxIterations = cfg.MaxIterations
	}
	if cfg.MinAcceptanceThreshold > 0 {
		params.MinAcceptance = cfg.MinAcceptanceThreshold
	}

	return params
}

// BuildOptimizer собирает оптимизатор для сценария по конфигурации.
func BuildOptimizer(cfg *config.Config, sc *loader.Scenario, rng *rand.Rand) *annealing.Optimizer {
	method := fuzzy.DefuzzMethod(cfg.Solver.DefuzzificationMethod)
	if method == "" {
		method = fuzzy.DefuzzCentroid
	}

	calc := costing.NewCalculator(costing.DefaultParameters(), method)
	validator := validate.NewValidator(sc.Historical, method)

	return annealing.NewOptimizer(
		sc.Vehicles,
		sc.Shipments,
		sc.Network,
		sc.Depot,
		calc,
		validator,
		ParametersFromConfig(cfg.Solver),
		rng,
	).
		WithDefuzzMethod(method).
		WithMaxExactDestinations(cfg.Solver.MaxExactDestinations).
		WithRouteOptimizationPeriod(cfg.Solver.RouteOptimizationPeriod)
}

// ScenarioFingerprint возвращает хеш входных данных сценария.
// Одинаковые файлы дают одинаковый хеш независимо от порядка записей.
func ScenarioFingerprint(sc *loader.Scenario) string {
	return cache.ScenarioHash(sc.Locations, sc.Connections, sc.Vehicles, sc.Shipments)
}

// CachedResultFrom сворачивает результат поиска в кэшируемую форму:
// стоимость, сводные метрики и назначения грузов по машинам.
func CachedResultFrom(res *annealing.Result, method fuzzy.DefuzzMethod) *cache.CachedPlanResult {
	assignments := make(map[string][]string, len(res.BestSolution.Vehicles))
	for _, v := range res.BestSolution.Vehicles {
		if v.IsEmpty() {
			continue
		}
		ids := make([]string, 0, len(v.Shipments))
		for _, s := range v.Shipments {
			ids = append(ids, s.ID)
		}
		assignments[v.ID] = ids
	}

	return &cache.CachedPlanResult{
		CostLeft:        res.BestCost.Left,
		CostPeak:        res.BestCost.Peak,
		CostRight:       res.BestCost.Right,
		DefuzzifiedCost: res.BestCost.Defuzzify(method),
		Valid:           res.Validation.IsValid,
		Iterations:      res.Statistics.Iterations,
		TotalDistance:   res.Metrics.TotalDistance,
		Assignments:     assignments,
	}
}

// ReplayAssignments восстанавливает решение из кэшированных назначений.
// Возвращает false, если парк или список грузов с тех пор изменился.
func ReplayAssignments(sc *loader.Scenario, assignments map[string][]string) (*domain.Solution, bool) {
	shipmentsByID := make(map[string]*domain.Shipment, len(sc.Shipments))
	for _, s := range sc.Shipments {
		shipmentsByID[s.ID] = s
	}

	vehiclesByID := make(map[string]*domain.Vehicle, len(sc.Vehicles))
	for _, v := range sc.Vehicles {
		v.Reset()
		vehiclesByID[v.ID] = v
	}

	for vehicleID, shipmentIDs := range assignments {
		v, ok := vehiclesByID[vehicleID]
		if !ok {
			return nil, false
		}
		for _, id := range shipmentIDs {
			s, ok := shipmentsByID[id]
			if !ok {
				return nil, false
			}
			v.Load(s)
		}
	}

	return domain.NewSolution(sc.Vehicles), true
}
