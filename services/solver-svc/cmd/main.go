// Package main is the entry point for solver-svc.
//
// solver-svc assigns packed shipments to a fleet of trucks and orders each
// truck's delivery route, minimizing a fuzzy total cost via simulated
// annealing. It runs as a batch pipeline: load data, search, report, and
// optionally persist the run for later comparison.
//
// # Pipeline
//
// A run goes through the following stages:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                       Data Loading                          │
//	│  (internal/loader)                                          │
//	│  - Locations, routes, fleet, packing plan, historical costs │
//	│  - Network construction with optional distance precompute   │
//	├─────────────────────────────────────────────────────────────┤
//	│                  Initial Construction                       │
//	│  (internal/initial)                                         │
//	│  - ffd_grouped, ffd or random heuristic                     │
//	├─────────────────────────────────────────────────────────────┤
//	│                   Annealing Search                          │
//	│  (internal/annealing + internal/neighborhood)               │
//	│  - Weighted neighborhood moves: swap, transfer,             │
//	│    relocate, reverse                                        │
//	│  - Fuzzy cost evaluation, Boltzmann acceptance              │
//	│  - Periodic route re-ordering (internal/routing)            │
//	├─────────────────────────────────────────────────────────────┤
//	│                   Terminal Repair                           │
//	│  - Destination consolidation                                │
//	│  - Final route optimization and re-evaluation               │
//	├─────────────────────────────────────────────────────────────┤
//	│                 Validation & Reporting                      │
//	│  (internal/validate + internal/report)                      │
//	│  - Capacity and assignment checks                           │
//	│  - Historical cost comparison                               │
//	│  - Console, JSON, Excel and PDF outputs                     │
//	├─────────────────────────────────────────────────────────────┤
//	│                   Run Persistence                           │
//	│  (internal/repository, optional)                            │
//	│  - PostgreSQL record per run, queryable history             │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: CVRP_)
//  2. Config files (config.yaml, config/config.yaml, /etc/cvrp/config.yaml)
//  3. Default values
//
// Key configuration options (environment variable format):
//
//	# Search schedule
//	CVRP_SOLVER_INITIAL_TEMPERATURE     - Starting temperature (default: 2000)
//	CVRP_SOLVER_COOLING_RATE            - Geometric cooling factor (default: 0.995)
//	CVRP_SOLVER_TERMINATION_TEMPERATURE - Stop temperature (default: 0.1)
//	CVRP_SOLVER_MAX_ITERATIONS          - Iteration cap (default: 1000)
//	CVRP_SOLVER_CONSTRUCTION_STRATEGY   - ffd_grouped, ffd, random
//	CVRP_SOLVER_SEED                    - RNG seed, 0 for time-based
//	CVRP_SOLVER_DEFUZZIFICATION_METHOD  - centroid, bisector, mom, som, lom
//
//	# Input data
//	CVRP_DATA_LOCATIONS_FILE  - Depot and border crossing definitions
//	CVRP_DATA_ROUTES_FILE     - Road segments with per-country time windows
//	CVRP_DATA_FLEET_FILE      - Vehicle dimensions and capacities
//	CVRP_DATA_PACKING_FILE    - Shipments pre-assigned by the packing stage
//	CVRP_DATA_HISTORICAL_FILE - Past costs per vehicle (empty disables)
//
//	# Reporting
//	CVRP_REPORT_CONSOLE    - Print the result table to stdout
//	CVRP_REPORT_JSON_PATH  - JSON result path (empty disables)
//	CVRP_REPORT_EXCEL_PATH - Excel workbook path (empty disables)
//	CVRP_REPORT_PDF_PATH   - PDF report path (empty disables)
//
//	# Plan cache
//	CVRP_CACHE_ENABLED     - Reuse plans for identical scenarios
//	CVRP_CACHE_DRIVER      - memory, redis
//	CVRP_CACHE_DEFAULT_TTL - Cached plan lifetime
//
//	# Run history
//	CVRP_HISTORY_ENABLED - Persist runs to PostgreSQL
//	CVRP_HISTORY_KEEP    - Runs to keep per scenario, 0 keeps all
//	CVRP_DATABASE_HOST   - PostgreSQL host (and the usual port/user/password)
//
// # Observability
//
// Metrics (Prometheus, when CVRP_METRICS_ENABLED=true):
//
//	cvrp_solver_optimization_runs_total     - Runs by strategy and outcome
//	cvrp_solver_optimization_duration_seconds - Search duration histogram
//	cvrp_solver_neighbor_moves_total        - Moves by kind and acceptance
//	cvrp_solver_best_cost                   - Final defuzzified cost
//	cvrp_solver_cache_lookups_total         - Plan cache hits and misses
//
// Tracing (OpenTelemetry, when CVRP_TRACING_ENABLED=true) creates spans for
// the load, search and persist stages plus repository calls.
//
// # Cancellation
//
// SIGINT and SIGTERM cancel the search loop. The best solution found so far
// still goes through terminal repair and reporting, so an interrupted run
// produces a usable plan.
//
// # Exit codes
//
// The process exits non-zero when data loading fails, when the construction
// strategy is unknown, or when every configured report output fails. An
// infeasible best solution is reported with its violations but does not by
// itself fail the run.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cvrp/pkg/cache"
	"cvrp/pkg/config"
	"cvrp/pkg/database"
	"cvrp/pkg/fuzzy"
	"cvrp/pkg/logger"
	"cvrp/pkg/metrics"
	"cvrp/pkg/telemetry"
	solversvc "cvrp/services/solver-svc"
	"cvrp/services/solver-svc/internal/annealing"
	"cvrp/services/solver-svc/internal/loader"
	"cvrp/services/solver-svc/internal/report"
	"cvrp/services/solver-svc/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	// Сигналы останавливают поиск, но лучший найденный план всё равно
	// проходит финальную стадию и попадает в отчёт.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		serviceName := cfg.Tracing.ServiceName
		if serviceName == "" {
			serviceName = cfg.App.Name
		}
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: serviceName,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Log.Warn("Failed to shutdown telemetry", "error", err)
				}
			}()
			logger.Log.Info("Telemetry initialized", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Port); err != nil {
				logger.Log.Warn("Metrics server stopped", "error", err)
			}
		}()
	}

	var sc *loader.Scenario
	err = telemetry.TracedStage(ctx, "load_data", func(ctx context.Context) error {
		var err error
		sc, err = loader.Load(cfg.Data, cfg.Solver.PrecomputeDistances)
		return err
	})
	if err != nil {
		logger.Fatal("failed to load scenario", "error", err)
	}

	m.RecordScenarioSize("optimize", len(sc.Vehicles), len(sc.Shipments))

	rng := solversvc.NewRand(cfg.Solver.Seed)
	opt := solversvc.BuildOptimizer(cfg, sc, rng)

	method := fuzzy.DefuzzMethod(cfg.Solver.DefuzzificationMethod)
	if method == "" {
		method = fuzzy.DefuzzCentroid
	}
	strategy := cfg.Solver.ConstructionStrategy

	var planCache *cache.PlanCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			planCache = cache.NewPlanCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Log.Info("Plan cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	fingerprint := solversvc.ScenarioFingerprint(sc)
	scenarioLabel := "scenario-" + fingerprint[:12]

	res, fromCache := lookupCachedPlan(ctx, planCache, opt, sc, fingerprint, strategy, m, cfg.Cache.Driver)

	if res == nil {
		tracker := metrics.NewRunTracker(m.RunsInFlight)
		tracker.Start(strategy)
		start := time.Now()
		optErr := telemetry.Traced(ctx, "pipeline.optimize", func(ctx context.Context) error {
			var err error
			res, err = opt.Optimize(ctx, strategy)
			return err
		}, telemetry.ScenarioAttributes(len(sc.Vehicles), len(sc.Shipments))...)
		duration := time.Since(start)
		tracker.End(strategy)
		if optErr != nil {
			m.RecordOptimizationRun(strategy, false, duration, 0, 0)
			logger.Fatal("optimization failed", "error", optErr)
		}

		bestValue := res.BestCost.Defuzzify(method)
		m.RecordOptimizationRun(strategy, true, duration, bestValue, res.Statistics.Iterations)

		if planCache != nil {
			if err := planCache.Set(ctx, fingerprint, strategy, solversvc.CachedResultFrom(res, method), 0); err != nil {
				logger.Log.Warn("Failed to cache plan", "error", err)
			}
		}
	}

	data := report.NewData(scenarioLabel, res, method, cfg.Report.CurrencyUnit)
	m.RecordSolutionMetrics(strategy, data.AcceptanceRate(), res.Metrics.TotalDistance, res.Metrics.VehiclesUsed)

	if err := report.NewReporter(cfg.Report).Write(data); err != nil {
		logger.Fatal("reporting failed", "error", err)
	}

	if cfg.History.Enabled && !fromCache {
		err := telemetry.Traced(ctx, "pipeline.persist", func(ctx context.Context) error {
			return persistRun(ctx, cfg, scenarioLabel, strategy, data)
		}, telemetry.RunAttributes(strategy, res.Statistics.Iterations, data.BestCost, res.Metrics.TotalDistance)...)
		if err != nil {
			logger.Log.Error("Failed to persist run", "error", err)
		}
	}
}

// lookupCachedPlan пытается восстановить план из кэша. Возвращает nil при
// промахе или если кэшированные назначения не ложатся на текущий парк.
func lookupCachedPlan(
	ctx context.Context,
	planCache *cache.PlanCache,
	opt *annealing.Optimizer,
	sc *loader.Scenario,
	fingerprint, strategy string,
	m *metrics.Metrics,
	driver string,
) (*annealing.Result, bool) {
	if planCache == nil {
		return nil, false
	}

	cached, ok, err := planCache.Get(ctx, fingerprint, strategy)
	if err != nil {
		logger.Log.Warn("Plan cache lookup failed", "error", err)
		return nil, false
	}
	if !ok {
		m.RecordCacheLookup(driver, false)
		return nil, false
	}

	sol, ok := solversvc.ReplayAssignments(sc, cached.Assignments)
	if !ok {
		m.RecordCacheLookup(driver, false)
		return nil, false
	}

	m.RecordCacheLookup(driver, true)
	logger.Log.Info("Plan cache hit",
		"cost", cached.DefuzzifiedCost,
		"computed_at", cached.ComputedAt,
	)

	return opt.EvaluateSolution(sol), true
}

// persistRun сохраняет запись о запуске в PostgreSQL.
func persistRun(ctx context.Context, cfg *config.Config, scenario, strategy string, data *report.Data) error {
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database, repository.Migrations, repository.MigrationsDir); err != nil {
			return err
		}
	}

	resultData, err := json.Marshal(report.Payload(data))
	if err != nil {
		return err
	}

	res := data.Result
	run := &repository.Run{
		Scenario:      scenario,
		Strategy:      strategy,
		BestCost:      data.BestCost,
		CostLeft:      data.CostBounds.Left,
		CostPeak:      data.CostBounds.Peak,
		CostRight:     data.CostBounds.Right,
		TotalDistance: res.Metrics.TotalDistance,
		VehiclesUsed:  res.Metrics.VehiclesUsed,
		ShipmentCount: res.Metrics.TotalShipments,
		Iterations:    res.Statistics.Iterations,
		Accepted:      res.Statistics.Accepted,
		Rejected:      res.Statistics.Rejected,
		Improvements:  res.Statistics.Improvements,
		IsValid:       res.Validation.IsValid,
		Violations:    res.Validation.Violations,
		Tags:          cfg.History.Tags,
		ResultData:    resultData,
	}

	repo := repository.NewPostgresRunRepository(db)
	if err := repo.Create(ctx, run); err != nil {
		return err
	}

	logger.Log.Info("Run persisted", "run_id", run.ID, "scenario", scenario)

	if cfg.History.Keep > 0 {
		pruned, err := repo.PruneScenario(ctx, scenario, cfg.History.Keep)
		if err != nil {
			logger.Log.Warn("Failed to prune run history", "error", err)
		} else if pruned > 0 {
			logger.Log.Info("Pruned run history", "scenario", scenario, "removed", pruned)
		}
	}

	return nil
}
