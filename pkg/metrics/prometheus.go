package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// Метрики оптимизации
	OptimizationRunsTotal *prometheus.CounterVec
	OptimizationDuration  *prometheus.HistogramVec
	RunsInFlight          prometheus.Gauge
	BestCostValue         *prometheus.GaugeVec
	IterationsTotal       *prometheus.HistogramVec
	NeighborMovesTotal    *prometheus.CounterVec
	AcceptanceRate        *prometheus.GaugeVec
	TotalDistance         *prometheus.GaugeVec
	VehiclesUsed          *prometheus.GaugeVec

	// Метрики данных
	FleetSize     *prometheus.HistogramVec
	ShipmentCount *prometheus.HistogramVec

	// Метрики кэша
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Системные метрики
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		OptimizationRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "optimization_runs_total",
				Help:      "Total number of optimization runs",
			},
			[]string{"strategy", "status"},
		),

		OptimizationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "optimization_duration_seconds",
				Help:      "Duration of optimization runs",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"strategy"},
		),

		RunsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_in_flight",
				Help:      "Optimization runs currently in progress",
			},
		),

		BestCostValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "best_cost_value",
				Help:      "Defuzzified cost of the last best solution",
			},
			[]string{"strategy"},
		),

		IterationsTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "iterations_total",
				Help:      "Number of iterations per optimization run",
				Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
			},
			[]string{"strategy"},
		),

		NeighborMovesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "neighbor_moves_total",
				Help:      "Neighborhood moves by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		AcceptanceRate: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "acceptance_rate",
				Help:      "Share of accepted candidates in the last run",
			},
			[]string{"strategy"},
		),

		TotalDistance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "total_distance",
				Help:      "Total route distance of the last best solution",
			},
			[]string{"strategy"},
		),

		VehiclesUsed: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "vehicles_used",
				Help:      "Number of vehicles carrying shipments in the last best solution",
			},
			[]string{"strategy"},
		),

		FleetSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "fleet_size",
				Help:      "Number of vehicles in processed scenarios",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"operation"},
		),

		ShipmentCount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "shipment_count",
				Help:      "Number of shipments in processed scenarios",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000},
			},
			[]string{"operation"},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Plan cache hits",
			},
			[]string{"backend"},
		),

		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_misses_total",
				Help:      "Plan cache misses",
			},
			[]string{"backend"},
		),

		// Системные метрики
		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	prometheus.DefaultRegisterer.MustRegister(NewRuntimeCollector(namespace, subsystem))

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("cvrp", "")
	}
	return defaultMetrics
}

// RecordOptimizationRun записывает метрики одного запуска оптимизации
func (m *Metrics) RecordOptimizationRun(strategy string, success bool, duration time.Duration, bestCost float64, iterations int) {
	status := "success"
	if !success {
		status = "error"
	}

	m.OptimizationRunsTotal.WithLabelValues(strategy, status).Inc()
	m.OptimizationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	m.BestCostValue.WithLabelValues(strategy).Set(bestCost)
	m.IterationsTotal.WithLabelValues(strategy).Observe(float64(iterations))
}

// RecordNeighborMove записывает исход одного хода окрестности
func (m *Metrics) RecordNeighborMove(kind string, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.NeighborMovesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordScenarioSize записывает размер сценария
func (m *Metrics) RecordScenarioSize(operation string, vehicles, shipments int) {
	m.FleetSize.WithLabelValues(operation).Observe(float64(vehicles))
	m.ShipmentCount.WithLabelValues(operation).Observe(float64(shipments))
}

// RecordSolutionMetrics записывает агрегаты лучшего решения
func (m *Metrics) RecordSolutionMetrics(strategy string, acceptanceRate, totalDistance float64, vehiclesUsed int) {
	m.AcceptanceRate.WithLabelValues(strategy).Set(acceptanceRate)
	m.TotalDistance.WithLabelValues(strategy).Set(totalDistance)
	m.VehiclesUsed.WithLabelValues(strategy).Set(float64(vehiclesUsed))
}

// RecordCacheLookup записывает результат обращения к кэшу планов
func (m *Metrics) RecordCacheLookup(backend string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(backend).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(backend).Inc()
	}
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
