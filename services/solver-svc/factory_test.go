package solversvc

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvrp/pkg/config"
	"cvrp/pkg/domain"
	"cvrp/pkg/fuzzy"
	"cvrp/pkg/logger"
	"cvrp/services/solver-svc/internal/annealing"
	"cvrp/services/solver-svc/internal/loader"
	"cvrp/services/solver-svc/internal/validate"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

func testScenario() *loader.Scenario {
	locations := []*domain.Location{
		{Code: "KM", Name: "Kunming", Country: "China", Kind: domain.LocationKindDepot},
		{Code: "HN", Name: "Hanoi", Country: "Vietnam", Kind: domain.LocationKindDelivery},
		{Code: "HP", Name: "Haiphong", Country: "Vietnam", Kind: domain.LocationKindDelivery},
	}
	connections := []*domain.Connection{
		domain.NewConnection("KM", "HN", 700, 13, domain.RoadTypeHighway, nil),
		domain.NewConnection("HN", "HP", 120, 2.5, domain.RoadTypeHighway, nil),
	}
	vehicles := []*domain.Vehicle{
		{ID: "V1", Length: 6, Width: 2.4, Height: 2.5, MaxWeight: 5000},
		{ID: "V2", Length: 4, Width: 2, Height: 2, MaxWeight: 3000},
	}
	shipments := []*domain.Shipment{
		{ID: "s1", Volume: 10, Weight: 1200, Origin: "KM", Destination: "HN"},
		{ID: "s2", Volume: 6, Weight: 800, Origin: "KM", Destination: "HP"},
	}

	net := domain.NewNetwork(locations, connections, false)
	return &loader.Scenario{
		Network:     net,
		Depot:       "KM",
		Vehicles:    vehicles,
		Shipments:   shipments,
		Locations:   locations,
		Connections: connections,
	}
}

func TestNewRand(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}

	// Нулевой seed допустим и даёт рабочий генератор.
	require.NotNil(t, NewRand(0))
}

func TestParametersFromConfigDefaults(t *testing.T) {
	params := ParametersFromConfig(config.SolverConfig{})
	assert.Equal(t, annealing.DefaultParameters(), params)
}

func TestParametersFromConfigOverrides(t *testing.T) {
	params := ParametersFromConfig(config.SolverConfig{
		InitialTemperature:     5000,
		CoolingRate:            0.99,
		TerminationTemperature: 0.5,
		MaxIterations:          2500,
		MinAcceptanceThreshold: 0.001,
	})

	assert.Equal(t, 5000.0, params.InitialTemperature)
	assert.Equal(t, 0.99, params.CoolingRate)
	assert.Equal(t, 0.5, params.TerminationTemperature)
	assert.Equal(t, 2500, params.MaxIterations)
	assert.Equal(t, 0.001, params.MinAcceptance)
}

func TestParametersFromConfigRejectsInvalidCoolingRate(t *testing.T) {
	def := annealing.DefaultParameters()

	params := ParametersFromConfig(config.SolverConfig{CoolingRate: 1.5})
	assert.Equal(t, def.CoolingRate, params.CoolingRate)

	params = ParametersFromConfig(config.SolverConfig{CoolingRate: -0.1})
	assert.Equal(t, def.CoolingRate, params.CoolingRate)
}

func TestBuildOptimizer(t *testing.T) {
	cfg := &config.Config{}
	cfg.Solver.MaxIterations = 100

	opt := BuildOptimizer(cfg, testScenario(), NewRand(42))
	require.NotNil(t, opt)
}

func TestScenarioFingerprint(t *testing.T) {
	a := ScenarioFingerprint(testScenario())
	b := ScenarioFingerprint(testScenario())
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	// Любое изменение входа меняет отпечаток.
	changed := testScenario()
	changed.Shipments[0].Volume = 11
	assert.NotEqual(t, a, ScenarioFingerprint(changed))
}

func cachedFixtureResult(sc *loader.Scenario) *annealing.Result {
	sc.Vehicles[0].Load(sc.Shipments[0])
	sc.Vehicles[0].Load(sc.Shipments[1])

	return &annealing.Result{
		BestSolution: domain.NewSolution(sc.Vehicles),
		BestCost:     fuzzy.MustNew(900, 1000, 1100),
		Validation:   validate.NewResult(),
		Metrics:      annealing.Metrics{TotalDistance: 820},
		Statistics:   annealing.Statistics{Iterations: 1000},
	}
}

func TestCachedResultFrom(t *testing.T) {
	sc := testScenario()
	res := cachedFixtureResult(sc)

	cached := CachedResultFrom(res, fuzzy.DefuzzCentroid)
	assert.Equal(t, 900.0, cached.CostLeft)
	assert.Equal(t, 1000.0, cached.CostPeak)
	assert.Equal(t, 1100.0, cached.CostRight)
	assert.InDelta(t, 1000.0, cached.DefuzzifiedCost, 1e-9)
	assert.True(t, cached.Valid)
	assert.Equal(t, 1000, cached.Iterations)
	assert.Equal(t, 820.0, cached.TotalDistance)

	// Пустые машины в назначения не попадают.
	require.Len(t, cached.Assignments, 1)
	assert.Equal(t, []string{"s1", "s2"}, cached.Assignments["V1"])
}

func TestReplayAssignmentsRoundTrip(t *testing.T) {
	sc := testScenario()
	cached := CachedResultFrom(cachedFixtureResult(sc), fuzzy.DefuzzCentroid)

	// Повтор на свежем сценарии с тем же парком.
	fresh := testScenario()
	sol, ok := ReplayAssignments(fresh, cached.Assignments)
	require.True(t, ok)
	require.NotNil(t, sol)

	require.Len(t, sol.Vehicles, 2)
	v1 := sol.Vehicles[0]
	require.Len(t, v1.Shipments, 2)
	assert.Equal(t, "s1", v1.Shipments[0].ID)
	assert.Equal(t, "s2", v1.Shipments[1].ID)
	assert.InDelta(t, 16.0, v1.CurrentVolume, 1e-9)
	assert.InDelta(t, 2000.0, v1.CurrentWeight, 1e-9)
	assert.True(t, sol.Vehicles[1].IsEmpty())
}

func TestReplayAssignmentsUnknownVehicle(t *testing.T) {
	sc := testScenario()
	_, ok := ReplayAssignments(sc, map[string][]string{"V9": {"s1"}})
	assert.False(t, ok)
}

func TestReplayAssignmentsUnknownShipment(t *testing.T) {
	sc := testScenario()
	_, ok := ReplayAssignments(sc, map[string][]string{"V1": {"missing"}})
	assert.False(t, ok)
}
