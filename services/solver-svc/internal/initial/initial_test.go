package initial

import (
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvrp/pkg/apperror"
	"cvrp/pkg/domain"
	"cvrp/pkg/logger"
	"cvrp/services/solver-svc/internal/routing"
)

func TestMain(m *testing.M) {
	logger.Init("error")
	os.Exit(m.Run())
}

func testNetwork() *domain.Network {
	locations := []*domain.Location{
		{Code: "D", Name: "Depot", Country: "China", Kind: domain.LocationKindDepot},
		{Code: "A", Name: "Alpha", Country: "China", Kind: domain.LocationKindDelivery},
		{Code: "B", Name: "Bravo", Country: "China", Kind: domain.LocationKindDelivery},
		{Code: "C", Name: "Charlie", Country: "Vietnam", Kind: domain.LocationKindDelivery},
	}
	connections := []*domain.Connection{
		domain.NewConnection("D", "A", 100, 2, domain.RoadTypeHighway, nil),
		domain.NewConnection("D", "B", 50, 1, domain.RoadTypeHighway, nil),
		domain.NewConnection("B", "C", 150, 3, domain.RoadTypeNational, nil),
	}
	return domain.NewNetwork(locations, connections, false)
}

func testFleet() []*domain.Vehicle {
	// 24 CBM / 3000 kg each
	return []*domain.Vehicle{
		{ID: "V1", Length: 6, Width: 2, Height: 2, MaxWeight: 3000},
		{ID: "V2", Length: 6, Width: 2, Height: 2, MaxWeight: 3000},
	}
}

func testShipments() []*domain.Shipment {
	return []*domain.Shipment{
		{ID: "s1", Volume: 8, Weight: 500, Destination: "A"},
		{ID: "s2", Volume: 6, Weight: 400, Destination: "B"},
		{ID: "s3", Volume: 10, Weight: 700, Destination: "C"},
		{ID: "s4", Volume: 4, Weight: 300, Destination: "A"},
	}
}

func newTestGenerator(vehicles []*domain.Vehicle, shipments []*domain.Shipment) *Generator {
	rng := rand.New(rand.NewSource(42))
	return NewGenerator(vehicles, shipments, testNetwork(), "D", rng, routing.MaxExactDefault)
}

func totalAssigned(vehicles []*domain.Vehicle) int {
	n := 0
	for _, v := range vehicles {
		n += len(v.Shipments)
	}
	return n
}

func TestGenerateUnknownStrategy(t *testing.T) {
	g := newTestGenerator(testFleet(), testShipments())

	sol, err := g.Generate("genetic")
	assert.Nil(t, sol)
	require.Error(t, err)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeUnknownStrategy, appErr.Code)
}

func TestGenerateAssignsAllStrategies(t *testing.T) {
	for _, strategy := range []string{StrategyFFDGrouped, StrategyFFD, StrategyRandom} {
		t.Run(strategy, func(t *testing.T) {
			vehicles := testFleet()
			g := newTestGenerator(vehicles, testShipments())

			sol, err := g.Generate(strategy)
			require.NoError(t, err)
			assert.Equal(t, 4, sol.ShipmentCount())
			assert.Equal(t, 4, totalAssigned(vehicles))
		})
	}
}

func TestGenerateResetsVehicleState(t *testing.T) {
	vehicles := testFleet()
	g := newTestGenerator(vehicles, testShipments())

	_, err := g.Generate(StrategyFFD)
	require.NoError(t, err)
	first := totalAssigned(vehicles)

	// A second run must not double-load anything.
	_, err = g.Generate(StrategyFFD)
	require.NoError(t, err)
	assert.Equal(t, first, totalAssigned(vehicles))

	for _, v := range vehicles {
		vol := 0.0
		for _, s := range v.Shipments {
			vol += s.Volume
		}
		assert.InDelta(t, vol, v.CurrentVolume, 1e-9)
	}
}

func TestGenerateFFDOrdersByVolume(t *testing.T) {
	// One small vehicle forces the big shipments in first.
	vehicles := []*domain.Vehicle{
		{ID: "V1", Length: 5, Width: 2, Height: 2, MaxWeight: 3000}, // 20 CBM
	}
	shipments := []*domain.Shipment{
		{ID: "small", Volume: 4, Weight: 100, Destination: "A"},
		{ID: "big", Volume: 18, Weight: 100, Destination: "B"},
	}
	g := newTestGenerator(vehicles, shipments)

	sol, err := g.Generate(StrategyFFD)
	require.NoError(t, err)

	// Descending volume: "big" is placed first and fills the truck, so
	// "small" no longer fits and is dropped.
	require.Equal(t, 1, sol.ShipmentCount())
	assert.Equal(t, "big", vehicles[0].Shipments[0].ID)
}

func TestGenerateFFDGroupedKeepsDestinationTogether(t *testing.T) {
	vehicles := testFleet()
	shipments := []*domain.Shipment{
		{ID: "a1", Volume: 8, Weight: 500, Destination: "A"},
		{ID: "c1", Volume: 9, Weight: 600, Destination: "C"},
		{ID: "a2", Volume: 7, Weight: 400, Destination: "A"},
		{ID: "c2", Volume: 8, Weight: 500, Destination: "C"},
	}
	g := newTestGenerator(vehicles, shipments)

	sol, err := g.Generate(StrategyFFDGrouped)
	require.NoError(t, err)
	require.Equal(t, 4, sol.ShipmentCount())

	// Each destination's shipments ended up on a single vehicle.
	vehicleFor := make(map[string]string)
	for _, v := range vehicles {
		for _, s := range v.Shipments {
			if prev, ok := vehicleFor[s.Destination]; ok {
				assert.Equal(t, prev, v.ID, "destination %s split across vehicles", s.Destination)
			}
			vehicleFor[s.Destination] = v.ID
		}
	}
}

func TestGenerateFFDGroupedFallsBackPerShipment(t *testing.T) {
	// Group of two 14 CBM shipments (28 total) fits no single 24 CBM
	// vehicle, but each piece fits separately.
	vehicles := testFleet()
	shipments := []*domain.Shipment{
		{ID: "x1", Volume: 14, Weight: 500, Destination: "A"},
		{ID: "x2", Volume: 14, Weight: 500, Destination: "A"},
	}
	g := newTestGenerator(vehicles, shipments)

	sol, err := g.Generate(StrategyFFDGrouped)
	require.NoError(t, err)
	assert.Equal(t, 2, sol.ShipmentCount())
	assert.Len(t, vehicles[0].Shipments, 1)
	assert.Len(t, vehicles[1].Shipments, 1)
}

func TestGenerateRandomDeterministicWithSeed(t *testing.T) {
	run := func() []string {
		vehicles := testFleet()
		g := newTestGenerator(vehicles, testShipments())
		_, err := g.Generate(StrategyRandom)
		require.NoError(t, err)

		var placed []string
		for _, v := range vehicles {
			for _, s := range v.Shipments {
				placed = append(placed, v.ID+":"+s.ID)
			}
		}
		return placed
	}

	assert.Equal(t, run(), run())
}

func TestGenerateRespectsCapacity(t *testing.T) {
	vehicles := testFleet()
	// More volume than the fleet can carry; overflow is dropped.
	shipments := []*domain.Shipment{
		{ID: "s1", Volume: 20, Weight: 1000, Destination: "A"},
		{ID: "s2", Volume: 20, Weight: 1000, Destination: "B"},
		{ID: "s3", Volume: 20, Weight: 1000, Destination: "C"},
	}
	g := newTestGenerator(vehicles, shipments)

	sol, err := g.Generate(StrategyFFD)
	require.NoError(t, err)
	assert.Equal(t, 2, sol.ShipmentCount())

	for _, v := range vehicles {
		assert.LessOrEqual(t, v.CurrentVolume, v.MaxVolume()*domain.CapacityTolerance)
		assert.LessOrEqual(t, v.CurrentWeight, v.MaxWeight*domain.CapacityTolerance)
	}
}
