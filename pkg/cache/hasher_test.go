package cache

import (
	"testing"

	"cvrp/pkg/domain"
)

func scenarioFixture() ([]*domain.Location, []*domain.Connection, []*domain.Vehicle, []*domain.Shipment) {
	locations := []*domain.Location{
		{Code: "A", Name: "Alpha", Country: "China", Kind: domain.LocationKindDepot},
		{Code: "B", Name: "Bravo", Country: "Vietnam", Kind: domain.LocationKindDelivery},
	}
	connections := []*domain.Connection{
		domain.NewConnection("A", "B", 100, 2, domain.RoadTypeHighway, nil),
	}
	vehicles := []*domain.Vehicle{
		{ID: "V1", Length: 10, Width: 2, Height: 2.5, MaxWeight: 1000, FuelCapacity: 400, FuelEfficiency: 0.3},
	}
	shipments := []*domain.Shipment{
		{ID: "S1", Volume: 5, Weight: 100, Destination: "B", Value: 500},
	}
	return locations, connections, vehicles, shipments
}

func TestScenarioHash(t *testing.T) {
	t.Run("same scenario produces same hash", func(t *testing.T) {
		locs, conns, vehicles, shipments := scenarioFixture()

		hash1 := ScenarioHash(locs, conns, vehicles, shipments)
		hash2 := ScenarioHash(locs, conns, vehicles, shipments)

		if hash1 != hash2 {
			t.Errorf("same scenario should produce same hash: %v != %v", hash1, hash2)
		}
	})

	t.Run("different scenarios produce different hashes", func(t *testing.T) {
		locs, conns, vehicles, shipments := scenarioFixture()
		hash1 := ScenarioHash(locs, conns, vehicles, shipments)

		changed := []*domain.Connection{
			domain.NewConnection("A", "B", 250, 2, domain.RoadTypeHighway, nil), // other distance
		}
		hash2 := ScenarioHash(locs, changed, vehicles, shipments)

		if hash1 == hash2 {
			t.Error("different scenarios should produce different hashes")
		}
	})

	t.Run("element order does not affect hash", func(t *testing.T) {
		locs, conns, vehicles, shipments := scenarioFixture()
		shipments = append(shipments, &domain.Shipment{ID: "S2", Volume: 3, Weight: 50, Destination: "B", Value: 200})

		hash1 := ScenarioHash(locs, conns, vehicles, shipments)

		reversedLocs := []*domain.Location{locs[1], locs[0]}
		reversedShipments := []*domain.Shipment{shipments[1], shipments[0]}
		hash2 := ScenarioHash(reversedLocs, conns, vehicles, reversedShipments)

		if hash1 != hash2 {
			t.Error("element order should not affect hash")
		}
	})
}

func TestBuildPlanKey(t *testing.T) {
	key := BuildPlanKey("abc123", "ffd_grouped")
	expected := "plan:ffd_grouped:abc123"
	if key != expected {
		t.Errorf("BuildPlanKey() = %v, want %v", key, expected)
	}
}

func TestBuildPlanKeyWithOptions(t *testing.T) {
	tests := []struct {
		name         string
		scenarioHash string
		strategy     string
		optionsHash  string
		expected     string
	}{
		{
			name:         "without options",
			scenarioHash: "abc123",
			strategy:     "ffd_grouped",
			optionsHash:  "",
			expected:     "plan:ffd_grouped:abc123",
		},
		{
			name:         "with options",
			scenarioHash: "abc123",
			strategy:     "random",
			optionsHash:  "opt456",
			expected:     "plan:random:abc123:opt456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := BuildPlanKeyWithOptions(tt.scenarioHash, tt.strategy, tt.optionsHash)
			if key != tt.expected {
				t.Errorf("BuildPlanKeyWithOptions() = %v, want %v", key, tt.expected)
			}
		})
	}
}

func TestQuickHash(t *testing.T) {
	data := []byte("test data")
	hash := QuickHash(data)

	if len(hash) != 64 { // SHA256 hex = 64 chars
		t.Errorf("QuickHash length = %d, want 64", len(hash))
	}

	// Same data should produce same hash
	hash2 := QuickHash(data)
	if hash != hash2 {
		t.Error("same data should produce same hash")
	}
}

func TestShortHash(t *testing.T) {
	data := []byte("test data")
	hash := ShortHash(data)

	if len(hash) != 16 {
		t.Errorf("ShortHash length = %d, want 16", len(hash))
	}
}
