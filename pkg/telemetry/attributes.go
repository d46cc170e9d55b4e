package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Сеть
	AttrNetworkLocations   = "network.locations"
	AttrNetworkConnections = "network.connections"
	AttrNetworkDepot       = "network.depot"

	// Сценарий
	AttrFleetSize     = "scenario.fleet_size"
	AttrShipmentCount = "scenario.shipment_count"

	// Оптимизация
	AttrStrategy      = "optimization.strategy"
	AttrIterations    = "optimization.iterations"
	AttrBestCost      = "optimization.best_cost"
	AttrTotalDistance = "optimization.total_distance"
	AttrVehiclesUsed  = "optimization.vehicles_used"
	AttrAccepted      = "optimization.accepted"
	AttrTemperature   = "optimization.temperature"

	// Валидация
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"
)

// NetworkAttributes возвращает атрибуты дорожной сети
func NetworkAttributes(locations, connections int, depot string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrNetworkLocations, locations),
		attribute.Int(AttrNetworkConnections, connections),
		attribute.String(AttrNetworkDepot, depot),
	}
}

// ScenarioAttributes возвращает атрибуты сценария
func ScenarioAttributes(vehicles, shipments int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrFleetSize, vehicles),
		attribute.Int(AttrShipmentCount, shipments),
	}
}

// RunAttributes возвращает атрибуты запуска оптимизации
func RunAttributes(strategy string, iterations int, bestCost, totalDistance float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStrategy, strategy),
		attribute.Int(AttrIterations, iterations),
		attribute.Float64(AttrBestCost, bestCost),
		attribute.Float64(AttrTotalDistance, totalDistance),
	}
}

// ValidationAttributes возвращает атрибуты валидации
func ValidationAttributes(errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
