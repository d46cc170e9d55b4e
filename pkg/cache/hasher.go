package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"cvrp/pkg/domain"
)

// ScenarioHash вычисляет хеш сценария оптимизации для использования
// как ключ кэша. Порядок пунктов, рёбер, парка и грузов на хеш
// не влияет.
func ScenarioHash(locations []*domain.Location, connections []*domain.Connection, vehicles []*domain.Vehicle, shipments []*domain.Shipment) string {
	data := scenarioToCanonical(locations, connections, vehicles, shipments)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// scenarioToCanonical создаёт детерминированное представление сценария
func scenarioToCanonical(locations []*domain.Location, connections []*domain.Connection, vehicles []*domain.Vehicle, shipments []*domain.Shipment) []byte {
	locCodes := make([]string, 0, len(locations))
	locByCode := make(map[string]*domain.Location, len(locations))
	for _, loc := range locations {
		locCodes = append(locCodes, loc.Code)
		locByCode[loc.Code] = loc
	}
	sort.Strings(locCodes)

	connKeys := make([]string, 0, len(connections))
	connByKey := make(map[string]*domain.Connection, len(connections))
	for _, c := range connections {
		key := c.Key()
		connKeys = append(connKeys, key)
		connByKey[key] = c
	}
	sort.Strings(connKeys)

	vehicleIDs := make([]string, 0, len(vehicles))
	vehicleByID := make(map[string]*domain.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vehicleIDs = append(vehicleIDs, v.ID)
		vehicleByID[v.ID] = v
	}
	sort.Strings(vehicleIDs)

	shipmentIDs := make([]string, 0, len(shipments))
	shipmentByID := make(map[string]*domain.Shipment, len(shipments))
	for _, s := range shipments {
		shipmentIDs = append(shipmentIDs, s.ID)
		shipmentByID[s.ID] = s
	}
	sort.Strings(shipmentIDs)

	// Строим каноническую строку
	var result []byte

	for _, code := range locCodes {
		loc := locByCode[code]
		result = append(result, []byte(fmt.Sprintf("l:%s:%s:%d;", loc.Code, loc.Country, loc.Kind))...)
	}
	for _, key := range connKeys {
		c := connByKey[key]
		result = append(result, []byte(fmt.Sprintf("c:%s:%.6f:%.6f;", key, c.Distance, c.BaseTime))...)
	}
	for _, id := range vehicleIDs {
		v := vehicleByID[id]
		result = append(result, []byte(fmt.Sprintf("v:%s:%.6f:%.6f:%.6f:%.6f;",
			v.ID, v.MaxVolume(), v.MaxWeight, v.FuelCapacity, v.FuelEfficiency))...)
	}
	for _, id := range shipmentIDs {
		s := shipmentByID[id]
		result = append(result, []byte(fmt.Sprintf("s:%s:%s:%.6f:%.6f:%.6f;",
			s.ID, s.Destination, s.Volume, s.Weight, s.Value))...)
	}

	return result
}

// BuildPlanKey строит ключ кэша для результата оптимизации
func BuildPlanKey(scenarioHash, strategy string) string {
	return fmt.Sprintf("plan:%s:%s", strategy, scenarioHash)
}

// BuildPlanKeyWithOptions строит ключ с учётом хеша параметров поиска
func BuildPlanKeyWithOptions(scenarioHash, strategy, optionsHash string) string {
	if optionsHash == "" {
		return BuildPlanKey(scenarioHash, strategy)
	}
	return fmt.Sprintf("plan:%s:%s:%s", strategy, scenarioHash, optionsHash)
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
