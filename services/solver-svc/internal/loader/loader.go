// Package loader reads the scenario input files and assembles the domain
// objects the optimizer works on: the transportation network, the fleet,
// the shipments of the current packing plan and, optionally, historical
// cost totals for comparison.
//
// File formats follow the upstream data exports. A missing file is a fatal
// error; a malformed route name inside the routes file is skipped with a
// warning so one bad record cannot sink the whole run.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cvrp/pkg/apperror"
	"cvrp/pkg/config"
	"cvrp/pkg/domain"
	"cvrp/pkg/logger"
)

// Scenario is the fully assembled optimizer input.
type Scenario struct {
	Network   *domain.Network
	Depot     string
	Vehicles  []*domain.Vehicle
	Shipments []*domain.Shipment

	// Raw inputs kept for scenario fingerprinting.
	Locations   []*domain.Location
	Connections []*domain.Connection

	// Historical maps vehicle IDs to past total costs. Empty when no
	// historical file was configured.
	Historical map[string]float64
}

// Load reads every configured input file and builds the scenario.
// precompute selects eager all-pairs distance computation on the network.
func Load(cfg config.DataConfig, precompute bool) (*Scenario, error) {
	locations, err := loadLocations(cfg.LocationsFile)
	if err != nil {
		return nil, err
	}

	connections, err := loadConnections(cfg.RoutesFile)
	if err != nil {
		return nil, err
	}

	vehicles, err := loadFleet(cfg.FleetFile)
	if err != nil {
		return nil, err
	}

	shipments, err := loadPackingPlan(cfg.PackingFile)
	if err != nil {
		return nil, err
	}

	var historical map[string]float64
	if cfg.HistoricalFile != "" {
		historical, err = loadHistoricalCosts(cfg.HistoricalFile)
		if err != nil {
			return nil, err
		}
	}

	net := domain.NewNetwork(locations, connections, precompute)
	depot, ok := net.Depot()
	if !ok {
		return nil, apperror.New(apperror.CodeInvalidNetwork, "no depot in locations data")
	}

	logger.Log.Info("Scenario loaded",
		"locations", len(locations),
		"connections", len(connections),
		"vehicles", len(vehicles),
		"shipments", len(shipments),
		"historical_entries", len(historical),
	)

	return &Scenario{
		Network:     net,
		Depot:       depot.Code,
		Vehicles:    vehicles,
		Shipments:   shipments,
		Locations:   locations,
		Connections: connections,
		Historical:  historical,
	}, nil
}

// Wire formats of the input files.

type operatingHoursJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type locationJSON struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Country        string             `json:"country"`
	Countries      []string           `json:"countries"`
	OperatingHours operatingHoursJSON `json:"operating_hours"`
}

type locationsFileJSON struct {
	Locations *struct {
		Depots          []locationJSON `json:"depots"`
		BorderCrossings []locationJSON `json:"border_crossings"`
	} `json:"locations"`
}

type timeWindowJSON struct {
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	DelayFactor float64 `json:"delay_factor"`
}

type routeInfoJSON struct {
	Distance float64 `json:"distance"`
	BaseTime float64 `json:"base_time"`
	RoadType string  `json:"road_type"`
}

type routesFileJSON struct {
	Countries map[string]struct {
		TimeWindows []timeWindowJSON         `json:"time_windows"`
		Routes      map[string]routeInfoJSON `json:"routes"`
	} `json:"countries"`
}

type dimensionsJSON struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type fleetVehicleJSON struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Dimensions     dimensionsJSON `json:"dimensions"`
	MaxWeight      float64        `json:"max_weight"`
	FuelCapacity   float64        `json:"fuel_capacity"`
	FuelEfficiency float64        `json:"fuel_efficiency"`
}

type fleetFileJSON struct {
	Fleet []fleetVehicleJSON `json:"fleet"`
}

type shipmentJSON struct {
	ID       string  `json:"id"`
	OrderID  string  `json:"order_id"`
	TotalCBM float64 `json:"total_cbm"`
	Weight   float64 `json:"weight"`
	Origin   string  `json:"origin"`
	Delivery struct {
		LocationID string `json:"location_id"`
	} `json:"delivery"`
	Price float64 `json:"price"`
}

type packingFileJSON struct {
	Vehicles []struct {
		ID        string         `json:"id"`
		Shipments []shipmentJSON `json:"shipments"`
	} `json:"vehicles"`
}

type historicalFileJSON map[string]struct {
	Total *struct {
		TotalCost *float64 `json:"total_cost"`
	} `json:"total"`
}

func loadLocations(path string) ([]*domain.Location, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLocations(raw, path)
}

// ParseLocations decodes the locations file. Depots come first so the
// network's depot lookup resolves to the true origin warehouse.
func ParseLocations(raw []byte, path string) ([]*domain.Location, error) {
	var file locationsFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, invalidFile(path, err)
	}
	if file.Locations == nil {
		return nil, apperror.New(apperror.CodeDataFileInvalid,
			fmt.Sprintf("%s: 'locations' key missing", path))
	}

	var out []*domain.Location
	for _, d := range file.Locations.Depots {
		out = append(out, toLocation(d, domain.LocationKindDepot))
	}
	for _, b := range file.Locations.BorderCrossings {
		out = append(out, toLocation(b, domain.LocationKindBorderCrossing))
	}

	logger.Log.Debug("Parsed locations", "count", len(out))
	return out, nil
}

func toLocation(j locationJSON, kind domain.LocationKind) *domain.Location {
	country := j.Country
	if country == "" && len(j.Countries) > 0 {
		country = j.Countries[0]
	}
	return &domain.Location{
		Code:    j.ID,
		Name:    j.Name,
		Country: country,
		Kind:    kind,
		Hours: domain.OperatingHours{
			Open:  j.OperatingHours.Start,
			Close: j.OperatingHours.End,
		},
	}
}

func loadConnections(path string) ([]*domain.Connection, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConnections(raw, path)
}

// ParseConnections decodes the routes file. Route keys are "FROM-TO" pairs;
// a key that does not split into exactly two codes is skipped with a warning.
// The country's time windows apply to every route it defines.
func ParseConnections(raw []byte, path string) ([]*domain.Connection, error) {
	var file routesFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, invalidFile(path, err)
	}
	if file.Countries == nil {
		return nil, apperror.New(apperror.CodeDataFileInvalid,
			fmt.Sprintf("%s: 'countries' key missing", path))
	}

	var out []*domain.Connection
	for country, data := range file.Countries {
		windows := make([]domain.TimeWindow, 0, len(data.TimeWindows))
		for _, tw := range data.TimeWindows {
			windows = append(windows, domain.TimeWindow{
				From:   tw.StartTime,
				To:     tw.EndTime,
				Factor: tw.DelayFactor,
			})
		}

		for name, info := range data.Routes {
			ends := strings.Split(name, "-")
			if len(ends) != 2 {
				logger.Log.Warn("Skipping malformed route",
					"route", name,
					"country", country,
				)
				continue
			}
			out = append(out, domain.NewConnection(
				ends[0], ends[1],
				info.Distance, info.BaseTime,
				parseRoadType(info.RoadType),
				windows,
			))
		}
	}

	logger.Log.Debug("Parsed connections", "count", len(out))
	return out, nil
}

func parseRoadType(s string) domain.RoadType {
	switch s {
	case "highway":
		return domain.RoadTypeHighway
	case "national":
		return domain.RoadTypeNational
	case "mountain":
		return domain.RoadTypeMountain
	case "local":
		return domain.RoadTypeLocal
	default:
		return domain.RoadTypeUnspecified
	}
}

func loadFleet(path string) ([]*domain.Vehicle, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFleet(raw, path)
}

// ParseFleet decodes the fleet file into vehicles with empty load state.
func ParseFleet(raw []byte, path string) ([]*domain.Vehicle, error) {
	var file fleetFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, invalidFile(path, err)
	}
	if file.Fleet == nil {
		return nil, apperror.New(apperror.CodeDataFileInvalid,
			fmt.Sprintf("%s: 'fleet' key missing", path))
	}

	out := make([]*domain.Vehicle, 0, len(file.Fleet))
	for _, v := range file.Fleet {
		out = append(out, &domain.Vehicle{
			ID:             v.ID,
			Type:           v.Type,
			Length:         v.Dimensions.Length,
			Width:          v.Dimensions.Width,
			Height:         v.Dimensions.Height,
			MaxWeight:      v.MaxWeight,
			FuelCapacity:   v.FuelCapacity,
			FuelEfficiency: v.FuelEfficiency,
		})
	}

	logger.Log.Debug("Parsed fleet", "count", len(out))
	return out, nil
}

func loadPackingPlan(path string) ([]*domain.Shipment, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePackingPlan(raw, path)
}

// ParsePackingPlan decodes the packing plan and returns all shipments it
// mentions, in file order. The historical vehicle assignment is intentionally
// discarded: the optimizer builds its own.
func ParsePackingPlan(raw []byte, path string) ([]*domain.Shipment, error) {
	var file packingFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, invalidFile(path, err)
	}
	if file.Vehicles == nil {
		return nil, apperror.New(apperror.CodeDataFileInvalid,
			fmt.Sprintf("%s: 'vehicles' key missing", path))
	}

	var out []*domain.Shipment
	for _, v := range file.Vehicles {
		for _, s := range v.Shipments {
			out = append(out, &domain.Shipment{
				ID:          s.ID,
				OrderID:     s.OrderID,
				Volume:      s.TotalCBM,
				Weight:      s.Weight,
				Origin:      s.Origin,
				Destination: s.Delivery.LocationID,
				Value:       s.Price,
			})
		}
	}

	logger.Log.Debug("Parsed shipments", "count", len(out))
	return out, nil
}

func loadHistoricalCosts(path string) (map[string]float64, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseHistoricalCosts(raw, path)
}

// ParseHistoricalCosts extracts total cost per vehicle from the historical
// breakdown. Vehicles without a total entry are ignored.
func ParseHistoricalCosts(raw []byte, path string) (map[string]float64, error) {
	var file historicalFileJSON
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, invalidFile(path, err)
	}

	out := make(map[string]float64, len(file))
	for id, data := range file {
		if data.Total == nil || data.Total.TotalCost == nil {
			continue
		}
		out[id] = *data.Total.TotalCost
	}

	logger.Log.Debug("Loaded historical costs", "vehicles", len(out))
	return out, nil
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.New(apperror.CodeDataFileMissing,
				fmt.Sprintf("file not found: %s", path))
		}
		return nil, apperror.Wrap(err, apperror.CodeDataFileMissing,
			fmt.Sprintf("cannot read %s", path))
	}
	return raw, nil
}

func invalidFile(path string, err error) error {
	return apperror.Wrap(err, apperror.CodeDataFileInvalid,
		fmt.Sprintf("cannot parse %s", path))
}
