// Package costing prices routes and solutions with triangular fuzzy numbers.
//
// The cost of a route splits into four layers:
//
//   - per leg: fuel, refuel service stops
//   - per border crossing: customs fee
//   - per delivery: tax on goods value at the destination
//   - per trip (charged once): per-diem, driver salary, overhead, emergency
//
// The crisp sum of all components is widened into a fuzzy number with a 5%
// spread on each side. That is the only place bulk uncertainty enters the
// model; the fuzzy driver salary band is defuzzified before it joins the sum.
//
// Unreachable legs produce the infinite fuzzy sentinel, which propagates
// through additions without ever raising an error.
package costing

import (
	"math"
	"sort"
	"strings"

	"cvrp/pkg/domain"
	"cvrp/pkg/fuzzy"
)

// Parameters holds tariffs and norms used by cost calculations.
type Parameters struct {
	FuelPricePerLiter     float64
	PerDiemRate           float64
	MaxDrivingHoursPerDay float64
	AverageSpeed          float64
	FuelTankCapacity      float64
	RefuelTime            float64
	RestTimePerDay        float64
	BorderCrossingTime    float64

	// TaxRates maps destination country to tax rate.
	TaxRates map[string]float64
	// CustomsFees maps a sorted country pair key to the crossing fee.
	CustomsFees map[string]float64
	// RefuelCosts maps origin country to the cost of one refuel stop.
	RefuelCosts map[string]float64
}

// Fallbacks applied when a table has no entry.
const (
	defaultTaxRate        = 0.10
	defaultCustomsFee     = 160.0
	defaultRefuelCost     = 4.0
	defaultFuelEfficiency = 0.3

	overheadPerTrip  = 100.0
	emergencyPerTrip = 200.0

	crispSpread = 0.05
)

// DefaultParameters returns parameters calibrated against historical cost data.
func DefaultParameters() Parameters {
	return Parameters{
		FuelPricePerLiter:     0.8,
		PerDiemRate:           18.0,
		MaxDrivingHoursPerDay: 10.0,
		AverageSpeed:          60.0,
		FuelTankCapacity:      400.0,
		RefuelTime:            0.5,
		RestTimePerDay:        10.0,
		BorderCrossingTime:    4.0,
		TaxRates: map[string]float64{
			"China":     0.10,
			"Vietnam":   0.10,
			"Laos":      0.10,
			"Cambodia":  0.10,
			"Thailand":  0.07,
			"Myanmar":   0.12,
			"Malaysia":  0.10,
			"Singapore": 0.08,
		},
		CustomsFees: map[string]float64{
			CountryPairKey("China", "Vietnam"):      160,
			CountryPairKey("China", "Laos"):         162,
			CountryPairKey("Vietnam", "Laos"):       162,
			CountryPairKey("Vietnam", "Cambodia"):   160,
			CountryPairKey("Laos", "Cambodia"):      160,
			CountryPairKey("Laos", "Thailand"):      161,
			CountryPairKey("Laos", "Myanmar"):       160,
			CountryPairKey("Cambodia", "Thailand"):  160,
			CountryPairKey("Myanmar", "Thailand"):   160,
			CountryPairKey("Thailand", "Malaysia"):  158,
			CountryPairKey("Malaysia", "Singapore"): 158,
		},
		RefuelCosts: map[string]float64{
			"China":     5,
			"Vietnam":   4,
			"Laos":      4,
			"Cambodia":  4,
			"Thailand":  3,
			"Myanmar":   4,
			"Malaysia":  3,
			"Singapore": 6,
		},
	}
}

// CountryPairKey builds the symmetric lookup key for the customs fee table.
func CountryPairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}

// TravelInfo describes the duration of travel over a single leg.
type TravelInfo struct {
	Days        int
	Hours       float64
	RefuelStops int
}

// Calculator prices routes and complete solutions.
type Calculator struct {
	params Parameters
	defuzz fuzzy.DefuzzMethod
}

// NewCalculator creates a calculator with the given parameters.
func NewCalculator(params Parameters, defuzz fuzzy.DefuzzMethod) *Calculator {
	return &Calculator{params: params, defuzz: defuzz}
}

// NewDefaultCalculator creates a calculator with default parameters and
// centroid defuzzification.
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultParameters(), fuzzy.DefuzzCentroid)
}

// Parameters returns the calculator's parameters.
func (c *Calculator) Parameters() Parameters {
	return c.params
}

// FuelCost returns the fuel cost of covering the given distance.
func (c *Calculator) FuelCost(distance, fuelEfficiency float64) float64 {
	return distance * fuelEfficiency * c.params.FuelPricePerLiter
}

// TaxRate returns the tax rate of a country.
func (c *Calculator) TaxRate(country string) float64 {
	if rate, ok := c.params.TaxRates[country]; ok {
		return rate
	}
	return defaultTaxRate
}

// Tax returns the tax charged on goods delivered into a country.
func (c *Calculator) Tax(goodsValue float64, country string) float64 {
	return goodsValue * c.TaxRate(country)
}

// CustomsFee returns the fee for crossing between two countries.
// Lookup is symmetric in the pair.
func (c *Calculator) CustomsFee(fromCountry, toCountry string) float64 {
	if fee, ok := c.params.CustomsFees[CountryPairKey(fromCountry, toCountry)]; ok {
		return fee
	}
	return defaultCustomsFee
}

// RefuelCost returns the cost of a single refuel stop in a country.
func (c *Calculator) RefuelCost(country string) float64 {
	if cost, ok := c.params.RefuelCosts[country]; ok {
		return cost
	}
	return defaultRefuelCost
}

// DriverSalary returns the fuzzy driver salary for a trip: a daily rate band
// chosen by total route distance, multiplied by the number of days.
func (c *Calculator) DriverSalary(distance float64, days int) fuzzy.Triangular {
	var daily fuzzy.Triangular
	switch {
	case distance <= 500:
		daily = fuzzy.Triangular{Left: 24.0, Peak: 26.5, Right: 29.0}
	case distance <= 1500:
		daily = fuzzy.Triangular{Left: 27.0, Peak: 29.5, Right: 32.0}
	case distance <= 3000:
		daily = fuzzy.Triangular{Left: 29.0, Peak: 31.0, Right: 33.0}
	default:
		daily = fuzzy.Triangular{Left: 31.0, Peak: 32.5, Right: 34.0}
	}
	return daily.Scale(float64(days))
}

// TripDays returns the number of days a trip takes, accounting for daily
// rest and border crossing delays.
func (c *Calculator) TripDays(totalDistance float64, borderCrossings int) int {
	drivingHours := totalDistance/c.params.AverageSpeed +
		float64(borderCrossings)*c.params.BorderCrossingTime
	days := int((drivingHours+c.params.RestTimePerDay-1)/
		(c.params.MaxDrivingHoursPerDay+c.params.RestTimePerDay)) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// TravelInfoFor returns travel duration details for a single leg.
func (c *Calculator) TravelInfoFor(distance float64, borderCrossing bool) TravelInfo {
	if math.IsInf(distance, 1) {
		return TravelInfo{Days: 0, Hours: math.Inf(1), RefuelStops: 0}
	}

	drivingHours := distance / c.params.AverageSpeed
	if borderCrossing {
		drivingHours += c.params.BorderCrossingTime
	}

	fuelRange := c.params.FuelTankCapacity / defaultFuelEfficiency
	refuelStops := int(distance / fuelRange)
	if refuelStops < 0 {
		refuelStops = 0
	}

	totalHours := drivingHours + float64(refuelStops)*c.params.RefuelTime
	days := int(math.Round(totalHours / c.params.MaxDrivingHoursPerDay))
	if days < 1 {
		days = 1
	}

	return TravelInfo{Days: days, Hours: totalHours, RefuelStops: refuelStops}
}

// RouteCost returns the full fuzzy cost of a route.
// A route shorter than two stops, or one containing an unreachable leg,
// yields the infinite sentinel.
func (c *Calculator) RouteCost(route []string, net *domain.Network, vehicle *domain.Vehicle, shipments []*domain.Shipment) fuzzy.Triangular {
	if len(route) < 2 {
		return fuzzy.Infinity()
	}

	fuelEfficiency := defaultFuelEfficiency
	if vehicle != nil {
		fuelEfficiency = vehicle.FuelEfficiency
	}

	// Goods value accumulated per delivery stop
	stopValues := make(map[string]float64)
	for _, s := range shipments {
		stopValues[s.Destination] += s.Value
	}

	var (
		totalDistance    float64
		totalFuelCost    float64
		totalCustomsFee  float64
		totalTax         float64
		totalRefuelStops int
		borderCrossings  int
	)

	fuelRange := c.params.FuelTankCapacity / fuelEfficiency

	for i := 0; i+1 < len(route); i++ {
		distance := net.ShortestPathLength(route[i], route[i+1])
		if math.IsInf(distance, 1) {
			return fuzzy.Infinity()
		}
		totalDistance += distance

		totalFuelCost += c.FuelCost(distance, fuelEfficiency)
		totalRefuelStops += int(distance / fuelRange)

		fromCountry := net.GetCountry(route[i])
		toCountry := net.GetCountry(route[i+1])
		if fromCountry != toCountry {
			borderCrossings++
			totalCustomsFee += c.CustomsFee(fromCountry, toCountry)
		}

		if value := stopValues[route[i+1]]; value > 0 {
			totalTax += c.Tax(value, toCountry)
		}
	}

	tripDays := c.TripDays(totalDistance, borderCrossings)

	perDiem := c.params.PerDiemRate * float64(tripDays)
	driverSalary := c.DriverSalary(totalDistance, tripDays)
	refuelService := c.RefuelCost(net.GetCountry(route[0])) * float64(totalRefuelStops)

	baseCost := perDiem +
		driverSalary.Defuzzify(c.defuzz) +
		totalFuelCost +
		totalCustomsFee +
		totalTax +
		overheadPerTrip +
		emergencyPerTrip +
		refuelService

	return fuzzy.Triangular{
		Left:  baseCost * (1 - crispSpread),
		Peak:  baseCost,
		Right: baseCost * (1 + crispSpread),
	}
}

// SolutionCost sums route costs over every vehicle carrying at least one
// shipment. Each vehicle's route is implicit: the depot followed by its
// distinct destinations in first-occurrence order.
func (c *Calculator) SolutionCost(sol *domain.Solution, net *domain.Network) fuzzy.Triangular {
	depot, ok := net.Depot()
	if !ok {
		return fuzzy.Infinity()
	}

	total := fuzzy.Zero()

	for _, v := range sol.Vehicles {
		if len(v.Shipments) == 0 {
			continue
		}
		route := ImplicitRoute(depot.Code, v)
		total = total.Add(c.RouteCost(route, net, v, v.Shipments))
	}

	return total
}

// ImplicitRoute builds a vehicle's route: the depot followed by its distinct
// destinations in first-occurrence order.
func ImplicitRoute(depot string, v *domain.Vehicle) []string {
	route := []string{depot}
	route = append(route, v.Destinations()...)
	return route
}
