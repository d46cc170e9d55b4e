// Package validate checks solutions against capacity limits and historical
// cost baselines.
//
// Capacity breaches are recorded as violation strings, never raised: the
// annealing loop rejects invalid candidates and keeps searching. Historical
// comparison produces per-vehicle rows that are informational only (the
// optimizer reshuffles shipments between vehicles) plus one authoritative
// TOTAL row comparing the summed costs.
package validate

import (
	"fmt"

	"cvrp/pkg/domain"
	"cvrp/pkg/fuzzy"
)

// TotalKey is the synthetic comparison key holding the authoritative
// summed-cost row.
const TotalKey = "TOTAL"

// CostComparison is one row of the historical comparison table.
type CostComparison struct {
	HistoricalCost        float64 `json:"historical_cost"`
	CurrentCost           float64 `json:"current_cost"`
	Difference            float64 `json:"difference"`
	ImprovementPercentage float64 `json:"improvement_percentage"`
	Note                  string  `json:"note"`
}

// Result holds the outcome of validating one solution.
type Result struct {
	IsValid         bool                      `json:"is_valid"`
	Violations      []string                  `json:"violations"`
	Warnings        []string                  `json:"warnings"`
	CostComparisons map[string]CostComparison `json:"cost_comparisons"`
	Improvements    []string                  `json:"improvements"`
}

// NewResult returns an empty valid result.
func NewResult() *Result {
	return &Result{
		IsValid:         true,
		CostComparisons: make(map[string]CostComparison),
	}
}

// AddViolation records a violation and marks the result invalid.
func (r *Result) AddViolation(message string) {
	r.Violations = append(r.Violations, message)
	r.IsValid = false
}

// AddWarning records a non-fatal warning.
func (r *Result) AddWarning(message string) {
	r.Warnings = append(r.Warnings, message)
}

// Validator checks solutions, optionally against historical per-vehicle
// costs.
type Validator struct {
	historical map[string]float64
	defuzz     fuzzy.DefuzzMethod
}

// NewValidator creates a validator. historical maps vehicle ID to its
// historical total cost; nil or empty disables the comparison.
func NewValidator(historical map[string]float64, defuzz fuzzy.DefuzzMethod) *Validator {
	return &Validator{historical: historical, defuzz: defuzz}
}

// ValidateSolution checks capacities and, when historical data and per-vehicle
// costs are both present, fills in the cost comparison table.
func (v *Validator) ValidateSolution(sol *domain.Solution, costs map[string]fuzzy.Triangular) *Result {
	result := NewResult()

	v.validateCapacities(sol, result)

	if len(costs) > 0 && len(v.historical) > 0 {
		v.compareCosts(sol, costs, result)
	}

	return result
}

// validateCapacities checks every vehicle against volume and weight limits
// with the construction tolerance.
func (v *Validator) validateCapacities(sol *domain.Solution, result *Result) {
	for _, veh := range sol.Vehicles {
		totalVolume := 0.0
		totalWeight := 0.0
		for _, s := range veh.Shipments {
			totalVolume += s.Volume
			totalWeight += s.Weight
		}

		if totalVolume > veh.MaxVolume()*domain.CapacityTolerance {
			result.AddViolation(fmt.Sprintf(
				"Vehicle %s exceeds volume capacity: %.2f/%.2f CBM",
				veh.ID, totalVolume, veh.MaxVolume()))
		}

		if totalWeight > veh.MaxWeight*domain.CapacityTolerance {
			result.AddViolation(fmt.Sprintf(
				"Vehicle %s exceeds weight capacity: %.2f/%.2f kg",
				veh.ID, totalWeight, veh.MaxWeight))
		}
	}
}

// compareCosts builds the comparison table. Per-vehicle rows are
// informational; the TOTAL row is the true comparison, summed over vehicles
// carrying at least one shipment.
func (v *Validator) compareCosts(sol *domain.Solution, costs map[string]fuzzy.Triangular, result *Result) {
	totalHistorical := 0.0
	for _, cost := range v.historical {
		totalHistorical += cost
	}

	totalCurrent := 0.0
	for _, veh := range sol.Vehicles {
		if len(veh.Shipments) == 0 {
			continue
		}
		cost, ok := costs[veh.ID]
		if !ok {
			continue
		}
		current := cost.Defuzzify(v.defuzz)
		totalCurrent += current

		historical := v.historical[veh.ID]
		difference := historical - current
		improvementPct := 0.0
		if historical > 0 {
			improvementPct = difference / historical * 100
		}

		result.CostComparisons[veh.ID] = CostComparison{
			HistoricalCost:        historical,
			CurrentCost:           current,
			Difference:            difference,
			ImprovementPercentage: improvementPct,
			Note:                  "Shipments may differ from historical - compare totals instead",
		}
	}

	totalDifference := totalHistorical - totalCurrent
	totalImprovementPct := 0.0
	if totalHistorical > 0 {
		totalImprovementPct = totalDifference / totalHistorical * 100
	}

	result.CostComparisons[TotalKey] = CostComparison{
		HistoricalCost:        totalHistorical,
		CurrentCost:           totalCurrent,
		Difference:            totalDifference,
		ImprovementPercentage: totalImprovementPct,
		Note:                  "TRUE comparison - total solution cost",
	}

	if totalDifference > 0 {
		result.Improvements = append(result.Improvements, fmt.Sprintf(
			"TOTAL SOLUTION: %.2f%% improvement ($%.2f saved)",
			totalImprovementPct, totalDifference))
	}
}

// IsFeasible is a quick capacity check without building a full result.
func IsFeasible(sol *domain.Solution) bool {
	for _, veh := range sol.Vehicles {
		totalVolume := 0.0
		totalWeight := 0.0
		for _, s := range veh.Shipments {
			totalVolume += s.Volume
			totalWeight += s.Weight
		}
		if totalVolume > veh.MaxVolume()*domain.CapacityTolerance {
			return false
		}
		if totalWeight > veh.MaxWeight*domain.CapacityTolerance {
			return false
		}
	}
	return true
}
