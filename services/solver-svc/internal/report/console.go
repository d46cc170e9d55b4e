package report

import (
	"fmt"
	"io"
	"strings"

	"cvrp/services/solver-svc/internal/validate"
)

// PrintResults writes the full human-readable result breakdown.
func PrintResults(w io.Writer, data *Data) {
	res := data.Result
	cur := data.Currency

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintln(w, "OPTIMIZATION RESULTS")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\nBest Solution Cost: %s%.2f\n", cur, data.BestCost)
	fmt.Fprintf(w, "Total Distance: %.2f km\n", res.Metrics.TotalDistance)
	fmt.Fprintf(w, "Border Crossings: %d\n", res.Metrics.TotalBorderCrossings)
	fmt.Fprintf(w, "Vehicles Used: %d\n", res.Metrics.VehiclesUsed)
	fmt.Fprintf(w, "Total Shipments: %d\n", res.Metrics.TotalShipments)
	fmt.Fprintf(w, "Solution Valid: %v\n", res.Validation.IsValid)

	fmt.Fprintln(w, "\n--- Optimization Statistics ---")
	fmt.Fprintf(w, "Iterations: %d\n", res.Statistics.Iterations)
	fmt.Fprintf(w, "Accepted: %d\n", res.Statistics.Accepted)
	fmt.Fprintf(w, "Rejected: %d\n", res.Statistics.Rejected)
	fmt.Fprintf(w, "Improvements Found: %d\n", res.Statistics.Improvements)
	if res.Statistics.Accepted+res.Statistics.Rejected > 0 {
		fmt.Fprintf(w, "Acceptance Rate: %.1f%%\n", data.AcceptanceRate())
	}

	fmt.Fprintln(w, "\n--- Vehicle Details ---")
	for _, v := range res.BestSolution.Vehicles {
		vm := res.Metrics.VehicleMetrics[v.ID]

		fmt.Fprintf(w, "\n%s:\n", v.ID)
		if v.IsEmpty() {
			fmt.Fprintln(w, "  No shipments assigned")
			continue
		}

		fmt.Fprintf(w, "  Route: %s\n", strings.Join(vm.Route, " -> "))
		fmt.Fprintf(w, "  Distance: %.2f km\n", vm.Distance)
		fmt.Fprintf(w, "  Border Crossings: %d\n", vm.BorderCrossings)
		fmt.Fprintf(w, "  Volume Utilization: %.1f%%\n", vm.VolumeUtilization)
		fmt.Fprintf(w, "  Weight Utilization: %.1f%%\n", vm.WeightUtilization)
		fmt.Fprintf(w, "  Shipments (%d):\n", len(v.Shipments))
		for _, s := range v.Shipments {
			fmt.Fprintf(w, "    - %s: %.2f CBM, %.0f kg -> %s\n",
				s.ID, s.Volume, s.Weight, s.Destination)
		}
	}

	if len(res.Validation.CostComparisons) > 0 {
		fmt.Fprintln(w, "\n--- Cost Comparison vs Historical ---")

		if total, ok := res.Validation.CostComparisons[validate.TotalKey]; ok {
			fmt.Fprintln(w, "\n** TOTAL SOLUTION (True Comparison) **")
			fmt.Fprintf(w, "  Historical Total: %s%.2f\n", cur, total.HistoricalCost)
			fmt.Fprintf(w, "  Optimized Total:  %s%.2f\n", cur, total.CurrentCost)
			if total.Difference >= 0 {
				fmt.Fprintf(w, "  Savings:          %s%.2f (%.1f%% improvement)\n",
					cur, total.Difference, total.ImprovementPercentage)
			} else {
				fmt.Fprintf(w, "  Extra Cost:       %s%.2f (%.1f%% worse)\n",
					cur, -total.Difference, -total.ImprovementPercentage)
			}
		}

		fmt.Fprintln(w, "\n  Per-Vehicle Breakdown (informational - shipments may differ):")
		for _, v := range res.BestSolution.Vehicles {
			comparison, ok := res.Validation.CostComparisons[v.ID]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "    %s: %s%.2f (was %s%.2f)\n",
				v.ID, cur, comparison.CurrentCost, cur, comparison.HistoricalCost)
		}
	}

	if len(res.Validation.Violations) > 0 {
		fmt.Fprintln(w, "\n--- Violations ---")
		for _, violation := range res.Validation.Violations {
			fmt.Fprintf(w, "  ! %s\n", violation)
		}
	}

	if len(res.Validation.Improvements) > 0 {
		fmt.Fprintln(w, "\n--- Improvements ---")
		for _, improvement := range res.Validation.Improvements {
			fmt.Fprintf(w, "  + %s\n", improvement)
		}
	}

	fmt.Fprintf(w, "\n%s\n", rule)
}

// FormatSolutionSummary returns a brief multi-line fleet summary.
func FormatSolutionSummary(data *Data) string {
	sol := data.Result.BestSolution

	var b strings.Builder
	fmt.Fprintf(&b, "Vehicles: %d/%d\n", len(sol.ActiveVehicles()), len(sol.Vehicles))
	fmt.Fprintf(&b, "Shipments: %d", sol.ShipmentCount())

	for _, v := range sol.Vehicles {
		if v.IsEmpty() {
			continue
		}
		fmt.Fprintf(&b, "\n  %s: %d shipments, %.1f CBM, %.0f kg",
			v.ID, len(v.Shipments), v.CurrentVolume, v.CurrentWeight)
	}

	return b.String()
}
