package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"cvrp/pkg/logger"
	"cvrp/services/solver-svc/internal/validate"
)

// SaveExcel writes the workbook: a summary sheet, a per-vehicle sheet and,
// when historical data was compared, a comparison sheet.
func SaveExcel(path string, data *Data) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	writeSummarySheet(f, data, headerStyle)
	writeVehiclesSheet(f, data, headerStyle)
	if len(data.Result.Validation.CostComparisons) > 0 {
		writeComparisonSheet(f, data, headerStyle)
	}

	f.DeleteSheet("Sheet1")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.Log.Info("Saved Excel report", "path", path)
	return nil
}

func writeSummarySheet(f *excelize.File, data *Data, headerStyle int) {
	sheet := "Summary"
	f.NewSheet(sheet)

	res := data.Result
	row := 1

	f.SetCellValue(sheet, cellAddr("A", row), "Route Optimization Report")
	f.MergeCell(sheet, cellAddr("A", row), cellAddr("B", row))
	row += 2

	f.SetCellValue(sheet, cellAddr("A", row), "Scenario")
	f.SetCellValue(sheet, cellAddr("B", row), data.Scenario)
	row += 2

	f.SetCellValue(sheet, cellAddr("A", row), "Results")
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	kv := []struct {
		key   string
		value any
	}{
		{"Best Cost", data.BestCost},
		{"Cost Range (low)", data.CostBounds.Left},
		{"Cost Range (high)", data.CostBounds.Right},
		{"Total Distance (km)", res.Metrics.TotalDistance},
		{"Border Crossings", res.Metrics.TotalBorderCrossings},
		{"Vehicles Used", res.Metrics.VehiclesUsed},
		{"Total Shipments", res.Metrics.TotalShipments},
		{"Solution Valid", res.Validation.IsValid},
	}
	for _, item := range kv {
		f.SetCellValue(sheet, cellAddr("A", row), item.key)
		f.SetCellValue(sheet, cellAddr("B", row), item.value)
		row++
	}
	row++

	f.SetCellValue(sheet, cellAddr("A", row), "Search Statistics")
	f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	stats := []struct {
		key   string
		value any
	}{
		{"Iterations", res.Statistics.Iterations},
		{"Accepted", res.Statistics.Accepted},
		{"Rejected", res.Statistics.Rejected},
		{"Improvements", res.Statistics.Improvements},
		{"Acceptance Rate (%)", data.AcceptanceRate()},
	}
	for _, item := range stats {
		f.SetCellValue(sheet, cellAddr("A", row), item.key)
		f.SetCellValue(sheet, cellAddr("B", row), item.value)
		row++
	}

	if len(res.Validation.Violations) > 0 {
		row++
		f.SetCellValue(sheet, cellAddr("A", row), "Violations")
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("B", row), headerStyle)
		row++
		for _, v := range res.Validation.Violations {
			f.SetCellValue(sheet, cellAddr("A", row), v)
			row++
		}
	}

	f.SetColWidth(sheet, "A", "B", 24)
}

func writeVehiclesSheet(f *excelize.File, data *Data, headerStyle int) {
	sheet := "Vehicles"
	f.NewSheet(sheet)

	headers := []string{
		"Vehicle", "Shipments", "Distance (km)", "Border Crossings",
		"Volume Util (%)", "Weight Util (%)", "Route",
	}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "G1", headerStyle)

	row := 2
	for _, v := range data.Result.BestSolution.Vehicles {
		vm := data.Result.Metrics.VehicleMetrics[v.ID]

		f.SetCellValue(sheet, cellAddr("A", row), v.ID)
		f.SetCellValue(sheet, cellAddr("B", row), vm.ShipmentCount)
		f.SetCellValue(sheet, cellAddr("C", row), vm.Distance)
		f.SetCellValue(sheet, cellAddr("D", row), vm.BorderCrossings)
		f.SetCellValue(sheet, cellAddr("E", row), vm.VolumeUtilization)
		f.SetCellValue(sheet, cellAddr("F", row), vm.WeightUtilization)
		f.SetCellValue(sheet, cellAddr("G", row), strings.Join(vm.Route, " -> "))
		row++
	}

	f.SetColWidth(sheet, "A", "F", 16)
	f.SetColWidth(sheet, "G", "G", 48)
}

func writeComparisonSheet(f *excelize.File, data *Data, headerStyle int) {
	sheet := "Comparison"
	f.NewSheet(sheet)

	headers := []string{"Vehicle", "Historical", "Current", "Difference", "Improvement (%)", "Note"}
	for i, h := range headers {
		f.SetCellValue(sheet, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheet, "A1", "F1", headerStyle)

	comparisons := data.Result.Validation.CostComparisons

	writeRow := func(row int, key string, c validate.CostComparison) {
		f.SetCellValue(sheet, cellAddr("A", row), key)
		f.SetCellValue(sheet, cellAddr("B", row), c.HistoricalCost)
		f.SetCellValue(sheet, cellAddr("C", row), c.CurrentCost)
		f.SetCellValue(sheet, cellAddr("D", row), c.Difference)
		f.SetCellValue(sheet, cellAddr("E", row), c.ImprovementPercentage)
		f.SetCellValue(sheet, cellAddr("F", row), c.Note)
	}

	row := 2
	// TOTAL row first, it is the comparison that actually matters.
	if total, ok := comparisons[validate.TotalKey]; ok {
		writeRow(row, validate.TotalKey, total)
		f.SetCellStyle(sheet, cellAddr("A", row), cellAddr("F", row), headerStyle)
		row++
	}

	for _, v := range data.Result.BestSolution.Vehicles {
		c, ok := comparisons[v.ID]
		if !ok {
			continue
		}
		writeRow(row, v.ID, c)
		row++
	}

	f.SetColWidth(sheet, "A", "E", 16)
	f.SetColWidth(sheet, "F", "F", 48)
}

// cellAddr builds a cell address like "B7".
func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
