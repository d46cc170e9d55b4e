package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	marotocfg "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appcfg "cvrp/pkg/config"
	"cvrp/pkg/logger"
	"cvrp/services/solver-svc/internal/validate"
)

// Shared PDF styles.
var (
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241}
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{
		Size:  24,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	normalStyle = props.Text{
		Size: 10,
	}

	boldStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

// SavePDF renders the one-page run summary.
func SavePDF(path string, cfg appcfg.PDFConfig, data *Data) error {
	builder := marotocfg.NewBuilder().
		WithLeftMargin(cfg.MarginLeft).
		WithTopMargin(cfg.MarginTop).
		WithRightMargin(cfg.MarginRight)
	if cfg.EnablePageNumbers {
		builder = builder.WithPageNumber()
	}

	m := maroto.New(builder.Build())

	addHeader(m, data)
	addSummaryContent(m, data)
	addVehicleTable(m, data)
	addComparisonContent(m, data)
	addFooter(m)

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, doc.GetBytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	logger.Log.Info("Saved PDF report", "path", path)
	return nil
}

func addHeader(m core.Maroto, data *Data) {
	m.AddRow(15,
		text.NewCol(12, "Route Optimization Report", titleStyle),
	)

	m.AddRow(5,
		line.NewCol(12),
	)

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Scenario: %s", data.Scenario), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)

	m.AddRow(8)
}

func addSummaryContent(m core.Maroto, data *Data) {
	res := data.Result

	addSection(m, "Results")

	addMetricCards(m, []metricCard{
		{Label: "Best Cost", Value: fmt.Sprintf("%s%.2f", data.Currency, data.BestCost), Highlight: true},
		{Label: "Total Distance", Value: fmt.Sprintf("%.0f km", res.Metrics.TotalDistance), Highlight: true},
		{Label: "Vehicles Used", Value: fmt.Sprintf("%d", res.Metrics.VehiclesUsed)},
	})

	m.AddRow(5)
	addMetricCards(m, []metricCard{
		{Label: "Shipments", Value: fmt.Sprintf("%d", res.Metrics.TotalShipments)},
		{Label: "Border Crossings", Value: fmt.Sprintf("%d", res.Metrics.TotalBorderCrossings)},
		{Label: "Iterations", Value: fmt.Sprintf("%d", res.Statistics.Iterations)},
		{Label: "Acceptance Rate", Value: fmt.Sprintf("%.1f%%", data.AcceptanceRate())},
	})

	m.AddRow(5)
	addKeyValueTable(m, []keyValue{
		{"Cost Range", fmt.Sprintf("%s%.2f .. %s%.2f", data.Currency, data.CostBounds.Left, data.Currency, data.CostBounds.Right)},
		{"Solution Valid", fmt.Sprintf("%v", res.Validation.IsValid)},
		{"Improvements Found", fmt.Sprintf("%d", res.Statistics.Improvements)},
	})
}

func addVehicleTable(m core.Maroto, data *Data) {
	addSection(m, "Fleet")

	m.AddRow(8,
		text.NewCol(2, "Vehicle", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Shipments", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Distance", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Volume %", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Weight %", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Crossings", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	for _, v := range data.Result.BestSolution.Vehicles {
		vm := data.Result.Metrics.VehicleMetrics[v.ID]
		m.AddRow(6,
			text.NewCol(2, v.ID, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%d", vm.ShipmentCount), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%.0f km", vm.Distance), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%.1f", vm.VolumeUtilization), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%.1f", vm.WeightUtilization), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%d", vm.BorderCrossings), tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}

	// Routes take full width below the table.
	for _, v := range data.Result.BestSolution.Vehicles {
		vm := data.Result.Metrics.VehicleMetrics[v.ID]
		if len(vm.Route) == 0 {
			continue
		}
		m.AddRow(5,
			text.NewCol(12, fmt.Sprintf("%s: %s", v.ID, strings.Join(vm.Route, " -> ")), smallStyle),
		)
	}
}

func addComparisonContent(m core.Maroto, data *Data) {
	total, ok := data.Result.Validation.CostComparisons[validate.TotalKey]
	if !ok {
		return
	}

	addSection(m, "Historical Comparison")
	addKeyValueTable(m, []keyValue{
		{"Historical Total", fmt.Sprintf("%s%.2f", data.Currency, total.HistoricalCost)},
		{"Optimized Total", fmt.Sprintf("%s%.2f", data.Currency, total.CurrentCost)},
		{"Difference", fmt.Sprintf("%s%.2f (%.1f%%)", data.Currency, total.Difference, total.ImprovementPercentage)},
	})
}

func addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)
	if colSize < 2 {
		colSize = 2
	}

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 14
		}

		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(20, cols...)
}

type keyValue struct {
	Key   string
	Value string
}

func addKeyValueTable(m core.Maroto, items []keyValue) {
	for _, item := range items {
		m.AddRow(6,
			text.NewCol(6, item.Key, boldStyle),
			text.NewCol(6, item.Value, normalStyle),
		)
	}
}

func addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(5)
}

func addFooter(m core.Maroto) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by CVRP Optimizer | %s", time.Now().Format("2006-01-02 15:04:05")),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
