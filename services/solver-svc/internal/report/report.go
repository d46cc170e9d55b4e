// Package report renders optimization results for humans and downstream
// tooling: a console summary, a JSON payload, an Excel workbook and a PDF
// one-pager. Which outputs are produced is driven by configuration.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"cvrp/pkg/config"
	"cvrp/pkg/fuzzy"
	"cvrp/pkg/logger"
	"cvrp/services/solver-svc/internal/annealing"
)

// Data is everything the renderers need about one finished run.
type Data struct {
	Scenario string
	Result   *annealing.Result

	// BestCost is the defuzzified total, precomputed with the run's
	// configured defuzzification method.
	BestCost float64

	// CostBounds carries the fuzzy total for renderers that show the
	// spread.
	CostBounds fuzzy.Triangular

	Currency string
}

// NewData prepares render input from an optimization result.
func NewData(scenario string, res *annealing.Result, defuzz fuzzy.DefuzzMethod, currency string) *Data {
	if currency == "" {
		currency = "$"
	}
	return &Data{
		Scenario:   scenario,
		Result:     res,
		BestCost:   res.BestCost.Defuzzify(defuzz),
		CostBounds: res.BestCost,
		Currency:   currency,
	}
}

// AcceptanceRate returns the share of accepted moves in percent, or 0 when
// no moves were decided.
func (d *Data) AcceptanceRate() float64 {
	s := d.Result.Statistics
	decided := s.Accepted + s.Rejected
	if decided == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(decided) * 100
}

// Reporter writes the configured outputs for a run.
type Reporter struct {
	cfg config.ReportConfig
}

// NewReporter creates a reporter.
func NewReporter(cfg config.ReportConfig) *Reporter {
	return &Reporter{cfg: cfg}
}

// Write renders every enabled output. Rendering failures of optional outputs
// are logged and do not abort the remaining ones; the first error is
// returned.
func (r *Reporter) Write(data *Data) error {
	var firstErr error

	fail := func(kind string, err error) {
		logger.Log.Error("Report output failed", "kind", kind, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if r.cfg.Console {
		PrintResults(os.Stdout, data)
	}

	if r.cfg.JSONPath != "" {
		if err := SaveJSON(r.cfg.JSONPath, data); err != nil {
			fail("json", err)
		}
	}

	if r.cfg.ExcelPath != "" {
		if err := SaveExcel(r.cfg.ExcelPath, data); err != nil {
			fail("excel", err)
		}
	}

	if r.cfg.PDFPath != "" {
		if err := SavePDF(r.cfg.PDFPath, r.cfg.PDF, data); err != nil {
			fail("pdf", err)
		}
	}

	return firstErr
}

// Payload is the serializable result document, also reused as the run
// record's stored result.
func Payload(data *Data) map[string]any {
	v := data.Result.Validation
	return map[string]any{
		"is_valid":         v.IsValid,
		"best_cost":        data.BestCost,
		"metrics":          data.Result.Metrics,
		"statistics":       data.Result.Statistics,
		"cost_comparisons": v.CostComparisons,
		"improvements":     v.Improvements,
		"violations":       v.Violations,
	}
}

// SaveJSON writes the result payload to path, creating parent directories.
func SaveJSON(path string, data *Data) error {
	raw, err := json.MarshalIndent(Payload(data), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	logger.Log.Info("Saved JSON report", "path", path)
	return nil
}
