package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wildfunctions/formula/pkg/expr"
	"github.com/wildfunctions/formula/pkg/series"
)

// Result summarizes one formula of a run.
type Result struct {
	Name       string              `json:"name"`
	ID         *int64              `json:"id,omitempty"`
	Expr       string              `json:"expr,omitempty"`
	Simplified string              `json:"simplified,omitempty"`
	Value      decimal.NullDecimal `json:"value"`
	Validity   expr.Validity       `json:"validity"`
	Depth      int                 `json:"depth"`
	Steps      int                 `json:"steps"`
	Variables  []string            `json:"variables,omitempty"`
	Error      string              `json:"error,omitempty"`
	Duration   time.Duration       `json:"duration_ns"`
}

// Report summarizes the entire run.
type Report struct {
	RunID    string                `json:"run_id"`
	Started  time.Time             `json:"started"`
	Duration time.Duration         `json:"duration_ns"`
	Steps    int                   `json:"steps"`
	Results  []Result              `json:"results"`
	Counts   map[expr.Validity]int `json:"counts"`
}

// WriteReport writes r in the given format.
func WriteReport(w io.Writer, r Report, format string) error {
	switch format {
	case "json":
		return WriteJSONReport(w, r)
	case "", "text":
		WriteTextReport(w, r)
		return nil
	}
	return fmt.Errorf("unknown output format: %s", format)
}

// WriteTextReport writes the report in human-readable format.
func WriteTextReport(w io.Writer, r Report) {
	for _, res := range r.Results {
		WriteTextResult(w, res)
	}
	fmt.Fprintln(w, "\n========== RUN SUMMARY ==========")
	fmt.Fprintf(w, "Run:       %s\n", r.RunID)
	fmt.Fprintf(w, "Formulas:  %d\n", len(r.Results))
	fmt.Fprintf(w, "Steps:     %d\n", r.Steps)
	fmt.Fprintf(w, "Duration:  %s\n", r.Duration.Round(time.Microsecond))
	var counts []string
	for _, v := range expr.Validities() {
		counts = append(counts, fmt.Sprintf("%s=%d", v, r.Counts[v]))
	}
	fmt.Fprintf(w, "Validity:  %s\n", strings.Join(counts, " "))
	fmt.Fprintln(w, "=================================")
}

// WriteTextResult writes a single result line.
func WriteTextResult(w io.Writer, res Result) {
	name := res.Name
	if res.ID != nil {
		name = fmt.Sprintf("%s#%d", res.Name, *res.ID)
	}
	switch {
	case res.Error != "":
		fmt.Fprintf(w, "%-20s %-11s | %s\n", name, res.Validity, res.Error)
	case res.Validity == expr.OK:
		fmt.Fprintf(w, "%-20s %-11s | %s = %s\n", name, res.Validity, res.Expr, formatValue(res.Value))
	default:
		fmt.Fprintf(w, "%-20s %-11s | %s\n", name, res.Validity, res.Expr)
	}
}

// WriteJSONReport writes the report as JSON.
func WriteJSONReport(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// SeriesReport pairs a series evaluation with its smoothed values.
type SeriesReport struct {
	series.Result
	Smoothed []decimal.NullDecimal `json:"smoothed,omitempty"`
}

// WriteSeries writes a series report in the given format.
func WriteSeries(w io.Writer, r SeriesReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "", "text":
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	fmt.Fprintf(w, "Formula: %s\n", r.Formula)
	for i, p := range r.Points {
		line := fmt.Sprintf("%4d  %-11s %12s", p.Generation, p.Validity, formatValue(p.Value))
		if i < len(r.Smoothed) {
			line += fmt.Sprintf("  smoothed %s", formatValue(r.Smoothed[i]))
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func formatValue(v decimal.NullDecimal) string {
	if !v.Valid {
		return "null"
	}
	return v.Decimal.String()
}
