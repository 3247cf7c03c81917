package output

import (
	"encoding/csv"
	"io"

	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, r Report) error {
	f := r.formatter()
	p := f.Printer()

	if _, err := p.Fprintf(w, "--- Administrative costs (run %s) ---\n", r.RunID); err != nil {
		return err
	}
	_, _ = p.Fprintf(w, "Base estimate      | %s\n", f.Currency(r.Project.BaseEstimate))
	_, _ = p.Fprintf(w, "Margin             | %s\n", f.Percent(r.Project.Margin))
	_, _ = p.Fprintf(w, "Project cost       | %s\n", f.Currency(r.Project.Cost()))
	_, _ = p.Fprintf(w, "Category           | %s\n", string(r.Project.Category))
	_, _ = p.Fprintf(w, "Sites              | %d\n", len(r.Entries))

	for _, e := range r.Entries {
		b := e.Breakdown
		_, _ = p.Fprintf(w, "\n--- Site %s ---\n", e.Site)
		_, _ = p.Fprintf(w, "Bracket            | %s million\n", r.bracketLabel(b.Bracket))
		_, _ = p.Fprintf(w, "Study rate         | %s\n", f.Percent(b.StudyRate.Mul(hundred)))
		_, _ = p.Fprintf(w, "Monitoring rate    | %s\n", f.Percent(b.MonitoringRate.Mul(hundred)))
		_, _ = p.Fprintf(w, "Execution reduction| %s\n", f.Percent(b.ExecutionReduction))
		_, _ = p.Fprintf(w, "Execution study    | %s\n", f.Currency(b.ExecutionStudy))
		_, _ = p.Fprintf(w, "Assistance         | %s\n", f.Currency(b.Assistance))
		_, _ = p.Fprintf(w, "Monitoring         | %s\n", f.Currency(b.Monitoring))
		_, _ = p.Fprintf(w, "Total              | %s\n", f.Currency(b.Total))
	}

	_, err := p.Fprintf(w, "\nGlobal total       | %s\n", f.Currency(r.GlobalTotal()))
	return err
}

// CsvFormat outputs one row per site followed by the global total.
func CsvFormat(w io.Writer, r Report) error {
	f := r.formatter()
	cw := csv.NewWriter(w)

	header := []string{"site", "execution study", "assistance", "monitoring", "total",
		"execution reduction (%)", "study rate (%)", "monitoring rate (%)"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range r.Entries {
		b := e.Breakdown
		record := []string{
			e.Site,
			f.NumericCurrency(b.ExecutionStudy),
			f.NumericCurrency(b.Assistance),
			f.NumericCurrency(b.Monitoring),
			f.NumericCurrency(b.Total),
			b.ExecutionReduction.String(),
			b.StudyRate.Mul(hundred).StringFixed(2),
			b.MonitoringRate.Mul(hundred).StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"global total", "", "", "", f.NumericCurrency(r.GlobalTotal()), "", "", ""}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
