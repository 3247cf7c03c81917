// Package output provides utilities for formatting and displaying estimation results.
package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/internal/session"
	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/iwvelando/admin-cost/pkg/format"
	"github.com/iwvelando/admin-cost/pkg/validation"
	"github.com/shopspring/decimal"
)

// Report is everything a writer needs to render a finished run.
type Report struct {
	RunID     string
	Project   estimate.Project
	Entries   []session.Entry
	Inputs    map[string]session.SiteInput
	Table     *rates.Table
	Formatter *format.Formatter
}

// NewReport captures a finished session. inputs may be nil when the site
// inputs are not known, in which case YAML output records no reductions.
func NewReport(s *session.Session, inputs map[string]session.SiteInput, f *format.Formatter) Report {
	return Report{
		RunID:     s.ID(),
		Project:   s.Project(),
		Entries:   s.Results().Entries(),
		Inputs:    inputs,
		Formatter: f,
	}
}

func (r Report) formatter() *format.Formatter {
	if r.Formatter == nil {
		return format.Default()
	}
	return r.Formatter
}

func (r Report) table() *rates.Table {
	if r.Table == nil {
		return rates.Default()
	}
	return r.Table
}

// GlobalTotal sums the site totals in order.
func (r Report) GlobalTotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.Entries {
		total = total.Add(e.Breakdown.Total)
	}
	return total
}

func (r Report) bracketLabel(index int) string {
	brackets := r.table().Brackets()
	if index < 0 || index >= len(brackets) {
		return "?"
	}
	return brackets[index].String()
}

// Write renders the report in one of the supported output formats.
func Write(w io.Writer, outputFormat string, r Report) error {
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, r)
	case constants.OutputFormatCSV:
		return CsvFormat(w, r)
	case constants.OutputFormatJSON:
		return JSONFormat(w, r)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, r)
	}
	return fmt.Errorf("unhandled output format %s", outputFormat)
}
