package output

import (
	"encoding/json"
	"io"

	"github.com/iwvelando/admin-cost/internal/config"
	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ProjectSummary describes the project of a run.
type ProjectSummary struct {
	BaseEstimate decimal.Decimal `json:"baseEstimate"`
	Margin       decimal.Decimal `json:"margin"`
	Category     string          `json:"category"`
	Cost         decimal.Decimal `json:"cost"`
	CostMillions decimal.Decimal `json:"costMillions"`
}

// BreakdownSummary is the machine-readable form of a breakdown. Rates are
// percentages.
type BreakdownSummary struct {
	ExecutionStudy     decimal.Decimal `json:"executionStudy"`
	Assistance         decimal.Decimal `json:"assistance"`
	Monitoring         decimal.Decimal `json:"monitoring"`
	Total              decimal.Decimal `json:"total"`
	ExecutionReduction decimal.Decimal `json:"executionReduction"`
	StudyRate          decimal.Decimal `json:"studyRate"`
	MonitoringRate     decimal.Decimal `json:"monitoringRate"`
	Bracket            string          `json:"bracket"`
}

// FormattedBreakdown holds the display strings of a breakdown.
type FormattedBreakdown struct {
	ExecutionStudy string `json:"executionStudy"`
	Assistance     string `json:"assistance"`
	Monitoring     string `json:"monitoring"`
	Total          string `json:"total"`
}

// SiteSummary is the result of one site.
type SiteSummary struct {
	Name      string             `json:"name"`
	Breakdown BreakdownSummary   `json:"breakdown"`
	Formatted FormattedBreakdown `json:"formatted"`
}

// Summary is the machine-readable form of a report, shared by the JSON
// output and the HTTP API.
type Summary struct {
	RunID                string          `json:"runId"`
	Project              ProjectSummary  `json:"project"`
	Sites                []SiteSummary   `json:"sites"`
	GlobalTotal          decimal.Decimal `json:"globalTotal"`
	FormattedGlobalTotal string          `json:"formattedGlobalTotal"`
}

// NewSummary converts a report, keeping site order.
func NewSummary(r Report) Summary {
	f := r.formatter()
	summary := Summary{
		RunID: r.RunID,
		Project: ProjectSummary{
			BaseEstimate: r.Project.BaseEstimate,
			Margin:       r.Project.Margin,
			Category:     string(r.Project.Category),
			Cost:         r.Project.Cost(),
			CostMillions: r.Project.CostMillions(),
		},
		Sites:                make([]SiteSummary, 0, len(r.Entries)),
		GlobalTotal:          r.GlobalTotal(),
		FormattedGlobalTotal: f.Currency(r.GlobalTotal()),
	}
	for _, e := range r.Entries {
		summary.Sites = append(summary.Sites, SiteSummary{
			Name:      e.Site,
			Breakdown: r.SummarizeBreakdown(e.Breakdown),
			Formatted: FormatBreakdown(e.Breakdown, r),
		})
	}
	return summary
}

// SummarizeBreakdown converts a single breakdown.
func (r Report) SummarizeBreakdown(b estimate.Breakdown) BreakdownSummary {
	return BreakdownSummary{
		ExecutionStudy:     b.ExecutionStudy,
		Assistance:         b.Assistance,
		Monitoring:         b.Monitoring,
		Total:              b.Total,
		ExecutionReduction: b.ExecutionReduction,
		StudyRate:          b.StudyRate.Mul(hundred),
		MonitoringRate:     b.MonitoringRate.Mul(hundred),
		Bracket:            r.bracketLabel(b.Bracket),
	}
}

// FormatBreakdown renders the amounts of a breakdown for display.
func FormatBreakdown(b estimate.Breakdown, r Report) FormattedBreakdown {
	f := r.formatter()
	return FormattedBreakdown{
		ExecutionStudy: f.Currency(b.ExecutionStudy),
		Assistance:     f.Currency(b.Assistance),
		Monitoring:     f.Currency(b.Monitoring),
		Total:          f.Currency(b.Total),
	}
}

// JSONFormat outputs the summary as indented JSON.
func JSONFormat(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSummary(r))
}

type yamlResult struct {
	Name  string `yaml:"name"`
	Total string `yaml:"total"`
}

// yamlRun is a run file with the results appended. The loader ignores the
// extra keys, so the output can be fed back to the estimate command.
type yamlRun struct {
	config.Configuration `yaml:",inline"`
	RunID                string       `yaml:"runId"`
	Results              []yamlResult `yaml:"results"`
	GlobalTotal          string       `yaml:"globalTotal"`
}

// RunFile rebuilds the run file of a report.
func RunFile(r Report) *config.Configuration {
	sites := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		sites[i] = e.Site
	}
	return config.FromRun(r.Project, sites, r.Inputs)
}

// YAMLFormat outputs the run file followed by the results.
func YAMLFormat(w io.Writer, r Report) error {
	run := yamlRun{
		Configuration: *RunFile(r),
		RunID:         r.RunID,
		GlobalTotal:   r.GlobalTotal().StringFixed(2),
	}
	for _, e := range r.Entries {
		run.Results = append(run.Results, yamlResult{Name: e.Site, Total: e.Breakdown.Total.StringFixed(2)})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(run); err != nil {
		return err
	}
	return enc.Close()
}
