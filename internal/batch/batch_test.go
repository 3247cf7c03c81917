package batch

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/iwvelando/admin-cost/internal/config"
	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/internal/session"
	"github.com/iwvelando/admin-cost/pkg/testutil"
	"go.uber.org/zap"
)

func twoSiteRun() *config.Configuration {
	return &config.Configuration{
		Project: config.ProjectConfig{BaseEstimate: 100000000, Margin: 0, Category: "A"},
		Sites: []config.SiteConfig{
			{Name: "BELLIL"},
			{Name: "DJEBEL M'RAKEB", HasExistingStudy: true, Reductions: config.ReductionsConfig{Execution: 100}},
		},
	}
}

func TestRun(t *testing.T) {
	var seen []string
	result, err := Run(zap.NewNop(), twoSiteRun(), Options{
		OnSite: func(done, total int, site string, b estimate.Breakdown) {
			if total != 2 {
				t.Errorf("total = %d, want 2", total)
			}
			seen = append(seen, site)
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(seen) != 2 || seen[0] != "BELLIL" {
		t.Errorf("OnSite calls = %v", seen)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", result.Warnings)
	}

	entries := result.Session.Results().Entries()
	bellil := testutil.FindSite(entries, "BELLIL")
	if bellil == nil {
		t.Fatal("BELLIL missing from results")
	}
	testutil.AssertAmount(t, "BELLIL total", bellil.Breakdown.Total, "7150000")
	testutil.AssertAmount(t, "global total", result.Session.Results().GlobalTotal(), "12995000")

	report := result.Report()
	if report.RunID != result.Session.ID() || len(report.Entries) != 2 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestRunDefaultsSitesWithWarning(t *testing.T) {
	conf := twoSiteRun()
	conf.Sites = nil
	result, err := Run(nil, conf, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Session.Results().Sites(); len(got) != len(session.DefaultSites) {
		t.Errorf("Sites() = %v, want defaults", got)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "default sites") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
}

func TestRunInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Configuration)
	}{
		{"Unknown category", func(c *config.Configuration) { c.Project.Category = "Z" }},
		{"Negative estimate", func(c *config.Configuration) { c.Project.BaseEstimate = -10 }},
		{"Reduction above 100", func(c *config.Configuration) { c.Sites[1].Reductions.Execution = 150 }},
		{"Bad locale", func(c *config.Configuration) { c.Output.Locale = "not a locale!" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := twoSiteRun()
			tt.mutate(conf)
			_, err := Run(nil, conf, Options{})
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Run() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRunUnpricedProject(t *testing.T) {
	conf := twoSiteRun()
	conf.Project.Category = "E"
	_, err := Run(nil, conf, Options{})
	if !errors.Is(err, rates.ErrNoRate) {
		t.Fatalf("Run() error = %v, want ErrNoRate", err)
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Error("pricing failure must not be reported as invalid input")
	}
	var siteErr *SiteError
	if errors.As(err, &siteErr) {
		t.Error("project failure must not name a site")
	}
}

func TestRunRejectsNonFiniteNumbers(t *testing.T) {
	const run = `project:
  baseEstimate: %s
  margin: %s
  category: A
sites:
  - name: BELLIL
    hasExistingStudy: true
    reductions:
      preliminaries: %s
      preliminary: %s
      execution: %s
`
	fields := []string{"baseEstimate", "margin", "preliminaries", "preliminary", "execution"}
	valid := []string{"100000000", "20", "10", "20", "30"}

	for i, field := range fields {
		for _, bad := range []string{".inf", "-.inf", ".nan"} {
			t.Run(field+"="+bad, func(t *testing.T) {
				values := make([]any, len(valid))
				for j, v := range valid {
					values[j] = v
				}
				values[i] = bad

				conf, err := config.LoadConfigurationFromReader(strings.NewReader(fmt.Sprintf(run, values...)))
				if err != nil {
					t.Fatalf("LoadConfigurationFromReader() error = %v", err)
				}
				_, err = Run(zap.NewNop(), conf, Options{})
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("Run() error = %v, want ErrInvalidInput", err)
				}
			})
		}
	}
}

func TestRunIgnoresNonFiniteReductionsWithoutStudy(t *testing.T) {
	const run = `project:
  baseEstimate: 100000000
  category: A
sites:
  - name: BELLIL
    hasExistingStudy: false
    reductions:
      execution: .nan
      preliminary: 250
`
	conf, err := config.LoadConfigurationFromReader(strings.NewReader(run))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	result, err := Run(zap.NewNop(), conf, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	testutil.AssertAmount(t, "BELLIL total", result.Session.Results().GlobalTotal(), "7150000")
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "reductions are ignored") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
}

func TestRunWarnsWhenNoSiteIsNamed(t *testing.T) {
	conf := twoSiteRun()
	conf.Sites = []config.SiteConfig{{Name: " "}}
	result, err := Run(nil, conf, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Session.Sites(); len(got) != len(session.DefaultSites) {
		t.Errorf("Sites() = %v, want defaults", got)
	}
	last := result.Warnings[len(result.Warnings)-1]
	if !strings.Contains(last, "default sites") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
}
