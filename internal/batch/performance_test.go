package batch

import (
	"fmt"
	"testing"
	"time"

	"github.com/iwvelando/admin-cost/internal/config"
	"github.com/iwvelando/admin-cost/pkg/output"
	"go.uber.org/zap"
)

// TestPerformance prices a large programme and reports the timings.
func TestPerformance(t *testing.T) {
	if !testing.Verbose() {
		t.Skip("Skipping performance test. Run with -v to enable.")
	}

	conf := &config.Configuration{
		Project: config.ProjectConfig{BaseEstimate: 750000000, Margin: 15, Category: "C"},
	}
	for i := 0; i < 5000; i++ {
		site := config.SiteConfig{Name: fmt.Sprintf("site-%04d", i)}
		if i%3 == 0 {
			site.HasExistingStudy = true
			site.Reductions.Execution = config.Number(i % 101)
		}
		conf.Sites = append(conf.Sites, site)
	}

	start := time.Now()
	result, err := Run(zap.NewNop(), conf, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	runTime := time.Since(start)

	start = time.Now()
	summary := output.NewSummary(result.Report())
	summaryTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Price %d sites: %v", len(summary.Sites), runTime)
	t.Logf("  Build summary: %v", summaryTime)

	if runTime > 5*time.Second {
		t.Errorf("pricing took too long: %v", runTime)
	}
	if len(summary.Sites) != len(conf.Sites) {
		t.Errorf("got %d sites, want %d", len(summary.Sites), len(conf.Sites))
	}
}

func BenchmarkRun(b *testing.B) {
	conf := twoSiteRun()
	logger := zap.NewNop()
	for i := 0; i < b.N; i++ {
		if _, err := Run(logger, conf, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
