// Package batch prices a whole run file: the project once, then every site
// in order.
package batch

import (
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/admin-cost/internal/config"
	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/internal/session"
	"github.com/iwvelando/admin-cost/pkg/format"
	"github.com/iwvelando/admin-cost/pkg/output"
	"go.uber.org/zap"
)

// ErrInvalidInput marks errors in the run file itself, as opposed to a
// project the fee schedule cannot price.
var ErrInvalidInput = errors.New("invalid input")

// SiteError reports the site whose calculation failed.
type SiteError struct {
	Site string
	Err  error
}

func (e *SiteError) Error() string { return e.Err.Error() }

func (e *SiteError) Unwrap() error { return e.Err }

// Options tune a run. The zero value prices against the regulatory schedule.
type Options struct {
	Calculator *estimate.Calculator

	// OnSite is called after each site is priced.
	OnSite func(done, total int, site string, b estimate.Breakdown)
}

// Result is a finished run.
type Result struct {
	Session   *session.Session
	Inputs    map[string]session.SiteInput
	Warnings  []string
	Formatter *format.Formatter
	Duration  time.Duration
	calc      *estimate.Calculator
}

// Report returns the run ready for the output writers.
func (r *Result) Report() output.Report {
	report := output.NewReport(r.Session, r.Inputs, r.Formatter)
	report.Table = r.calc.Table()
	return report
}

// Run prices every site of conf. The first failure aborts the run and no
// partial result is returned.
func Run(logger *zap.Logger, conf *config.Configuration, opts Options) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	calc := opts.Calculator
	if calc == nil {
		calc = estimate.NewCalculator(nil)
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "batch.Run"),
		)
	}

	formatter, err := format.NewFormatter(conf.Output.Locale, conf.Output.CurrencySymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	project, err := conf.Project.ToProject()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	inputs, err := conf.SiteInputs()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s := session.New(conf.SiteNames(), calc, logger)
	if err := s.SubmitProject(project); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	sites := s.Sites()
	for i, site := range sites {
		b, err := s.SubmitSite(inputs[site])
		if err != nil {
			return nil, &SiteError{Site: site, Err: err}
		}
		if opts.OnSite != nil {
			opts.OnSite(i+1, len(sites), site, b)
		}
	}

	result := &Result{
		Session:   s,
		Inputs:    inputs,
		Warnings:  warnings,
		Formatter: formatter,
		Duration:  time.Since(start),
		calc:      calc,
	}
	logger.Info("run estimated",
		zap.String("op", "batch.Run"),
		zap.String("run", s.ID()),
		zap.Int("sites", len(sites)),
		zap.String("globalTotal", s.Results().GlobalTotal().String()),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}
