package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultSites are the sites of the original works programme.
var DefaultSites = []string{"BELLIL", "DJEBEL M'RAKEB"}

// ErrWrongStep is returned when an input arrives at the wrong step.
var ErrWrongStep = errors.New("input not expected at this step")

// Step is a position in the wizard.
type Step int

// Steps of a run, in order.
const (
	StepProject Step = iota + 1
	StepSite
	StepResults
)

func (s Step) String() string {
	switch s {
	case StepProject:
		return "project"
	case StepSite:
		return "site"
	case StepResults:
		return "results"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Reductions are the percentages entered for a site with a previous study.
// Only Execution is priced; the other two are kept for the record.
type Reductions struct {
	Preliminaries decimal.Decimal
	Preliminary   decimal.Decimal
	Execution     decimal.Decimal
}

// SiteInput is what the user enters for one site.
type SiteInput struct {
	HasExistingStudy bool
	Reductions       Reductions
}

// EffectiveExecutionReduction is the reduction fed to the calculator: zero
// unless a previous study exists.
func (in SiteInput) EffectiveExecutionReduction() decimal.Decimal {
	if !in.HasExistingStudy {
		return decimal.Zero
	}
	return in.Reductions.Execution
}

// SiteState is the progress indicator state of one site.
type SiteState int

// Progress states.
const (
	SitePending SiteState = iota
	SiteCurrent
	SiteDone
)

// SiteStatus is one dot of the progress indicator.
type SiteStatus struct {
	Site  string
	State SiteState
}

// Session is a single linear run. It is not safe for concurrent use: inputs
// arrive one at a time.
type Session struct {
	id      string
	sites   []string
	calc    *estimate.Calculator
	logger  *zap.Logger
	step    Step
	current int
	project estimate.Project
	results *Results
}

// New starts a run over sites, or over DefaultSites when sites is empty.
// Blank and repeated names are dropped since each site is estimated once.
func New(sites []string, calc *estimate.Calculator, logger *zap.Logger) *Session {
	sites = uniqueSites(sites)
	if len(sites) == 0 {
		sites = DefaultSites
	}
	if calc == nil {
		calc = estimate.NewCalculator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{
		id:      id,
		sites:   sites,
		calc:    calc,
		logger:  logger.With(zap.String("run", id)),
		step:    StepProject,
		results: NewResults(),
	}
}

// ID identifies the run in logs and outputs.
func (s *Session) ID() string { return s.id }

// Step returns the current step.
func (s *Session) Step() Step { return s.step }

// Sites returns the sites of the run in processing order.
func (s *Session) Sites() []string { return append([]string(nil), s.sites...) }

// Project returns the submitted project parameters.
func (s *Session) Project() estimate.Project { return s.project }

// Results returns the breakdowns collected so far.
func (s *Session) Results() *Results { return s.results }

// SubmitProject records the project parameters and moves to the first site.
// Rates are checked right away with a zero reduction so that a project the
// schedule cannot price is rejected here, with the user still on this step.
func (s *Session) SubmitProject(p estimate.Project) error {
	if s.step != StepProject {
		return fmt.Errorf("%w: project submitted during %s step", ErrWrongStep, s.step)
	}
	if p.BaseEstimate.IsNegative() {
		return fmt.Errorf("base estimate must not be negative, got %s", p.BaseEstimate)
	}
	if _, err := s.calc.ComputeProject(p, decimal.Zero); err != nil {
		s.logger.Warn("project rejected",
			zap.String("op", "session.SubmitProject"),
			zap.String("category", string(p.Category)),
			zap.String("costMillions", p.CostMillions().String()),
			zap.Error(err),
		)
		return err
	}

	s.project = p
	s.step = StepSite
	s.logger.Debug("project accepted",
		zap.String("op", "session.SubmitProject"),
		zap.String("cost", p.Cost().String()),
		zap.String("category", string(p.Category)),
	)
	return nil
}

// CurrentSite returns the site awaiting input.
func (s *Session) CurrentSite() (string, bool) {
	if s.step != StepSite {
		return "", false
	}
	return s.sites[s.current], true
}

// SubmitSite prices the current site. On failure nothing is recorded and the
// run stays on the same site.
func (s *Session) SubmitSite(in SiteInput) (estimate.Breakdown, error) {
	site, ok := s.CurrentSite()
	if !ok {
		return estimate.Breakdown{}, fmt.Errorf("%w: site submitted during %s step", ErrWrongStep, s.step)
	}

	b, err := s.calc.ComputeProject(s.project, in.EffectiveExecutionReduction())
	if err != nil {
		s.logger.Error("site calculation failed",
			zap.String("op", "session.SubmitSite"),
			zap.String("site", site),
			zap.Error(err),
		)
		return estimate.Breakdown{}, fmt.Errorf("site %s: %w", site, err)
	}
	if err := s.results.Add(site, b); err != nil {
		return estimate.Breakdown{}, err
	}

	s.logger.Info("site estimated",
		zap.String("op", "session.SubmitSite"),
		zap.String("site", site),
		zap.String("total", b.Total.String()),
	)

	s.current++
	if s.current == len(s.sites) {
		s.step = StepResults
	}
	return b, nil
}

// Progress returns one status per site for the progress indicator.
func (s *Session) Progress() []SiteStatus {
	statuses := make([]SiteStatus, len(s.sites))
	for i, site := range s.sites {
		state := SitePending
		switch {
		case s.step == StepResults || i < s.current:
			state = SiteDone
		case s.step == StepSite && i == s.current:
			state = SiteCurrent
		}
		statuses[i] = SiteStatus{Site: site, State: state}
	}
	return statuses
}

func uniqueSites(sites []string) []string {
	seen := make(map[string]struct{}, len(sites))
	out := make([]string, 0, len(sites))
	for _, site := range sites {
		site = strings.TrimSpace(site)
		if site == "" {
			continue
		}
		if _, dup := seen[site]; dup {
			continue
		}
		seen[site] = struct{}{}
		out = append(out, site)
	}
	return out
}
