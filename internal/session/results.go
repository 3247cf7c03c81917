// Package session drives one estimation run: project parameters first, then
// one reduction input per site, collecting a breakdown per site in order.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateSite is returned when a site already has a breakdown.
	ErrDuplicateSite = errors.New("site already estimated")

	// ErrEmptySiteName is returned for blank site names.
	ErrEmptySiteName = errors.New("site name is empty")
)

// Entry pairs a site with its breakdown.
type Entry struct {
	Site      string
	Breakdown estimate.Breakdown
}

// Results maps site names to breakdowns, keeping insertion order. Entries
// can only be appended, and each site at most once.
type Results struct {
	entries []Entry
	index   map[string]int
}

// NewResults returns an empty collection.
func NewResults() *Results {
	return &Results{index: make(map[string]int)}
}

// Add appends the breakdown of a site.
func (r *Results) Add(site string, b estimate.Breakdown) error {
	if strings.TrimSpace(site) == "" {
		return ErrEmptySiteName
	}
	if _, exists := r.index[site]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSite, site)
	}
	r.index[site] = len(r.entries)
	r.entries = append(r.entries, Entry{Site: site, Breakdown: b})
	return nil
}

// Get returns the breakdown of a site.
func (r *Results) Get(site string) (estimate.Breakdown, bool) {
	i, ok := r.index[site]
	if !ok {
		return estimate.Breakdown{}, false
	}
	return r.entries[i].Breakdown, true
}

// Len returns the number of sites estimated so far.
func (r *Results) Len() int {
	return len(r.entries)
}

// Sites returns site names in insertion order.
func (r *Results) Sites() []string {
	sites := make([]string, len(r.entries))
	for i, e := range r.entries {
		sites[i] = e.Site
	}
	return sites
}

// Entries returns a copy of the collection in insertion order.
func (r *Results) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// GlobalTotal sums the site totals in insertion order.
func (r *Results) GlobalTotal() decimal.Decimal {
	totals := make([]decimal.Decimal, len(r.entries))
	for i, e := range r.entries {
		totals[i] = e.Breakdown.Total
	}
	return mathutil.Sum(totals...)
}
