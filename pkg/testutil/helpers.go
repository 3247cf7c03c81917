// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/admin-cost/internal/session"
	"github.com/iwvelando/admin-cost/pkg/output"
	"github.com/shopspring/decimal"
)

// FindSite finds a site by name in the entries slice.
// Returns a pointer to the entry if found, nil otherwise.
func FindSite(entries []session.Entry, name string) *session.Entry {
	for i := range entries {
		if entries[i].Site == name {
			return &entries[i]
		}
	}
	return nil
}

// FindSiteSummary finds a site by name in a machine-readable summary.
func FindSiteSummary(sites []output.SiteSummary, name string) *output.SiteSummary {
	for i := range sites {
		if sites[i].Name == name {
			return &sites[i]
		}
	}
	return nil
}

// AssertAmount fails the test when got is not exactly want.
func AssertAmount(t testing.TB, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}
