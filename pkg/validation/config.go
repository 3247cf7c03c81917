// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/admin-cost/pkg/constants"
)

// ValidateFinite rejects NaN and infinities, which YAML accepts as .nan and
// .inf.
func ValidateFinite(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number, got %v", name, value)
	}
	return nil
}

// ValidatePercent checks that a user-entered percentage lies in [0, 100].
func ValidatePercent(name string, value float64) error {
	if err := ValidateFinite(name, value); err != nil {
		return err
	}
	if value < 0 || value > constants.MaxPercent {
		return fmt.Errorf("%s must be between 0 and %d, got %v", name, constants.MaxPercent, value)
	}
	return nil
}

// ValidateNonNegative checks that an amount is finite and not negative.
func ValidateNonNegative(name string, value float64) error {
	if err := ValidateFinite(name, value); err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("%s must not be negative, got %v", name, value)
	}
	return nil
}

// RunValidator checks a run file and reports what will be adjusted or
// ignored. Hard errors are reported by the conversion to domain types.
type RunValidator struct {
	Margin float64
	Sites  []SiteConfig
}

// SiteConfig is the part of a site entry the validator looks at.
type SiteConfig struct {
	Name             string
	HasExistingStudy bool
	Reductions       []float64
}

// ValidateAll validates the run and returns warnings
func (rv *RunValidator) ValidateAll() []string {
	var warnings []string

	if ValidateFinite("margin", rv.Margin) == nil && (rv.Margin < 0 || rv.Margin > constants.MaxPercent) {
		warnings = append(warnings, fmt.Sprintf("Margin %v%% is outside [0, %d] and will be clamped",
			rv.Margin, constants.MaxPercent))
	}

	if len(rv.Sites) == 0 {
		warnings = append(warnings, "No sites configured - the default sites will be used")
	}

	named := 0
	seen := make(map[string]bool)
	for i, site := range rv.Sites {
		name := strings.TrimSpace(site.Name)
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("Site #%d has no name and will be skipped", i+1))
			continue
		}
		if seen[name] {
			warnings = append(warnings, fmt.Sprintf("Site '%s' is listed more than once - only the first entry is estimated", name))
			continue
		}
		seen[name] = true
		named++

		if !site.HasExistingStudy {
			for _, r := range site.Reductions {
				if r != 0 {
					warnings = append(warnings, fmt.Sprintf("Site '%s' has reductions but no existing study - reductions are ignored", name))
					break
				}
			}
		}
	}

	if len(rv.Sites) > 0 && named == 0 {
		warnings = append(warnings, "No named site configured - the default sites will be used")
	}

	return warnings
}
