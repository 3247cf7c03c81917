package validation

import (
	"math"
	"strings"
	"testing"
)

func TestValidatePercent(t *testing.T) {
	tests := []struct {
		value     float64
		expectErr bool
	}{
		{0, false},
		{45.5, false},
		{100, false},
		{-0.1, true},
		{100.1, true},
		{math.NaN(), true},
		{math.Inf(1), true},
		{math.Inf(-1), true},
	}

	for _, tt := range tests {
		err := ValidatePercent("reduction", tt.value)
		if (err != nil) != tt.expectErr {
			t.Errorf("ValidatePercent(%v) error = %v, expectErr %v", tt.value, err, tt.expectErr)
		}
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("base estimate", 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateNonNegative("base estimate", -1)
	if err == nil || !strings.Contains(err.Error(), "base estimate") {
		t.Errorf("expected named error, got %v", err)
	}
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		err := ValidateNonNegative("base estimate", v)
		if err == nil || !strings.Contains(err.Error(), "finite") {
			t.Errorf("ValidateNonNegative(%v) error = %v, want finite error", v, err)
		}
	}
}

func TestValidateFinite(t *testing.T) {
	if err := ValidateFinite("margin", -250); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		if err := ValidateFinite("margin", v); err == nil {
			t.Errorf("ValidateFinite(%v) expected error", v)
		}
	}
}

func TestRunValidatorValidateAll(t *testing.T) {
	tests := []struct {
		name         string
		validator    RunValidator
		wantContains []string
	}{
		{
			name: "Clean run",
			validator: RunValidator{
				Margin: 20,
				Sites:  []SiteConfig{{Name: "BELLIL"}, {Name: "TIOUT", HasExistingStudy: true, Reductions: []float64{0, 0, 30}}},
			},
		},
		{
			name:         "Margin out of range",
			validator:    RunValidator{Margin: 120, Sites: []SiteConfig{{Name: "A"}}},
			wantContains: []string{"Margin 120% is outside"},
		},
		{
			name:         "No sites",
			validator:    RunValidator{Margin: 10},
			wantContains: []string{"default sites"},
		},
		{
			name: "Duplicate and unnamed sites",
			validator: RunValidator{Sites: []SiteConfig{
				{Name: "A"}, {Name: " "}, {Name: "A"},
			}},
			wantContains: []string{"Site #2 has no name", "Site 'A' is listed more than once"},
		},
		{
			name: "Only unnamed sites",
			validator: RunValidator{Sites: []SiteConfig{
				{Name: ""}, {Name: "  "},
			}},
			wantContains: []string{"Site #1 has no name", "Site #2 has no name", "default sites"},
		},
		{
			name:      "Non-finite margin is an error, not a warning",
			validator: RunValidator{Margin: math.Inf(1), Sites: []SiteConfig{{Name: "A"}}},
		},
		{
			name: "Reductions without study",
			validator: RunValidator{Sites: []SiteConfig{
				{Name: "A", Reductions: []float64{0, 0, 25}},
			}},
			wantContains: []string{"reductions are ignored"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.validator.ValidateAll()
			if len(tt.wantContains) == 0 && len(warnings) != 0 {
				t.Fatalf("expected no warnings, got %v", warnings)
			}
			if len(warnings) != len(tt.wantContains) {
				t.Fatalf("expected %d warnings, got %v", len(tt.wantContains), warnings)
			}
			for i, want := range tt.wantContains {
				if !strings.Contains(warnings[i], want) {
					t.Errorf("warning %d = %q, want it to contain %q", i, warnings[i], want)
				}
			}
		})
	}
}
