package mathutil

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Round up at midpoint", "1.235", "1.24"},
		{"Round down below midpoint", "1.234", "1.23"},
		{"No rounding needed", "1.23", "1.23"},
		{"Large number", "12345.678", "12345.68"},
		{"Negative number round down", "-1.234", "-1.23"},
		{"Zero", "0", "0"},
		{"Very small positive", "0.001", "0"},
		{"Nearly two cents", "0.019", "0.02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(d(tt.input))
			if !result.Equal(d(tt.expected)) {
				t.Errorf("Round(%s) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		percentage string
		expected   string
	}{
		{"Twenty percent", "100000000", "20", "20000000"},
		{"Zero percent", "5000", "0", "0"},
		{"Fractional percent", "1000", "2.5", "25"},
		{"Hundred percent", "42", "100", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(d(tt.value), d(tt.percentage))
			if !result.Equal(d(tt.expected)) {
				t.Errorf("ApplyPercentage(%s, %s) = %s, expected %s", tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}

func TestComplement(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "1"},
		{"30", "0.7"},
		{"100", "0"},
		{"150", "-0.5"},
	}

	for _, tt := range tests {
		if got := Complement(d(tt.input)); !got.Equal(d(tt.expected)) {
			t.Errorf("Complement(%s) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestClampPercent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-5", "0"},
		{"0", "0"},
		{"20", "20"},
		{"100", "100"},
		{"100.5", "100"},
		{"250", "100"},
	}

	for _, tt := range tests {
		if got := ClampPercent(d(tt.input)); !got.Equal(d(tt.expected)) {
			t.Errorf("ClampPercent(%s) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestIsPercent(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"-0.01", false},
		{"0", true},
		{"55.5", true},
		{"100", true},
		{"100.01", false},
	}

	for _, tt := range tests {
		if got := IsPercent(d(tt.input)); got != tt.expected {
			t.Errorf("IsPercent(%s) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestSum(t *testing.T) {
	if got := Sum(); !got.IsZero() {
		t.Errorf("Sum() = %s, expected 0", got)
	}
	if got := Sum(d("1305000"), d("145000"), d("5700000")); !got.Equal(d("7150000")) {
		t.Errorf("Sum() = %s, expected 7150000", got)
	}
}
