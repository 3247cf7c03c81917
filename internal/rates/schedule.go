package rates

import (
	"sync"

	"github.com/shopspring/decimal"
)

// The published schedule. Values are percentages; "-" marks a combination the
// regulation does not price (small projects are never in the complex
// categories).
var (
	scheduleBrackets = []string{"0", "50", "150", "250", "450", "650", "1050", "1450"}

	scheduleStudy = map[Category][]string{
		CategoryA: {"3.00", "2.90", "2.80", "2.70", "2.60", "2.50", "2.40", "2.30"},
		CategoryB: {"-", "3.65", "3.55", "3.45", "3.35", "3.25", "3.15", "3.05"},
		CategoryC: {"-", "-", "4.30", "4.20", "4.10", "4.00", "3.90", "4.80"},
		CategoryD: {"-", "-", "-", "4.95", "4.85", "4.75", "4.65", "4.55"},
		CategoryE: {"-", "-", "-", "-", "5.60", "5.50", "5.40", "5.30"},
	}

	scheduleMonitoring = map[Category][]string{
		CategoryA: {"6.20", "5.70", "5.20", "4.70", "4.50", "3.70", "3.20", "2.70"},
		CategoryB: {"-", "5.80", "5.30", "4.80", "4.30", "3.80", "3.30", "2.80"},
		CategoryC: {"-", "-", "5.40", "4.90", "4.40", "3.90", "3.40", "2.90"},
		CategoryD: {"-", "-", "-", "5.00", "4.50", "4.00", "3.50", "3.00"},
		CategoryE: {"-", "-", "-", "-", "4.60", "4.10", "3.60", "3.10"},
	}
)

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the regulatory fee schedule. The table is built once and
// shared; it is never modified.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := NewTable(parseBrackets(scheduleBrackets), parseCells(scheduleStudy), parseCells(scheduleMonitoring))
		if err != nil {
			panic("rates: invalid built-in schedule: " + err.Error())
		}
		defaultTable = t
	})
	return defaultTable
}

// Resolve looks a rate up in the default schedule.
func Resolve(costMillions decimal.Decimal, category Category, kind Kind) (decimal.Decimal, error) {
	return Default().Resolve(costMillions, category, kind)
}

func parseBrackets(bounds []string) []Bracket {
	brackets := make([]Bracket, len(bounds))
	for i, lower := range bounds {
		brackets[i].Min = decimal.RequireFromString(lower)
		if i == len(bounds)-1 {
			brackets[i].Unbounded = true
			continue
		}
		brackets[i].Max = decimal.RequireFromString(bounds[i+1])
	}
	return brackets
}

func parseCells(rows map[Category][]string) map[Category][]Cell {
	out := make(map[Category][]Cell, len(rows))
	for c, values := range rows {
		cells := make([]Cell, len(values))
		for i, v := range values {
			if v == "-" {
				continue
			}
			cells[i] = Cell{Percent: decimal.RequireFromString(v), Defined: true}
		}
		out[c] = cells
	}
	return out
}
