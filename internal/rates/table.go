// Package rates holds the regulatory fee schedule used to price studies and
// works monitoring, and resolves the applicable rate for a project.
package rates

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the regulatory project classification selecting a rate row.
type Category string

// Project categories, from simplest to most complex.
const (
	CategoryA Category = "A"
	CategoryB Category = "B"
	CategoryC Category = "C"
	CategoryD Category = "D"
	CategoryE Category = "E"
)

var categories = []Category{CategoryA, CategoryB, CategoryC, CategoryD, CategoryE}

// Categories returns every category in schedule order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory converts user input such as " b" into a Category.
func ParseCategory(value string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(value)))
	for _, known := range categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, value)
}

// Kind selects which of the two rate tables applies.
type Kind int

const (
	// KindStudy is the rate applied to design and execution studies.
	KindStudy Kind = iota
	// KindMonitoring is the rate applied to construction oversight.
	KindMonitoring
)

func (k Kind) String() string {
	switch k {
	case KindStudy:
		return "study"
	case KindMonitoring:
		return "monitoring"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts "study" or "monitoring" into a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "study":
		return KindStudy, nil
	case "monitoring":
		return KindMonitoring, nil
	default:
		return 0, fmt.Errorf("unknown rate kind %q", value)
	}
}

// Bracket is a half-open cost range [Min, Max) in millions of currency units.
// An unbounded bracket has no upper limit and Max is ignored.
type Bracket struct {
	Min       decimal.Decimal
	Max       decimal.Decimal
	Unbounded bool
}

// Contains reports whether costMillions falls inside the bracket.
func (b Bracket) Contains(costMillions decimal.Decimal) bool {
	if costMillions.LessThan(b.Min) {
		return false
	}
	return b.Unbounded || costMillions.LessThan(b.Max)
}

func (b Bracket) String() string {
	if b.Unbounded {
		return b.Min.String() + "+"
	}
	return b.Min.String() + "-" + b.Max.String()
}

// Cell is one entry of a rate table. A cell that is not Defined carries no
// rate at all, which is different from a zero rate.
type Cell struct {
	Percent decimal.Decimal
	Defined bool
}

// Rate returns the cell as a fraction (3.00 becomes 0.03).
func (c Cell) Rate() (decimal.Decimal, bool) {
	if !c.Defined {
		return decimal.Zero, false
	}
	return c.Percent.Div(hundred), true
}

func (c Cell) String() string {
	if !c.Defined {
		return "-"
	}
	return c.Percent.StringFixed(2)
}

var hundred = decimal.NewFromInt(100)

// Table is an immutable fee schedule: ordered brackets and, for every
// category and kind, one cell per bracket.
type Table struct {
	brackets []Bracket
	cells    map[Kind]map[Category][]Cell
}

// NewTable validates and builds a schedule. Brackets must start at zero, be
// contiguous and end with an unbounded bracket; every category needs one cell
// per bracket for both kinds.
func NewTable(brackets []Bracket, study, monitoring map[Category][]Cell) (*Table, error) {
	if len(brackets) == 0 {
		return nil, fmt.Errorf("rate table needs at least one bracket")
	}
	if !brackets[0].Min.IsZero() {
		return nil, fmt.Errorf("first bracket must start at 0, got %s", brackets[0].Min)
	}
	for i, b := range brackets {
		last := i == len(brackets)-1
		if b.Unbounded != last {
			return nil, fmt.Errorf("bracket %d (%s): only the last bracket may be unbounded", i, b)
		}
		if !b.Unbounded && !b.Min.LessThan(b.Max) {
			return nil, fmt.Errorf("bracket %d (%s) is empty", i, b)
		}
		if i > 0 && !brackets[i-1].Max.Equal(b.Min) {
			return nil, fmt.Errorf("bracket %d (%s) does not start where bracket %d ends", i, b, i-1)
		}
	}

	t := &Table{
		brackets: append([]Bracket(nil), brackets...),
		cells:    make(map[Kind]map[Category][]Cell, 2),
	}
	for kind, rows := range map[Kind]map[Category][]Cell{KindStudy: study, KindMonitoring: monitoring} {
		t.cells[kind] = make(map[Category][]Cell, len(categories))
		for _, c := range categories {
			row, ok := rows[c]
			if !ok {
				return nil, fmt.Errorf("%s rates missing category %s", kind, c)
			}
			if len(row) != len(brackets) {
				return nil, fmt.Errorf("%s rates for category %s: want %d cells, got %d", kind, c, len(brackets), len(row))
			}
			t.cells[kind][c] = append([]Cell(nil), row...)
		}
	}
	return t, nil
}

// Brackets returns a copy of the schedule's brackets in ascending order.
func (t *Table) Brackets() []Bracket {
	return append([]Bracket(nil), t.brackets...)
}

// BracketIndex finds the bracket containing costMillions. Brackets are
// disjoint, so the first match is the only match.
func (t *Table) BracketIndex(costMillions decimal.Decimal) (int, error) {
	for i, b := range t.brackets {
		if b.Contains(costMillions) {
			return i, nil
		}
	}
	return -1, &OutOfBoundsError{CostMillions: costMillions}
}

// Cell returns the raw table entry for a category, kind and bracket index.
func (t *Table) Cell(category Category, kind Kind, index int) (Cell, error) {
	byCategory, ok := t.cells[kind]
	if !ok {
		return Cell{}, fmt.Errorf("unknown rate kind %s", kind)
	}
	row, ok := byCategory[category]
	if !ok {
		return Cell{}, fmt.Errorf("%w: %q", ErrInvalidCategory, string(category))
	}
	if index < 0 || index >= len(row) {
		return Cell{}, fmt.Errorf("bracket index %d out of range [0,%d)", index, len(row))
	}
	return row[index], nil
}

// Resolve returns the rate, as a fraction, applying to a project of
// costMillions in the given category.
func (t *Table) Resolve(costMillions decimal.Decimal, category Category, kind Kind) (decimal.Decimal, error) {
	index, err := t.BracketIndex(costMillions)
	if err != nil {
		return decimal.Zero, err
	}
	cell, err := t.Cell(category, kind, index)
	if err != nil {
		return decimal.Zero, err
	}
	rate, ok := cell.Rate()
	if !ok {
		return decimal.Zero, &UndefinedRateError{
			Category: category,
			Bracket:  index,
			Range:    t.brackets[index],
			Kind:     kind,
		}
	}
	return rate, nil
}

// Row is one category line of a rate table, ready for display.
type Row struct {
	Category Category
	Cells    []Cell
}

// Rows returns the table for one kind, one row per category.
func (t *Table) Rows(kind Kind) []Row {
	rows := make([]Row, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, Row{Category: c, Cells: append([]Cell(nil), t.cells[kind][c]...)})
	}
	return rows
}
