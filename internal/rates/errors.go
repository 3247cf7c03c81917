package rates

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoRate is matched by every lookup failure of the schedule, so callers
	// can treat them uniformly as a failed calculation.
	ErrNoRate = errors.New("no applicable rate")

	// ErrInvalidCategory is returned for categories outside A-E.
	ErrInvalidCategory = errors.New("invalid project category")
)

// OutOfBoundsError means no bracket contains the cost. With an unbounded top
// bracket this only happens for negative costs.
type OutOfBoundsError struct {
	CostMillions decimal.Decimal
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("amount out of bounds: %s million", e.CostMillions)
}

// Is makes errors.Is(err, ErrNoRate) true.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrNoRate
}

// UndefinedRateError means the schedule has no rate for this combination,
// e.g. category E projects under 450 million have no study rate.
type UndefinedRateError struct {
	Category Category
	Bracket  int
	Range    Bracket
	Kind     Kind
}

func (e *UndefinedRateError) Error() string {
	return fmt.Sprintf("no %s rate defined for category %s in range %s million (bracket %d)",
		e.Kind, e.Category, e.Range, e.Bracket)
}

// Is makes errors.Is(err, ErrNoRate) true.
func (e *UndefinedRateError) Is(target error) bool {
	return target == ErrNoRate
}
