// Package mathutil provides percentage helpers over exact decimals.
package mathutil

import (
	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	hundred    = decimal.NewFromInt(constants.PercentageMultiplier)
	maxPercent = decimal.NewFromInt(constants.MaxPercent)
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Only used for display; calculations keep full precision.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyDecimals)
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(percentage).Div(hundred)
}

// Complement returns 1 - percentage/100, the factor left after a reduction.
func Complement(percentage decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(percentage.Div(hundred))
}

// ClampPercent limits a percentage to [0, 100].
func ClampPercent(percentage decimal.Decimal) decimal.Decimal {
	if percentage.IsNegative() {
		return decimal.Zero
	}
	if percentage.GreaterThan(maxPercent) {
		return maxPercent
	}
	return percentage
}

// IsPercent reports whether a value lies in [0, 100].
func IsPercent(percentage decimal.Decimal) bool {
	return !percentage.IsNegative() && !percentage.GreaterThan(maxPercent)
}

// Sum adds values in order.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
