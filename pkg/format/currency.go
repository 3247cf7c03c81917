// Package format renders amounts and percentages for display.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts with the CLDR number conventions of a locale.
type Formatter struct {
	printer     *message.Printer
	symbol      string
	symbolAfter bool
}

// NewFormatter builds a formatter for a BCP 47 locale such as "fr-DZ" or
// "en-US". The currency symbol follows the amount in locales that write a
// decimal comma.
func NewFormatter(locale, symbol string) (*Formatter, error) {
	if strings.TrimSpace(locale) == "" {
		locale = constants.DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	p := message.NewPrinter(tag)
	sample := p.Sprint(number.Decimal(1.5, number.Scale(1)))
	return &Formatter{
		printer:     p,
		symbol:      strings.TrimSpace(symbol),
		symbolAfter: !strings.Contains(sample, "."),
	}, nil
}

// MustFormatter is NewFormatter for locales known to be valid.
func MustFormatter(locale, symbol string) *Formatter {
	f, err := NewFormatter(locale, symbol)
	if err != nil {
		panic(err)
	}
	return f
}

var defaultFormatter = MustFormatter(constants.DefaultLocale, constants.DefaultCurrencySymbol)

// Default returns the fr-DZ dinar formatter.
func Default() *Formatter {
	return defaultFormatter
}

// Printer returns the message printer of the locale.
func (f *Formatter) Printer() *message.Printer {
	return f.printer
}

// Currency renders an amount with two decimals, grouping and the currency
// symbol, e.g. "1 305 000,00 DA" or "-$1,234.56".
func (f *Formatter) Currency(amount decimal.Decimal) string {
	digits := f.number(amount.Abs())
	sign := f.sign(amount)
	switch {
	case f.symbol == "":
		return sign + digits
	case f.symbolAfter:
		return sign + digits + " " + f.symbol
	case utf8.RuneCountInString(f.symbol) == 1:
		return sign + f.symbol + digits
	default:
		return sign + f.symbol + " " + digits
	}
}

// NumericCurrency renders an amount with separators but without a symbol
// (e.g. "-1,234.56").
func (f *Formatter) NumericCurrency(amount decimal.Decimal) string {
	return f.sign(amount) + f.number(amount.Abs())
}

// Percent renders a percentage with two decimals, e.g. "2,90 %".
func (f *Formatter) Percent(p decimal.Decimal) string {
	s := f.sign(p) + f.number(p.Abs())
	if f.symbolAfter {
		return s + " %"
	}
	return s + "%"
}

func (f *Formatter) sign(amount decimal.Decimal) string {
	if amount.Round(constants.CurrencyDecimals).IsNegative() {
		return "-"
	}
	return ""
}

// number groups a non-negative amount rounded half away from zero to cents.
// Amounts stay exact in float64 up to tens of trillions.
func (f *Formatter) number(value decimal.Decimal) string {
	rounded := value.Round(constants.CurrencyDecimals).InexactFloat64()
	return f.printer.Sprint(number.Decimal(rounded, number.Scale(constants.CurrencyDecimals)))
}

// Currency renders an amount with the default formatter.
func Currency(amount decimal.Decimal) string {
	return defaultFormatter.Currency(amount)
}

// NumericCurrency renders an amount without symbol with the default formatter.
func NumericCurrency(amount decimal.Decimal) string {
	return defaultFormatter.NumericCurrency(amount)
}
