// Package money wraps shopspring/decimal with the fixed-point conventions
// used throughout the invoice pipeline: monetary values carry two fractional
// digits (EUR minor units).
package money

import (
	"github.com/shopspring/decimal"
)

// Zero is decimal zero.
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// FromFloat creates a decimal from a float, rounded to cents.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FromString parses a decimal from a string.
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses a decimal from a string, panics on error.
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Round rounds to two fractional digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Mul multiplies two decimals, rounded to cents.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Round(2)
}

// Percent computes amount * (rate/100), rounded to cents.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return Zero
	}
	return amount.Mul(rate).Div(hundred).Round(2)
}

// Sum sums a slice of decimals.
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// WithinOneCent reports whether two amounts differ by at most one minor
// currency unit. Cross-check rules tolerate that much rounding drift.
func WithinOneCent(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(decimal.New(1, -2))
}

// Format renders an amount with exactly two fractional digits, e.g. "190.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatRate renders a percentage without a fractional digit when the value
// is integral ("19"), with the exact fraction otherwise ("5.5").
func FormatRate(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.Truncate(0).String()
	}
	return d.String()
}
