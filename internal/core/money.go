// Package core holds the travel-expense domain model and the settlement
// engine. Amounts are decimal values with two-digit money precision.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of decimal places kept for money amounts.
const MoneyPrecision = 2

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for malformed, negative, or zero values.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseRate converts a decimal string to a positive exchange rate.
// Rates keep their full precision; only the derived base amount is rounded.
func ParseRate(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return d, nil
}

// BaseAmount computes original × rate rounded half-up to money precision.
func BaseAmount(original, rate decimal.Decimal) decimal.Decimal {
	return original.Mul(rate).Round(MoneyPrecision)
}

// FormatAmount renders an amount with two decimals and a comma separator,
// the form used by the CSV export.
func FormatAmount(d decimal.Decimal) string {
	return strings.ReplaceAll(d.StringFixed(MoneyPrecision), ".", ",")
}

// FormatRate renders a rate with a comma separator, keeping full precision.
func FormatRate(d decimal.Decimal) string {
	return strings.ReplaceAll(d.String(), ".", ",")
}
