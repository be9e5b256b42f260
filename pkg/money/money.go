// Package money holds presentation helpers for monetary amounts.
//
// Amounts are carried as float64 through calculations and are rounded only
// when they leave the calculation pipeline (persistence, rendering).
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPlaces matches currency subunits (cents, paise).
const DefaultPlaces int32 = 2

// IsValidAmount reports whether v is a finite, non-negative amount.
func IsValidAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Decimal converts v into a decimal rounded half away from zero.
// Non-finite values map to zero.
func Decimal(v float64, places int32) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v).Round(places)
}

// Round rounds v to the given number of places.
// Non-finite values are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := Decimal(v, places).Float64()
	return f
}

// Format renders v with a fixed number of places, prefixed by the currency code when set.
func Format(v float64, places int32, currency string) string {
	return FormatDecimal(Decimal(v, places), places, currency)
}

// FormatDecimal renders a stored amount the same way Format renders a float.
func FormatDecimal(d decimal.Decimal, places int32, currency string) string {
	amount := d.StringFixed(places)
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}
