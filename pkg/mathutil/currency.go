// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/mortgage-affordability/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// RoundHalfEvenTo rounds val to the nearest multiple of unit, resolving
// halves to the even multiple. A non-positive unit returns val unchanged.
func RoundHalfEvenTo(val, unit float64) float64 {
	if unit <= 0 {
		return val
	}
	return math.RoundToEven(val/unit) * unit
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Clamp limits val to the closed interval [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(val, hi))
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// FromPercentage converts a percentage (e.g. 4.5) into a fraction (0.045).
func FromPercentage(percentage float64) float64 {
	return percentage / constants.PercentageMultiplier
}

// ToPercentage converts a fraction (0.045) into a percentage (4.5).
func ToPercentage(fraction float64) float64 {
	return fraction * constants.PercentageMultiplier
}

// Sum adds the values together.
func Sum(values ...float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
