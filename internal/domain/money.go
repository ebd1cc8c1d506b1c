package domain

import "math"

// All monetary amounts are int64 cents. Config files express money in
// currency units (floats); Cents converts at the boundary.

// Cents converts a currency-unit value to cents, rounding half away from zero.
func Cents(units float64) int64 {
	return int64(math.Round(units * 100))
}

// Units converts cents back to currency units for presentation.
func Units(cents int64) float64 {
	return float64(cents) / 100
}

// ScaleAmount multiplies an amount by a fractional factor and rounds to the
// nearest cent.
func ScaleAmount(amount int64, factor float64) int64 {
	if !isFinite(factor) {
		return amount
	}
	return int64(math.Round(float64(amount) * factor))
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(amount int64) int64 {
	if amount < 0 {
		return 0
	}
	return amount
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
