package normalize

import "math"

// RoundCents rounds a dollar amount to 2 decimal places, half-up. Per
// spec.md §4.3 step 8 and §9, all intermediate arithmetic stays in double
// precision; only the final per-line allowed amount and the claim total
// are rounded.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
