package tpe

import (
	"fmt"
	"math"
)

//////
// Helper functions.
//////

// floatFrom converts a parameter value to float64 for density math.
//
// The conversion is checked: if the value cannot round-trip (a 64-bit integer
// beyond 2^53, for example), the function panics instead of silently losing
// precision. Such a parameter cannot be modeled faithfully by a float64
// density, so continuing would corrupt every downstream score.
func floatFrom[P Number](v P) float64 {
	f := float64(v)
	if P(f) != v {
		panic(fmt.Sprintf("tpe: parameter value %v is not exactly representable as float64", v))
	}
	return f
}

// floatTo converts a float64 back into the parameter type.
//
// Floating-point parameter types take the value as-is (narrowing to float32
// is permitted, it cannot change ordering within a search range). Integer
// parameter types receive the nearest integer. The conversion is checked:
// NaN, infinities, and values outside the parameter type's range panic
// instead of being truncated to garbage.
func floatTo[P Number](f float64) P {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(fmt.Sprintf("tpe: cannot convert %v to a parameter value", f))
	}

	if isInteger[P]() {
		r := math.Round(f)
		p := P(r)
		if float64(p) != r {
			panic(fmt.Sprintf("tpe: value %v is out of the parameter type's range", f))
		}
		return p
	}

	return P(f)
}

// isInteger reports whether the parameter type is an integer type.
// The conversion trick avoids reflection: only integer types truncate 0.5.
func isInteger[P Number]() bool {
	half := 0.5
	return P(half) == P(0)
}

// clamp limits a value to the inclusive range [lo, hi].
func clamp[P Number](v, lo, hi P) P {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundRatio computes round(cutoff × total) as a count.
func roundRatio(cutoff float64, total int) int {
	return int(math.Round(cutoff * float64(total)))
}
