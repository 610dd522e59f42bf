package core

import "math"

// denormalFloor is the magnitude below which samples are flushed to zero.
const denormalFloor = 1e-30

// Clamp limits value to [lo, hi]. Swapped bounds are reordered.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Min(math.Max(value, lo), hi)
}

// IsFinite reports whether x is neither NaN nor an infinity.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FlushDenormals returns 0 for values too small to matter in a feedback
// loop, where they would otherwise decay through the subnormal range.
func FlushDenormals(x float64) float64 {
	if math.Abs(x) < denormalFloor {
		return 0
	}
	return x
}

// Sanitize makes x safe to store in a recirculating buffer: non-finite
// values become silence and denormals are flushed.
func Sanitize(x float64) float64 {
	if !IsFinite(x) {
		return 0
	}
	return FlushDenormals(x)
}

// LinearToDB converts an amplitude ratio to decibels. Zero maps to -Inf and
// negative ratios to NaN.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	}
	return 20 * math.Log10(linear)
}
