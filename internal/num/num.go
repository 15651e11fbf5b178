// Package num provides small numeric helpers shared across the analysis
// packages: tolerance comparisons, finiteness checks, and FFT sizing.
package num

import "math"

const defaultEpsilon = 1e-12

// NearlyEqual reports whether a and b are equal within eps, using the
// absolute difference for small magnitudes and the relative difference
// otherwise.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FiniteSlice returns the index of the first non-finite value in data,
// or -1 if every value is finite.
func FiniteSlice(data []float64) int {
	for i, v := range data {
		if !IsFinite(v) {
			return i
		}
	}

	return -1
}

// RelativeError returns |a-b| / max(|a|, |b|), or the absolute difference
// when both magnitudes are zero.
func RelativeError(a, b float64) float64 {
	diff := math.Abs(a - b)
	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff
	}

	return diff / largest
}

// NextPowerOf2 returns the smallest power of two >= n, with a minimum of 1.
func NextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
