// Package testutil provides deterministic daily-sampled test signals and
// tolerance assertions shared by the analysis packages.
package testutil

import (
	"math"
	"math/rand"
)

// SineWithPeriod generates a sine wave sampled once per day with the given
// period in days.
func SineWithPeriod(periodDays, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi / periodDays
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// LinearTrend generates offset + slope*t for t = 0..length-1 days.
func LinearTrend(offset, slope float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = offset + slope*float64(i)
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for
// reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Composite sums any number of equal-length component signals into a new
// slice. It panics on length mismatch; test inputs are fixed-size.
func Composite(components ...[]float64) []float64 {
	if len(components) == 0 {
		return nil
	}

	out := make([]float64, len(components[0]))
	for _, c := range components {
		if len(c) != len(out) {
			panic("testutil: composite component length mismatch")
		}
		for i, v := range c {
			out[i] += v
		}
	}
	return out
}

// Constant generates a constant-valued signal.
func Constant(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
