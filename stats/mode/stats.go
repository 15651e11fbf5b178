// Package mode summarizes the Hilbert attributes of a single intrinsic mode
// function into scalar statistics for ranking and reporting.
package mode

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats holds the descriptive statistics of one decomposed mode.
type Stats struct {
	MeanFrequency float64 // amplitude-weighted mean instantaneous frequency, cycles per day
	MeanPeriod    float64 // 1 / MeanFrequency in days; NaN when the mode does not oscillate
	MeanAmplitude float64 // mean of the instantaneous amplitude envelope
	Energy        float64 // sum of squared amplitudes
	EnergyShare   float64 // fraction of the summed mode energy, see FillEnergyShares
	VarianceShare float64 // fraction of the summed mode variance, see VarianceShares
	Oscillatory   bool    // false when the weighted mean frequency is not positive
}

// Calculate computes the statistics of one mode from its instantaneous
// frequency and amplitude tracks. freq and amp must have the same length.
// Weighting by amplitude keeps low-energy stretches, where the phase is
// numerically unreliable, from dominating the frequency estimate.
//
// A mode whose weighted mean frequency is not positive carries no resolvable
// oscillation; its MeanPeriod is NaN and Oscillatory is false. Slow trend
// modes are expected to land here.
func Calculate(freq, amp []float64) Stats {
	n := len(freq)
	if n == 0 {
		return Stats{MeanPeriod: math.NaN()}
	}

	var ampSum, weighted, energy float64
	for i := 0; i < n; i++ {
		a := amp[i]
		ampSum += a
		energy += a * a
		weighted += a * freq[i]
	}

	s := Stats{
		MeanAmplitude: ampSum / float64(n),
		Energy:        energy,
		MeanPeriod:    math.NaN(),
	}

	if ampSum > 0 {
		s.MeanFrequency = weighted / ampSum
	}

	if s.MeanFrequency > 0 {
		s.MeanPeriod = 1 / s.MeanFrequency
		s.Oscillatory = true
	}

	return s
}

// FillEnergyShares sets EnergyShare on every entry to its fraction of the
// summed Energy across the given modes. All shares stay zero when the total
// is zero. Callers decide which modes take part; the residual is normally
// left out.
func FillEnergyShares(modes []Stats) {
	var total float64
	for i := range modes {
		total += modes[i].Energy
	}

	if total <= 0 {
		return
	}

	for i := range modes {
		modes[i].EnergyShare = modes[i].Energy / total
	}
}

// VarianceShares returns each mode's share of the summed sample variance of
// the raw mode values. Every mode needs at least two samples. Shares are all
// zero when the total variance is zero. Since the modes of one decomposition
// share a length, the sample-variance ratios equal the population ones.
func VarianceShares(modes [][]float64) []float64 {
	shares := make([]float64, len(modes))
	variances := make([]float64, len(modes))

	var total float64
	for i, m := range modes {
		variances[i] = stat.Variance(m, nil)
		total += variances[i]
	}

	if total <= 0 {
		return shares
	}

	for i, v := range variances {
		shares[i] = v / total
	}

	return shares
}
