// Package hsa implements Hilbert spectral analysis of intrinsic mode
// functions: the analytic signal via the frequency-domain Hilbert transform,
// instantaneous amplitude and phase, instantaneous frequency, and
// amplitude-weighted frequency smoothing.
package hsa

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/dongran/COVID19-EMD-Analysis/internal/num"
)

// Errors returned by the analysis functions.
var (
	ErrEmptySignal     = errors.New("hsa: empty signal")
	ErrShortSignal     = errors.New("hsa: signal too short")
	ErrInvalidInterval = errors.New("hsa: sampling interval must be positive")
)

// Analytic computes the analytic signal of x and returns its real and
// imaginary parts, each of the input length.
//
// The transform zero-pads to the next power of two, zeroes the
// negative-frequency half of the spectrum, doubles the positive half (DC and
// Nyquist stay single), inverts, and crops. The padding introduces small
// boundary ripple relative to an exact-length transform; downstream
// statistics are amplitude-weighted, which keeps the effect negligible.
func Analytic(x []float64) (re, im []float64, err error) {
	n := len(x)
	if n == 0 {
		return nil, nil, ErrEmptySignal
	}

	if n == 1 {
		return []float64{x[0]}, []float64{0}, nil
	}

	fftSize := num.NextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, nil, fmt.Errorf("hsa: create FFT plan: %w", err)
	}

	buf := make([]complex128, fftSize)
	for i, v := range x {
		buf[i] = complex(v, 0)
	}

	if err := plan.Forward(buf, buf); err != nil {
		return nil, nil, fmt.Errorf("hsa: forward transform: %w", err)
	}

	half := fftSize / 2
	for i := 1; i < half; i++ {
		buf[i] *= 2
	}

	for i := half + 1; i < fftSize; i++ {
		buf[i] = 0
	}

	if err := plan.Inverse(buf, buf); err != nil {
		return nil, nil, fmt.Errorf("hsa: inverse transform: %w", err)
	}

	re = make([]float64, n)
	im = make([]float64, n)

	for i := 0; i < n; i++ {
		re[i] = real(buf[i])
		im[i] = imag(buf[i])
	}

	return re, im, nil
}

// Amplitude returns the instantaneous amplitude sqrt(re^2 + im^2) of the
// analytic signal. re and im must have the same length.
func Amplitude(re, im []float64) []float64 {
	out := make([]float64, len(re))
	vecmath.Magnitude(out, re, im)

	return out
}

// Phase returns the unwrapped instantaneous phase atan2(im, re) of the
// analytic signal. re and im must have the same length.
func Phase(re, im []float64) []float64 {
	wrapped := make([]float64, len(re))
	for i := range wrapped {
		wrapped[i] = math.Atan2(im[i], re[i])
	}

	return UnwrapPhase(wrapped)
}

// UnwrapPhase returns a new phase slice with +/-2*pi discontinuities removed.
func UnwrapPhase(phase []float64) []float64 {
	if len(phase) == 0 {
		return nil
	}

	out := make([]float64, len(phase))
	out[0] = phase[0]

	offset := 0.0

	for i := 1; i < len(phase); i++ {
		d := phase[i] - phase[i-1]

		switch {
		case d > math.Pi:
			offset -= 2 * math.Pi
		case d < -math.Pi:
			offset += 2 * math.Pi
		}

		out[i] = phase[i] + offset
	}

	return out
}

// InstantaneousFrequency converts an unwrapped phase into frequency in
// cycles per time unit: f[i] = (phase[i+1]-phase[i]) / (2*pi*dt). The final
// sample repeats the preceding difference so the result keeps the input
// length.
func InstantaneousFrequency(phase []float64, dt float64) ([]float64, error) {
	if len(phase) < 2 {
		return nil, fmt.Errorf("hsa: %d phase samples, need at least 2: %w",
			len(phase), ErrShortSignal)
	}

	if dt <= 0 {
		return nil, fmt.Errorf("hsa: dt = %v: %w", dt, ErrInvalidInterval)
	}

	out := make([]float64, len(phase))
	scale := 1 / (2 * math.Pi * dt)

	for i := 0; i+1 < len(phase); i++ {
		out[i] = (phase[i+1] - phase[i]) * scale
	}

	out[len(out)-1] = out[len(out)-2]

	return out, nil
}

// SmoothWeighted smooths an instantaneous-frequency track with an
// amplitude-weighted moving window spanning window/2 samples to each side.
// Samples closer than half a window to either boundary keep their raw value,
// as do stretches whose amplitude weight sums to zero. freq and amp must
// have the same length. A window below 2 returns a plain copy.
func SmoothWeighted(freq, amp []float64, window int) []float64 {
	out := make([]float64, len(freq))
	copy(out, freq)

	if window < 2 {
		return out
	}

	half := window / 2

	for j := half; j < len(freq)-half; j++ {
		var wsum, fsum float64

		for k := j - half; k <= j+half; k++ {
			wsum += amp[k]
			fsum += amp[k] * freq[k]
		}

		if wsum > 0 {
			out[j] = fsum / wsum
		}
	}

	return out
}

// Track holds the per-sample Hilbert attributes of one mode.
type Track struct {
	Amplitude []float64 // instantaneous amplitude (envelope)
	Frequency []float64 // smoothed instantaneous frequency, cycles per time unit
	Raw       []float64 // unsmoothed instantaneous frequency
}

// Analyze computes the full Hilbert track of one mode: analytic signal,
// envelope, and amplitude-weighted smoothed instantaneous frequency.
// The signal needs at least two samples.
func Analyze(x []float64, dt float64, smoothWindow int) (*Track, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("hsa: %d samples, need at least 2: %w",
			len(x), ErrShortSignal)
	}

	re, im, err := Analytic(x)
	if err != nil {
		return nil, err
	}

	amp := Amplitude(re, im)

	raw, err := InstantaneousFrequency(Phase(re, im), dt)
	if err != nil {
		return nil, err
	}

	return &Track{
		Amplitude: amp,
		Frequency: SmoothWeighted(raw, amp, smoothWindow),
		Raw:       raw,
	}, nil
}
