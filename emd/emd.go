// Package emd implements empirical mode decomposition of daily-sampled
// signals. A signal is split into intrinsic mode functions (IMFs), ordered
// from the fastest oscillation to the slowest, plus a residual trend.
//
// The default Sifter follows the classic algorithm: envelope the signal
// through its extrema with mirror-extended cubic splines, subtract the
// envelope mean, and repeat until the Cauchy convergence criterion is met.
// Alternative algorithms plug in through the Decomposer interface.
package emd

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/dongran/COVID19-EMD-Analysis/internal/num"
)

// Errors returned by decomposition.
var (
	ErrInvalidInput  = errors.New("emd: invalid input signal")
	ErrNoConvergence = errors.New("emd: sifting made no progress")
)

// minSamples is the shortest signal the sifter accepts; below this no
// interior extrema can exist.
const minSamples = 4

// deadEnergy is the absolute energy below which a protomode counts as zero.
const deadEnergy = 1e-10

// progressRatio is the mode-to-input energy ratio below which extraction
// stops: anything smaller is numerical residue, not a mode.
const progressRatio = 1e-14

// Decomposition holds the intrinsic mode functions extracted from a signal.
// IMFs[0] carries the highest-frequency mode. Residual is the leftover trend;
// it is not an IMF and is excluded from spectral statistics.
type Decomposition struct {
	IMFs     [][]float64
	Residual []float64
}

// NumIMFs returns the number of extracted oscillatory modes.
func (d *Decomposition) NumIMFs() int {
	return len(d.IMFs)
}

// Reconstruct sums the modes and the residual back into a new signal.
func (d *Decomposition) Reconstruct() []float64 {
	out := make([]float64, len(d.Residual))
	copy(out, d.Residual)

	for _, imf := range d.IMFs {
		vecmath.AddBlockInPlace(out, imf)
	}

	return out
}

// Decomposer extracts oscillatory modes from a raw signal.
type Decomposer interface {
	Decompose(signal []float64) (*Decomposition, error)
}

// Config defines sifting parameters.
type Config struct {
	// MaxModes caps the number of extracted IMFs.
	MaxModes int
	// SDThreshold is the Cauchy criterion bound: sifting of one mode stops
	// once sum((h_prev-h)^2)/sum(h_prev^2) falls below it.
	SDThreshold float64
	// MaxSiftIterations caps the sifting iterations per mode; the protomode
	// reached at the cap is accepted as is.
	MaxSiftIterations int
	// RangeThreshold stops the decomposition once the remainder's range
	// shrinks below this fraction of the input range.
	RangeThreshold float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the sifting defaults used throughout the analysis.
func DefaultConfig() Config {
	return Config{
		MaxModes:          10,
		SDThreshold:       0.2,
		MaxSiftIterations: 1000,
		RangeThreshold:    0.001,
	}
}

// WithMaxModes caps the number of extracted IMFs.
func WithMaxModes(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxModes = n
		}
	}
}

// WithSDThreshold sets the Cauchy criterion bound.
func WithSDThreshold(v float64) Option {
	return func(cfg *Config) {
		if v > 0 {
			cfg.SDThreshold = v
		}
	}
}

// WithMaxSiftIterations caps the sifting iterations per mode.
func WithMaxSiftIterations(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxSiftIterations = n
		}
	}
}

// WithRangeThreshold sets the relative remainder range at which the
// decomposition stops.
func WithRangeThreshold(v float64) Option {
	return func(cfg *Config) {
		if v >= 0 {
			cfg.RangeThreshold = v
		}
	}
}

// Sifter is the default Decomposer.
type Sifter struct {
	cfg Config
}

// NewSifter creates a Sifter with the default configuration modified by the
// given options.
func NewSifter(opts ...Option) *Sifter {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Sifter{cfg: cfg}
}

// Config returns the sifter's effective configuration.
func (s *Sifter) Config() Config {
	return s.cfg
}

// Decompose splits the signal into IMFs plus a residual. The input is left
// untouched; all returned slices are freshly allocated and share the input
// length. Modes are extracted fastest first, so the sum of all IMFs and the
// residual restores the input up to rounding.
func (s *Sifter) Decompose(signal []float64) (*Decomposition, error) {
	if len(signal) < minSamples {
		return nil, fmt.Errorf("emd: %d samples, need at least %d: %w",
			len(signal), minSamples, ErrInvalidInput)
	}

	if i := num.FiniteSlice(signal); i >= 0 {
		return nil, fmt.Errorf("emd: non-finite sample %v at index %d: %w",
			signal[i], i, ErrInvalidInput)
	}

	remainder := make([]float64, len(signal))
	copy(remainder, signal)

	inputRange := valueRange(signal)
	inputEnergy := energy(signal)

	var imfs [][]float64

	for len(imfs) < s.cfg.MaxModes {
		maxIdx, minIdx := findExtrema(remainder)
		if len(maxIdx)+len(minIdx) < 3 {
			break // remainder is (near) monotonic
		}

		imf, err := s.sift(remainder)
		if err != nil {
			return nil, err
		}

		if e := energy(imf); e <= deadEnergy || e <= progressRatio*inputEnergy {
			break // numerical residue, nothing meaningful left
		}

		imfs = append(imfs, imf)

		for i := range remainder {
			remainder[i] -= imf[i]
		}

		if valueRange(remainder) < s.cfg.RangeThreshold*inputRange {
			break
		}
	}

	return &Decomposition{IMFs: imfs, Residual: remainder}, nil
}

// sift extracts one protomode from x by repeated envelope-mean subtraction.
func (s *Sifter) sift(x []float64) ([]float64, error) {
	h := make([]float64, len(x))
	copy(h, x)

	prev := make([]float64, len(x))

	for iter := 0; iter < s.cfg.MaxSiftIterations; iter++ {
		maxIdx, minIdx := findExtrema(h)
		if len(maxIdx)+len(minIdx) < 3 {
			break
		}

		mean, err := envelopeMean(h, maxIdx, minIdx)
		if err != nil {
			return nil, err
		}

		copy(prev, h)

		for i := range h {
			h[i] -= mean[i]
		}

		if energy(h) < deadEnergy {
			break
		}

		if cauchyCriterion(prev, h) < s.cfg.SDThreshold && isIMF(h) {
			break
		}
	}

	return h, nil
}

// cauchyCriterion measures the relative change between consecutive sifting
// iterations.
func cauchyCriterion(prev, cur []float64) float64 {
	var diffSq, prevSq float64

	for i := range prev {
		d := cur[i] - prev[i]
		diffSq += d * d
		prevSq += prev[i] * prev[i]
	}

	if prevSq == 0 {
		return 0
	}

	return diffSq / prevSq
}

// isIMF reports whether the extrema and zero-crossing counts differ by at
// most one, the defining property of an intrinsic mode function.
func isIMF(x []float64) bool {
	maxIdx, minIdx := findExtrema(x)
	ext := len(maxIdx) + len(minIdx)
	zc := ZeroCrossings(x)

	d := ext - zc
	if d < 0 {
		d = -d
	}

	return d <= 1
}

func energy(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}

	return sum
}

func valueRange(x []float64) float64 {
	minV, maxV := x[0], x[0]

	for _, v := range x[1:] {
		if v < minV {
			minV = v
		}

		if v > maxV {
			maxV = v
		}
	}

	return maxV - minV
}
