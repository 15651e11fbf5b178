// Package analysis orchestrates the mode analysis of one signal: empirical
// mode decomposition, reconstruction and ordering checks, Hilbert spectral
// attributes per mode, and the per-mode statistics used by reports and
// figures.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/dongran/COVID19-EMD-Analysis/emd"
	"github.com/dongran/COVID19-EMD-Analysis/hsa"
	"github.com/dongran/COVID19-EMD-Analysis/internal/num"
	"github.com/dongran/COVID19-EMD-Analysis/series"
	"github.com/dongran/COVID19-EMD-Analysis/stats/mode"
)

// ErrReconstruction reports that the decomposed modes no longer sum back to
// the input within tolerance. It always aborts the analysis.
var ErrReconstruction = errors.New("analysis: reconstruction check failed")

// Result carries everything one Analyze call produces. Index i of IMFs,
// Frequencies, Amplitudes, and Modes refers to the same mode, fastest first.
// The residual has no spectral attributes.
type Result struct {
	Name        string
	Signal      []float64
	IMFs        [][]float64
	Residual    []float64
	Frequencies [][]float64 // smoothed instantaneous frequency per mode
	Amplitudes  [][]float64 // instantaneous amplitude envelope per mode
	Modes       []mode.Stats
	Dt          float64
}

// NumIMFs returns the number of oscillatory modes in the result.
func (r *Result) NumIMFs() int {
	return len(r.IMFs)
}

// Analyzer runs the decomposition pipeline with a fixed configuration. The
// zero value is not usable; construct with New.
type Analyzer struct {
	decomposer   emd.Decomposer
	dt           float64
	smoothWindow int
	reconTol     float64
	logger       log.FieldLogger
}

// Option mutates an Analyzer during construction.
type Option func(*Analyzer)

// WithDecomposer swaps the decomposition strategy. The default is an
// emd.Sifter with default configuration.
func WithDecomposer(d emd.Decomposer) Option {
	return func(a *Analyzer) {
		if d != nil {
			a.decomposer = d
		}
	}
}

// WithDt sets the sampling interval in days. The default is 1.
func WithDt(dt float64) Option {
	return func(a *Analyzer) {
		if dt > 0 {
			a.dt = dt
		}
	}
}

// WithSmoothingWindow sets the amplitude-weighted frequency smoothing window
// in samples. Zero disables smoothing. The default is 30.
func WithSmoothingWindow(w int) Option {
	return func(a *Analyzer) {
		if w >= 0 {
			a.smoothWindow = w
		}
	}
}

// WithReconstructionTolerance sets the relative error above which the
// reconstruction check fails. The default is 1e-6.
func WithReconstructionTolerance(tol float64) Option {
	return func(a *Analyzer) {
		if tol > 0 {
			a.reconTol = tol
		}
	}
}

// WithLogger routes pipeline logging to the given logger instead of the
// logrus standard logger.
func WithLogger(l log.FieldLogger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Analyzer with defaults suited to daily epidemic series,
// modified by the given options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		decomposer:   emd.NewSifter(),
		dt:           1,
		smoothWindow: 30,
		reconTol:     1e-6,
		logger:       log.StandardLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// Analyze decomposes the signal and derives the Hilbert attributes and
// statistics of every mode. The input is not modified. Signals shorter than
// two samples or containing non-finite values fail with emd.ErrInvalidInput;
// a decomposition that does not sum back to the input fails with
// ErrReconstruction.
func (a *Analyzer) Analyze(signal []float64, name string) (*Result, error) {
	if len(signal) < 2 {
		return nil, fmt.Errorf("analysis: %d samples, need at least 2: %w",
			len(signal), emd.ErrInvalidInput)
	}

	if i := num.FiniteSlice(signal); i >= 0 {
		return nil, fmt.Errorf("analysis: non-finite sample %v at index %d: %w",
			signal[i], i, emd.ErrInvalidInput)
	}

	decomp, err := a.decomposer.Decompose(signal)
	if err != nil {
		return nil, err
	}

	reconErr := reconstructionError(decomp.Reconstruct(), signal)
	if reconErr > a.reconTol {
		return nil, fmt.Errorf("analysis: relative reconstruction error %.3g exceeds %.3g: %w",
			reconErr, a.reconTol, ErrReconstruction)
	}

	if sortFastestFirst(decomp.IMFs) {
		a.logger.WithField("name", name).Warn("modes arrived out of order, re-sorted by zero crossings")
	}

	res := &Result{
		Name:        name,
		Signal:      append([]float64(nil), signal...),
		IMFs:        decomp.IMFs,
		Residual:    decomp.Residual,
		Frequencies: make([][]float64, len(decomp.IMFs)),
		Amplitudes:  make([][]float64, len(decomp.IMFs)),
		Modes:       make([]mode.Stats, len(decomp.IMFs)),
		Dt:          a.dt,
	}

	for i, imf := range decomp.IMFs {
		track, err := hsa.Analyze(imf, a.dt, a.smoothWindow)
		if err != nil {
			return nil, fmt.Errorf("analysis: mode %d: %w", i, err)
		}

		res.Frequencies[i] = track.Frequency
		res.Amplitudes[i] = track.Amplitude
		res.Modes[i] = mode.Calculate(track.Frequency, track.Amplitude)
	}

	mode.FillEnergyShares(res.Modes)

	for i, share := range mode.VarianceShares(res.IMFs) {
		res.Modes[i].VarianceShare = share
	}

	a.logger.WithFields(log.Fields{
		"name":        name,
		"samples":     len(signal),
		"modes":       len(res.IMFs),
		"recon_error": reconErr,
	}).Info("analysis complete")

	return res, nil
}

// AnalyzeSeries runs Analyze on the values of a time series.
func (a *Analyzer) AnalyzeSeries(ts *series.TimeSeries, name string) (*Result, error) {
	return a.Analyze(ts.Values(), name)
}

// reconstructionError is the largest pointwise deviation relative to the
// signal peak. A zero signal falls back to the absolute deviation.
func reconstructionError(got, want []float64) float64 {
	var maxDiff, peak float64

	for i := range want {
		if d := math.Abs(got[i] - want[i]); d > maxDiff {
			maxDiff = d
		}

		if a := math.Abs(want[i]); a > peak {
			peak = a
		}
	}

	if peak == 0 {
		return maxDiff
	}

	return maxDiff / peak
}

// sortFastestFirst stably reorders modes by descending zero-crossing count
// and reports whether anything moved. Decomposers emit fastest-first already;
// this only normalizes ties and pathological orderings.
func sortFastestFirst(imfs [][]float64) bool {
	counts := make([]int, len(imfs))
	for i, imf := range imfs {
		counts[i] = emd.ZeroCrossings(imf)
	}

	ordered := true
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[i-1] {
			ordered = false
			break
		}
	}

	if ordered {
		return false
	}

	idx := make([]int, len(imfs))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		return counts[idx[i]] > counts[idx[j]]
	})

	sorted := make([][]float64, len(imfs))
	for i, j := range idx {
		sorted[i] = imfs[j]
	}

	copy(imfs, sorted)

	return true
}
