// Package series defines the daily-sampled time series type shared by the
// loader, the decomposition pipeline, and the renderers.
package series

import (
	"errors"
	"fmt"
	"time"

	"github.com/dongran/COVID19-EMD-Analysis/internal/num"
)

// Errors returned by series constructors and accessors.
var (
	ErrEmpty          = errors.New("series: empty series")
	ErrLengthMismatch = errors.New("series: dates and values differ in length")
	ErrNonFinite      = errors.New("series: non-finite value")
	ErrUnorderedDates = errors.New("series: dates must strictly increase")
	ErrBadWindow      = errors.New("series: window outside series bounds")
)

// TimeSeries is an immutable sequence of dated observations sampled once per
// day. Construction copies its inputs; accessors return copies, so a
// TimeSeries can be shared freely across the pipeline.
type TimeSeries struct {
	dates  []time.Time
	values []float64
}

// New validates and copies the given dates and values into a TimeSeries.
// Dates must strictly increase and values must be finite.
func New(dates []time.Time, values []float64) (*TimeSeries, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("series: %d dates vs %d values: %w",
			len(dates), len(values), ErrLengthMismatch)
	}

	if len(values) == 0 {
		return nil, ErrEmpty
	}

	if i := num.FiniteSlice(values); i >= 0 {
		return nil, fmt.Errorf("series: value at %s is %v: %w",
			dates[i].Format("2006-01-02"), values[i], ErrNonFinite)
	}

	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("series: date %s does not follow %s: %w",
				dates[i].Format("2006-01-02"), dates[i-1].Format("2006-01-02"),
				ErrUnorderedDates)
		}
	}

	ts := &TimeSeries{
		dates:  make([]time.Time, len(dates)),
		values: make([]float64, len(values)),
	}
	copy(ts.dates, dates)
	copy(ts.values, values)

	return ts, nil
}

// Len returns the number of observations.
func (ts *TimeSeries) Len() int {
	return len(ts.values)
}

// Start returns the date of the first observation.
func (ts *TimeSeries) Start() time.Time {
	return ts.dates[0]
}

// End returns the date of the last observation.
func (ts *TimeSeries) End() time.Time {
	return ts.dates[len(ts.dates)-1]
}

// Dates returns a copy of the observation dates.
func (ts *TimeSeries) Dates() []time.Time {
	out := make([]time.Time, len(ts.dates))
	copy(out, ts.dates)

	return out
}

// Values returns a copy of the observation values.
func (ts *TimeSeries) Values() []float64 {
	out := make([]float64, len(ts.values))
	copy(out, ts.values)

	return out
}

// Slice returns a copy of the half-open observation range [i, j).
func (ts *TimeSeries) Slice(i, j int) (*TimeSeries, error) {
	if i < 0 || j > len(ts.values) || i >= j {
		return nil, fmt.Errorf("series: slice [%d, %d) of %d observations: %w",
			i, j, len(ts.values), ErrBadWindow)
	}

	return New(ts.dates[i:j], ts.values[i:j])
}

// Window returns a copy of the last n observations.
func (ts *TimeSeries) Window(n int) (*TimeSeries, error) {
	if n <= 0 || n > len(ts.values) {
		return nil, fmt.Errorf("series: window of %d from %d observations: %w",
			n, len(ts.values), ErrBadWindow)
	}

	return ts.Slice(len(ts.values)-n, len(ts.values))
}
