// Package render draws the analysis figures as PNG files: the raw series
// with pandemic event markers, the stacked mode panels, and the Hilbert
// spectra. Layout, axis limits, and palette follow the figures of the
// reproduced study.
package render

import (
	"errors"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
)

// Errors returned by the figure builders.
var (
	ErrNoData   = errors.New("render: nothing to draw")
	ErrMismatch = errors.New("render: dates do not match the data")
	ErrBadMode  = errors.New("render: mode index out of range")
)

// Figure colors.
var (
	seriesBlue   = color.RGBA{B: 255, A: 255}
	modeGreen    = color.RGBA{G: 128, A: 255}
	residualRed  = color.RGBA{R: 220, A: 255}
	spectrumNavy = color.RGBA{R: 10, G: 10, B: 96, A: 255}
)

// dateTicks labels a Unix-seconds axis every step days.
type dateTicks struct {
	step int
}

func (d dateTicks) Ticks(min, max float64) []plot.Tick {
	if d.step <= 0 || max < min {
		return nil
	}

	var ticks []plot.Tick

	for t := time.Unix(int64(min), 0).UTC(); float64(t.Unix()) <= max; t = t.AddDate(0, 0, d.step) {
		ticks = append(ticks, plot.Tick{
			Value: float64(t.Unix()),
			Label: t.Format("2006-01-02"),
		})
	}

	return ticks
}

func timeValue(t time.Time) float64 {
	return float64(t.Unix())
}

// newDatePlot returns a plot with a date-labeled x axis.
func newDatePlot(title, yLabel string, tickStep int) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = dateTicks{step: tickStep}

	return p
}

// seriesXY pairs dates with values for a line plot.
func seriesXY(dates []time.Time, values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i] = plotter.XY{X: timeValue(dates[i]), Y: v}
	}

	return xys
}
