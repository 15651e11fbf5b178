package render

import (
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/dongran/COVID19-EMD-Analysis/analysis"
	"github.com/dongran/COVID19-EMD-Analysis/internal/num"
)

// jetColors sweeps blue through green to red, matching the rainbow palette
// of the original spectra.
var jetColors = palette.Rainbow(256, palette.Blue, palette.Red, 1, 1, 1).Colors()

// HilbertSpectrum scatters the smoothed instantaneous frequency of every
// mode over time, shaded by instantaneous amplitude on a dark backdrop. The
// frequency axis is clipped to 0..0.4 cycles per day.
func HilbertSpectrum(res *analysis.Result, dates []time.Time, title, path string) error {
	if err := checkSpectrumInput(res, dates); err != nil {
		return err
	}

	p, err := spectrumPlot(title, "Frequency (1/day)", 0.4, dates)
	if err != nil {
		return err
	}

	var points int

	for i := range res.IMFs {
		n, err := addModeScatter(p, dates, res.Frequencies[i], res.Amplitudes[i],
			func(f float64) float64 { return f }, jetShade)
		if err != nil {
			return err
		}

		points += n
	}

	if points == 0 {
		return ErrNoData
	}

	clipAxes(p, dates, 0.4)

	return saveSpectrum(p, path)
}

// PeriodSpectrum is the Hilbert spectrum with the frequency axis inverted to
// periods in days, clipped to 0..500. Non-oscillating samples chart at
// period zero.
func PeriodSpectrum(res *analysis.Result, dates []time.Time, title, path string) error {
	if err := checkSpectrumInput(res, dates); err != nil {
		return err
	}

	p, err := spectrumPlot(title, "Period (day)", 500, dates)
	if err != nil {
		return err
	}

	var points int

	for i := range res.IMFs {
		n, err := addModeScatter(p, dates, res.Frequencies[i], res.Amplitudes[i],
			periodValue, jetShade)
		if err != nil {
			return err
		}

		points += n
	}

	if points == 0 {
		return ErrNoData
	}

	clipAxes(p, dates, 500)

	return saveSpectrum(p, path)
}

// ModeSpectrum scatters a single mode's smoothed frequency in grayscale,
// darker where the amplitude is higher, with the axis clipped to 0..0.1
// cycles per day.
func ModeSpectrum(res *analysis.Result, modeIndex int, dates []time.Time, title, path string) error {
	if err := checkSpectrumInput(res, dates); err != nil {
		return err
	}

	if modeIndex < 0 || modeIndex >= res.NumIMFs() {
		return fmt.Errorf("render: mode %d of %d: %w", modeIndex, res.NumIMFs(), ErrBadMode)
	}

	p := newDatePlot(title, "Frequency (1/day)", 60)

	n, err := addModeScatter(p, dates, res.Frequencies[modeIndex], res.Amplitudes[modeIndex],
		func(f float64) float64 { return f }, grayShade)
	if err != nil {
		return err
	}

	if n == 0 {
		return ErrNoData
	}

	clipAxes(p, dates, 0.1)

	return saveSpectrum(p, path)
}

func checkSpectrumInput(res *analysis.Result, dates []time.Time) error {
	if res == nil || res.NumIMFs() == 0 {
		return ErrNoData
	}

	if len(dates) != len(res.Signal) {
		return fmt.Errorf("render: %d dates for %d samples: %w",
			len(dates), len(res.Signal), ErrMismatch)
	}

	return nil
}

// spectrumPlot prepares a plot with the navy backdrop of the original
// figures spanning the date range up to yMax.
func spectrumPlot(title, yLabel string, yMax float64, dates []time.Time) (*plot.Plot, error) {
	p := newDatePlot(title, yLabel, 60)

	x0 := timeValue(dates[0])
	x1 := timeValue(dates[len(dates)-1])

	poly, err := plotter.NewPolygon(plotter.XYs{
		{X: x0, Y: 0},
		{X: x1, Y: 0},
		{X: x1, Y: yMax},
		{X: x0, Y: yMax},
	})
	if err != nil {
		return nil, fmt.Errorf("render: backdrop: %w", err)
	}

	poly.Color = spectrumNavy
	poly.LineStyle.Width = 0
	p.Add(poly)

	return p, nil
}

// clipAxes pins the axis ranges after the plotters have widened them, so
// samples outside the figure's window fall off the chart instead of
// stretching it.
func clipAxes(p *plot.Plot, dates []time.Time, yMax float64) {
	p.X.Min = timeValue(dates[0])
	p.X.Max = timeValue(dates[len(dates)-1])
	p.Y.Min = 0
	p.Y.Max = yMax
}

func periodValue(f float64) float64 {
	if f > 0 {
		return 1 / f
	}

	return 0
}

func jetShade(t float64) color.Color {
	i := int(t * float64(len(jetColors)-1))
	if i < 0 {
		i = 0
	}
	if i >= len(jetColors) {
		i = len(jetColors) - 1
	}

	return jetColors[i]
}

func grayShade(t float64) color.Color {
	return color.Gray{Y: uint8(255 * (1 - t))}
}

// addModeScatter plots one mode's points, shading each by its amplitude
// normalized over the mode, and reports how many points were drawn.
// Non-finite samples are skipped.
func addModeScatter(p *plot.Plot, dates []time.Time, freq, amp []float64,
	yValue func(float64) float64, shade func(float64) color.Color) (int, error) {

	lo, hi := 0.0, 0.0
	first := true

	for i, a := range amp {
		if !num.IsFinite(a) || !num.IsFinite(freq[i]) {
			continue
		}

		if first {
			lo, hi = a, a
			first = false
			continue
		}

		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}

	xys := make(plotter.XYs, 0, len(freq))
	shades := make([]color.Color, 0, len(freq))

	for i, f := range freq {
		if !num.IsFinite(f) || !num.IsFinite(amp[i]) {
			continue
		}

		t := 0.5
		if hi > lo {
			t = (amp[i] - lo) / (hi - lo)
		}

		xys = append(xys, plotter.XY{X: timeValue(dates[i]), Y: yValue(f)})
		shades = append(shades, shade(t))
	}

	if len(xys) == 0 {
		return 0, nil
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return 0, fmt.Errorf("render: spectrum scatter: %w", err)
	}

	sc.GlyphStyle.Radius = vg.Points(5)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  shades[i],
			Radius: vg.Points(5),
			Shape:  draw.CircleGlyph{},
		}
	}

	p.Add(sc)

	return len(xys), nil
}

func saveSpectrum(p *plot.Plot, path string) error {
	if err := p.Save(25*vg.Centimeter, 12*vg.Centimeter, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}

	return nil
}
