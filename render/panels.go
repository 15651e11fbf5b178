package render

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/dongran/COVID19-EMD-Analysis/analysis"
)

// IMFPanels stacks one green panel per mode and a red residual panel into a
// single PNG, fastest mode on top.
func IMFPanels(res *analysis.Result, dates []time.Time, title, path string) error {
	if res == nil || len(res.Residual) == 0 {
		return ErrNoData
	}

	if len(dates) != len(res.Residual) {
		return fmt.Errorf("render: %d dates for %d samples: %w",
			len(dates), len(res.Residual), ErrMismatch)
	}

	rows := res.NumIMFs() + 1
	plots := make([][]*plot.Plot, rows)

	for i, imf := range res.IMFs {
		p, err := modePanel(dates, imf, fmt.Sprintf("IMF %d", i+1), modeGreen)
		if err != nil {
			return err
		}

		plots[i] = []*plot.Plot{p}
	}

	rp, err := modePanel(dates, res.Residual, "Residual", residualRed)
	if err != nil {
		return err
	}

	plots[rows-1] = []*plot.Plot{rp}
	plots[0][0].Title.Text = title

	img := vgimg.New(25*vg.Centimeter, vg.Length(rows)*4*vg.Centimeter)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      1,
		PadY:      2 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}

	for r, canvases := range plot.Align(plots, tiles, dc) {
		plots[r][0].Draw(canvases[0])
	}

	return writePNG(img, path)
}

// modePanel builds one line panel of the stack.
func modePanel(dates []time.Time, values []float64, yLabel string, c color.Color) (*plot.Plot, error) {
	p := newDatePlot("", yLabel, 120)

	line, err := plotter.NewLine(seriesXY(dates, values))
	if err != nil {
		return nil, fmt.Errorf("render: %s line: %w", yLabel, err)
	}

	line.Color = c
	p.Add(line)

	return p, nil
}

// writePNG encodes a finished canvas to path.
func writePNG(img *vgimg.Canvas, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("render: write %s: %w", path, err)
	}

	return f.Close()
}
