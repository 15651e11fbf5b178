package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/dongran/COVID19-EMD-Analysis/dataset"
	"github.com/dongran/COVID19-EMD-Analysis/series"
)

// eventColors styles the vertical markers by event kind.
var eventColors = map[dataset.EventKind]color.RGBA{
	dataset.StateOfEmergency: {R: 200, A: 255},
	dataset.Olympics:         {R: 128, B: 128, A: 255},
	dataset.VaccinationStart: {G: 140, A: 255},
	dataset.NewVariant:       {R: 230, G: 140, A: 255},
}

// Original draws the raw series as a blue line with dashed vertical markers
// for every event inside the plotted date range and writes the figure to
// path. Each marker appears in the legend under its label.
func Original(ts *series.TimeSeries, events []dataset.Event, title, yLabel, path string) error {
	if ts == nil || ts.Len() == 0 {
		return ErrNoData
	}

	p := newDatePlot(title, yLabel, 60)

	line, err := plotter.NewLine(seriesXY(ts.Dates(), ts.Values()))
	if err != nil {
		return fmt.Errorf("render: series line: %w", err)
	}

	line.Color = seriesBlue
	line.Width = vg.Points(1.5)
	p.Add(line)

	sum := ts.Summary()

	for _, e := range events {
		if e.Date.Before(ts.Start()) || e.Date.After(ts.End()) {
			continue
		}

		x := timeValue(e.Date)

		marker, err := plotter.NewLine(plotter.XYs{
			{X: x, Y: sum.Min},
			{X: x, Y: sum.Max},
		})
		if err != nil {
			return fmt.Errorf("render: event marker %q: %w", e.Label, err)
		}

		marker.Color = eventColors[e.Kind]
		marker.Width = vg.Points(1)
		marker.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

		p.Add(marker)
		p.Legend.Add(e.Label, marker)
	}

	p.Legend.Top = true

	if err := p.Save(25*vg.Centimeter, 10*vg.Centimeter, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}

	return nil
}
