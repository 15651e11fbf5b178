// Command covid19emd reproduces the mode analysis of Tokyo's daily COVID-19
// series: it loads one open-data snapshot, decomposes the selected metric
// into intrinsic mode functions, prints the per-mode statistics, and renders
// the study's figures.
//
// Usage:
//
//	covid19emd [flags]
//
// Examples:
//
//	covid19emd -config config.yaml
//	covid19emd -data-dir ./data -version 20211006 -metric infections
//	covid19emd -days 140 -no-figures
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/dongran/COVID19-EMD-Analysis/analysis"
	"github.com/dongran/COVID19-EMD-Analysis/dataset"
	"github.com/dongran/COVID19-EMD-Analysis/emd"
	"github.com/dongran/COVID19-EMD-Analysis/internal/config"
	"github.com/dongran/COVID19-EMD-Analysis/render"
	"github.com/dongran/COVID19-EMD-Analysis/series"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	dataDir := flag.String("data-dir", "", "root directory of the data snapshots")
	version := flag.String("version", "", "snapshot folder name, e.g. 20211006")
	days := flag.Int("days", 0, "trailing window length in days")
	metric := flag.String("metric", "", "series to analyze (see dataset metrics, e.g. infections)")
	outputDir := flag.String("output", "", "directory for rendered figures")
	noFigures := flag.Bool("no-figures", false, "skip figure rendering")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Flags the user actually set override the file and the environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.Data.Dir = *dataDir
		case "version":
			cfg.Data.Version = *version
		case "days":
			cfg.Data.Days = *days
		case "metric":
			cfg.Data.Metric = *metric
		case "output":
			cfg.Output.Dir = *outputDir
		case "no-figures":
			cfg.Output.Figures = !*noFigures
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	initLog(cfg.Logging)

	if err := run(cfg); err != nil {
		log.WithError(err).Error("analysis failed")
		os.Exit(1)
	}
}

func initLog(lc config.LoggingConfig) {
	logLevel, err := log.ParseLevel(lc.Level)
	if err != nil {
		logLevel = log.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetOutput(os.Stdout)

	if lc.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func run(cfg *config.Config) error {
	m, err := dataset.ParseMetric(cfg.Data.Metric)
	if err != nil {
		return err
	}

	bundle, err := dataset.Load(dataset.Config{
		Dir:     cfg.Data.Dir,
		Version: cfg.Data.Version,
		Days:    cfg.Data.Days,
	})
	if err != nil {
		return err
	}

	ts, err := bundle.Series(m)
	if err != nil {
		return err
	}

	sum := ts.Summary()
	log.WithFields(log.Fields{
		"metric": m.String(),
		"from":   sum.Start.Format("2006-01-02"),
		"to":     sum.End.Format("2006-01-02"),
		"total":  sum.Total,
		"peak":   sum.Max,
		"mean":   sum.Mean,
	}).Info("analyzing series")

	sifter := emd.NewSifter(
		emd.WithMaxModes(cfg.Analysis.MaxModes),
		emd.WithSDThreshold(cfg.Analysis.SDThreshold),
		emd.WithMaxSiftIterations(cfg.Analysis.MaxSiftIterations),
		emd.WithRangeThreshold(cfg.Analysis.RangeThreshold),
	)

	res, err := analysis.New(
		analysis.WithDecomposer(sifter),
		analysis.WithSmoothingWindow(cfg.Analysis.SmoothingWindow),
	).AnalyzeSeries(ts, m.String())
	if err != nil {
		return err
	}

	if err := printModeTable(os.Stdout, res); err != nil {
		return err
	}

	if cfg.Output.Figures {
		return renderFigures(cfg.Output.Dir, m, ts, res)
	}

	return nil
}

// printModeTable writes the per-mode statistics. Non-oscillatory modes show
// a dash instead of a period.
func printModeTable(w io.Writer, res *analysis.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Mode\tMean Freq [1/day]\tMean Period [day]\tMean Amp\tEnergy Share\tVariance Share\n")
	fmt.Fprintf(tw, "----\t-----------------\t-----------------\t--------\t------------\t--------------\n")

	for i, m := range res.Modes {
		period := "-"
		if m.Oscillatory {
			period = fmt.Sprintf("%.2f", m.MeanPeriod)
		}

		fmt.Fprintf(tw, "IMF %d\t%.6f\t%s\t%.3f\t%.4f\t%.4f\n",
			i+1, m.MeanFrequency, period, m.MeanAmplitude, m.EnergyShare, m.VarianceShare)
	}

	fmt.Fprintf(tw, "Residual\t-\t-\t-\t-\t-\n")

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write mode table: %w", err)
	}

	return nil
}

// renderFigures writes every figure for the analyzed metric into dir.
func renderFigures(dir string, m dataset.Metric, ts *series.TimeSeries, res *analysis.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	name := m.String()
	dates := ts.Dates()
	events := dataset.EventsBetween(ts.Start(), ts.End())

	yLabel := "Cases"
	if m == dataset.PositivityRate {
		yLabel = "Rate"
	}

	type figure struct {
		file string
		draw func(path string) error
	}

	figures := []figure{
		{name + "_original.png", func(path string) error {
			return render.Original(ts, events, "Daily "+name+" (Tokyo)", yLabel, path)
		}},
		{name + "_imfs.png", func(path string) error {
			return render.IMFPanels(res, dates, "Intrinsic mode functions", path)
		}},
	}

	if res.NumIMFs() > 0 {
		figures = append(figures,
			figure{name + "_hilbert_spectrum.png", func(path string) error {
				return render.HilbertSpectrum(res, dates, "Hilbert spectrum", path)
			}},
			figure{name + "_period_spectrum.png", func(path string) error {
				return render.PeriodSpectrum(res, dates, "Period spectrum", path)
			}},
		)
	} else {
		log.Warn("no oscillatory modes extracted, spectra skipped")
	}

	for _, f := range figures {
		path := filepath.Join(dir, f.file)
		if err := f.draw(path); err != nil {
			return err
		}

		log.WithField("path", path).Info("figure written")
	}

	for i := 0; i < res.NumIMFs(); i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s_imf%d_spectrum.png", name, i+1))

		if err := render.ModeSpectrum(res, i, dates, fmt.Sprintf("IMF %d spectrum", i+1), path); err != nil {
			return err
		}

		log.WithField("path", path).Info("figure written")
	}

	return nil
}
