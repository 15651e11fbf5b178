// Package dataset loads the Tokyo Metropolitan Government COVID-19 open-data
// snapshots and derives daily case-count series from the cumulative columns.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dongran/COVID19-EMD-Analysis/series"
)

// Errors returned by the loader.
var (
	ErrInsufficientData = errors.New("dataset: fewer records than requested window")
	ErrMalformedRecord  = errors.New("dataset: malformed record")
	ErrUnknownMetric    = errors.New("dataset: unknown metric")
)

// Snapshot file names as published by the Tokyo open-data portal.
const (
	detailsFile    = "130001_tokyo_covid19_details_testing_positive_cases.csv"
	positivityFile = "130001_tokyo_covid19_positivity_rate_in_testing.csv"
)

// Column indices in the details file.
const (
	colDate           = 3
	colCumPositives   = 4
	colCumHospital    = 5
	colCumMild        = 6
	colCumSevere      = 7
	detailsMinColumns = 8
)

// Column indices in the positivity file.
const (
	colTestPositives  = 4
	colTestCount      = 6
	testingMinColumns = 7
)

const dateLayout = "2006-01-02"

// Config selects a dataset snapshot and the trailing analysis window.
type Config struct {
	Dir     string // root data directory
	Version string // snapshot folder name, e.g. "20211006"
	Days    int    // trailing window length in days
}

// Metric names one of the daily series a snapshot provides.
type Metric int

const (
	Infections Metric = iota
	Hospitalizations
	MildCases
	SevereCases
	TestPositives
	TestCount
	PositivityRate
)

var metricNames = map[Metric]string{
	Infections:       "infections",
	Hospitalizations: "hospitalizations",
	MildCases:        "mild_cases",
	SevereCases:      "severe_cases",
	TestPositives:    "test_positives",
	TestCount:        "test_count",
	PositivityRate:   "positivity_rate",
}

// String returns the canonical name of the metric.
func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}

	return fmt.Sprintf("Metric(%d)", int(m))
}

// ParseMetric resolves a canonical metric name, as used in config files and
// CLI flags.
func ParseMetric(name string) (Metric, error) {
	for m, n := range metricNames {
		if n == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("dataset: %q: %w", name, ErrUnknownMetric)
}

// Bundle holds every daily series derived from one snapshot, all covering the
// same trailing window.
type Bundle struct {
	Version string
	Days    int

	Infections       *series.TimeSeries
	Hospitalizations *series.TimeSeries
	MildCases        *series.TimeSeries
	SevereCases      *series.TimeSeries

	// Testing series are zero-filled when the snapshot ships no
	// positivity file; TestingAvailable reports which case applies.
	TestPositives    *series.TimeSeries
	TestCount        *series.TimeSeries
	PositivityRate   *series.TimeSeries
	TestingAvailable bool
}

// Series returns the bundle series for the given metric.
func (b *Bundle) Series(m Metric) (*series.TimeSeries, error) {
	switch m {
	case Infections:
		return b.Infections, nil
	case Hospitalizations:
		return b.Hospitalizations, nil
	case MildCases:
		return b.MildCases, nil
	case SevereCases:
		return b.SevereCases, nil
	case TestPositives:
		return b.TestPositives, nil
	case TestCount:
		return b.TestCount, nil
	case PositivityRate:
		return b.PositivityRate, nil
	default:
		return nil, fmt.Errorf("dataset: metric %d: %w", int(m), ErrUnknownMetric)
	}
}

// Load reads a snapshot and derives the daily series for the configured
// trailing window. The window always ends at the snapshot's last record.
func Load(cfg Config) (*Bundle, error) {
	details, err := readRows(filepath.Join(cfg.Dir, cfg.Version, detailsFile))
	if err != nil {
		return nil, err
	}

	dates, daily, err := parseDetails(details)
	if err != nil {
		return nil, err
	}

	if cfg.Days <= 0 || cfg.Days > len(dates) {
		return nil, fmt.Errorf("dataset: %d days requested, %d available: %w",
			cfg.Days, len(dates), ErrInsufficientData)
	}

	// Trailing window: the analysis always covers the most recent days.
	dates = dates[len(dates)-cfg.Days:]
	for i := range daily {
		daily[i] = daily[i][len(daily[i])-cfg.Days:]
	}

	b := &Bundle{Version: cfg.Version, Days: cfg.Days}

	if b.Infections, err = series.New(dates, daily[0]); err != nil {
		return nil, err
	}

	if b.Hospitalizations, err = series.New(dates, daily[1]); err != nil {
		return nil, err
	}

	if b.MildCases, err = series.New(dates, daily[2]); err != nil {
		return nil, err
	}

	if b.SevereCases, err = series.New(dates, daily[3]); err != nil {
		return nil, err
	}

	if err := loadTesting(cfg, dates, b); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"version": cfg.Version,
		"days":    cfg.Days,
		"from":    b.Infections.Start().Format(dateLayout),
		"to":      b.Infections.End().Format(dateLayout),
		"testing": b.TestingAvailable,
	}).Info("loaded Tokyo COVID-19 snapshot")

	return b, nil
}

// LoadSeries loads a snapshot and returns the single requested metric.
func LoadSeries(cfg Config, m Metric) (*series.TimeSeries, error) {
	b, err := Load(cfg)
	if err != nil {
		return nil, err
	}

	return b.Series(m)
}

// readRows reads all CSV rows including the header. Field counts are
// validated per row so malformed records can be reported with context.
func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open snapshot: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", filepath.Base(path), err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset: %s has no data rows: %w",
			filepath.Base(path), ErrInsufficientData)
	}

	return rows, nil
}

// parseDetails converts the cumulative details rows into dates plus four
// daily-difference series (positives, hospitalized, mild, severe). The first
// day carries zero, matching the upstream convention that the snapshot starts
// at an unknown prior state.
func parseDetails(rows [][]string) ([]time.Time, [4][]float64, error) {
	var daily [4][]float64

	n := len(rows) - 1 // data rows
	dates := make([]time.Time, 0, n)

	for i := range daily {
		daily[i] = make([]float64, 1, n)
	}

	var prev [4]int64

	for i, row := range rows[1:] {
		line := i + 2

		if len(row) < detailsMinColumns {
			return nil, daily, fmt.Errorf("dataset: line %d: %d columns, want >= %d: %w",
				line, len(row), detailsMinColumns, ErrMalformedRecord)
		}

		d, err := time.Parse(dateLayout, strings.TrimSpace(row[colDate]))
		if err != nil {
			return nil, daily, fmt.Errorf("dataset: line %d: date %q: %w",
				line, row[colDate], ErrMalformedRecord)
		}

		if i > 0 && !d.Equal(dates[i-1].AddDate(0, 0, 1)) {
			return nil, daily, fmt.Errorf("dataset: line %d: date %s does not follow %s by one day: %w",
				line, d.Format(dateLayout), dates[i-1].Format(dateLayout), ErrMalformedRecord)
		}

		dates = append(dates, d)

		var cum [4]int64
		for j, col := range []int{colCumPositives, colCumHospital, colCumMild, colCumSevere} {
			cum[j], err = parseCount(row, col, line, d)
			if err != nil {
				return nil, daily, err
			}
		}

		if i > 0 {
			for j := range daily {
				daily[j] = append(daily[j], float64(cum[j]-prev[j]))
			}
		}

		prev = cum
	}

	return dates, daily, nil
}

// loadTesting fills the bundle's testing series from the positivity file.
// A missing file is not an error: the series are zero-filled and flagged, as
// early snapshots predate the testing publication.
func loadTesting(cfg Config, dates []time.Time, b *Bundle) error {
	path := filepath.Join(cfg.Dir, cfg.Version, positivityFile)

	rows, err := readRows(path)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrInsufficientData) {
		log.WithField("version", cfg.Version).Warn("no testing data in snapshot, using zero series")
		return fillZeroTesting(dates, b)
	}

	if err != nil {
		return err
	}

	n := len(rows) - 1
	if n < len(dates) {
		log.WithFields(log.Fields{
			"version": cfg.Version,
			"rows":    n,
			"days":    len(dates),
		}).Warn("testing data shorter than window, using zero series")

		return fillZeroTesting(dates, b)
	}

	positives := make([]float64, 0, len(dates))
	counts := make([]float64, 0, len(dates))
	rates := make([]float64, 0, len(dates))

	// Trailing window, aligned with the details series.
	for i, row := range rows[1+n-len(dates):] {
		line := 2 + n - len(dates) + i

		if len(row) < testingMinColumns {
			return fmt.Errorf("dataset: line %d: %d columns, want >= %d: %w",
				line, len(row), testingMinColumns, ErrMalformedRecord)
		}

		pos, err := parseCount(row, colTestPositives, line, dates[i])
		if err != nil {
			return err
		}

		count, err := parseCount(row, colTestCount, line, dates[i])
		if err != nil {
			return err
		}

		positives = append(positives, float64(pos))
		counts = append(counts, float64(count))

		if count == 0 {
			rates = append(rates, 0)
		} else {
			rates = append(rates, float64(pos)/float64(count))
		}
	}

	if b.TestPositives, err = series.New(dates, positives); err != nil {
		return err
	}

	if b.TestCount, err = series.New(dates, counts); err != nil {
		return err
	}

	if b.PositivityRate, err = series.New(dates, rates); err != nil {
		return err
	}

	b.TestingAvailable = true

	return nil
}

func fillZeroTesting(dates []time.Time, b *Bundle) error {
	zero := make([]float64, len(dates))

	var err error
	if b.TestPositives, err = series.New(dates, zero); err != nil {
		return err
	}

	if b.TestCount, err = series.New(dates, zero); err != nil {
		return err
	}

	if b.PositivityRate, err = series.New(dates, zero); err != nil {
		return err
	}

	b.TestingAvailable = false

	return nil
}

// parseCount parses an integer cell, reporting the record's date on failure
// so bad snapshots are easy to locate.
func parseCount(row []string, col, line int, date time.Time) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(row[col]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("dataset: line %d (%s): column %d %q: %w",
			line, date.Format(dateLayout), col, row[col], ErrMalformedRecord)
	}

	return v, nil
}
