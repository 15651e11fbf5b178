package main

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dongran/COVID19-EMD-Analysis/analysis"
	"github.com/dongran/COVID19-EMD-Analysis/internal/config"
	"github.com/dongran/COVID19-EMD-Analysis/stats/mode"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// writeSnapshot generates a synthetic snapshot with a weekly rhythm riding
// on steady growth, plus a matching positivity file.
func writeSnapshot(t *testing.T, root, version string, days int) {
	t.Helper()

	snap := filepath.Join(root, version)
	if err := os.MkdirAll(snap, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	start := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	var details strings.Builder
	details.WriteString("code,prefecture,area,date,positive_total,hospitalized,mild_moderate,severe\n")

	var positivity strings.Builder
	positivity.WriteString("code,prefecture,area,date,positive_count,moving_avg,test_count\n")

	var cum int64
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		daily := int64(100 + 40*math.Sin(2*math.Pi*float64(i)/7))
		cum += daily

		fmt.Fprintf(&details, "130001,Tokyo,,%s,%d,%d,%d,%d\n", d, cum, cum/10, cum/20, cum/100)
		fmt.Fprintf(&positivity, "130001,Tokyo,,%s,%d,,%d\n", d, daily, daily*8)
	}

	files := map[string]string{
		"130001_tokyo_covid19_details_testing_positive_cases.csv": details.String(),
		"130001_tokyo_covid19_positivity_rate_in_testing.csv":     positivity.String(),
	}

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(snap, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeSnapshot(t, root, "20211006", 80)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	cfg.Data.Dir = root
	cfg.Data.Days = 60
	cfg.Output.Dir = filepath.Join(root, "figures")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if err := run(cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, file := range []string{"infections_original.png", "infections_imfs.png"} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, file)); err != nil {
			t.Errorf("missing figure %s: %v", file, err)
		}
	}
}

func TestRunMissingSnapshot(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	cfg.Data.Dir = t.TempDir()
	cfg.Output.Figures = false

	if err := run(cfg); err == nil {
		t.Fatal("run succeeded without a snapshot")
	}
}

func TestPrintModeTable(t *testing.T) {
	res := tableResult()

	var buf bytes.Buffer
	if err := printModeTable(&buf, res); err != nil {
		t.Fatalf("printModeTable: %v", err)
	}

	out := buf.String()

	if !strings.Contains(out, "IMF 1") || !strings.Contains(out, "Residual") {
		t.Fatalf("table missing rows:\n%s", out)
	}
	if !strings.Contains(out, "7.00") {
		t.Errorf("table missing oscillatory period:\n%s", out)
	}

	// The non-oscillatory mode shows a dash, never NaN.
	if strings.Contains(out, "NaN") {
		t.Errorf("table leaks NaN:\n%s", out)
	}
}

func tableResult() *analysis.Result {
	return &analysis.Result{
		Modes: []mode.Stats{
			{
				MeanFrequency: 1.0 / 7,
				MeanPeriod:    7,
				MeanAmplitude: 12,
				Energy:        100,
				EnergyShare:   0.8,
				VarianceShare: 0.7,
				Oscillatory:   true,
			},
			{
				MeanPeriod: math.NaN(),
			},
		},
	}
}
