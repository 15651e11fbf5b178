package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Data.Dir != "./data" || cfg.Data.Version != "20211006" {
		t.Errorf("data defaults = %q/%q, want ./data/20211006", cfg.Data.Dir, cfg.Data.Version)
	}
	if cfg.Data.Days != 525 {
		t.Errorf("data.days = %d, want 525", cfg.Data.Days)
	}
	if cfg.Data.Metric != "infections" {
		t.Errorf("data.metric = %q, want infections", cfg.Data.Metric)
	}

	if cfg.Analysis.MaxModes != 10 || cfg.Analysis.SDThreshold != 0.2 {
		t.Errorf("analysis defaults = %+v", cfg.Analysis)
	}
	if cfg.Analysis.MaxSiftIterations != 1000 || cfg.Analysis.RangeThreshold != 0.001 {
		t.Errorf("analysis defaults = %+v", cfg.Analysis)
	}
	if cfg.Analysis.SmoothingWindow != 30 {
		t.Errorf("analysis.smoothing_window = %d, want 30", cfg.Analysis.SmoothingWindow)
	}

	if cfg.Output.Dir != "./figures" || !cfg.Output.Figures {
		t.Errorf("output defaults = %+v", cfg.Output)
	}

	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	yaml := `
data:
  version: "20210901"
  days: 140
analysis:
  smoothing_window: 14
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Data.Version != "20210901" || cfg.Data.Days != 140 {
		t.Errorf("file overrides lost: %+v", cfg.Data)
	}
	if cfg.Analysis.SmoothingWindow != 14 {
		t.Errorf("analysis.smoothing_window = %d, want 14", cfg.Analysis.SmoothingWindow)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}

	// Untouched keys keep their defaults.
	if cfg.Data.Metric != "infections" || cfg.Analysis.MaxModes != 10 {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded on a missing file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("COVID19EMD_DATA_DAYS", "90")
	t.Setenv("COVID19EMD_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Data.Days != 90 {
		t.Errorf("data.days = %d, want 90 from environment", cfg.Data.Days)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level = %q, want warn from environment", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }},
		{"empty version", func(c *Config) { c.Data.Version = "" }},
		{"tiny window", func(c *Config) { c.Data.Days = 3 }},
		{"unknown metric", func(c *Config) { c.Data.Metric = "bogus" }},
		{"zero modes", func(c *Config) { c.Analysis.MaxModes = 0 }},
		{"zero threshold", func(c *Config) { c.Analysis.SDThreshold = 0 }},
		{"zero iterations", func(c *Config) { c.Analysis.MaxSiftIterations = 0 }},
		{"negative range", func(c *Config) { c.Analysis.RangeThreshold = -1 }},
		{"negative smoothing", func(c *Config) { c.Analysis.SmoothingWindow = -1 }},
		{"empty output dir", func(c *Config) { c.Output.Dir = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}

			tt.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate passed on invalid config")
			}
		})
	}
}
