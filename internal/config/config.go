// Package config loads the CLI configuration from defaults, an optional
// YAML file, and COVID19EMD_* environment variables, in rising precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dongran/COVID19-EMD-Analysis/dataset"
)

// Config represents the complete application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig selects the snapshot and series to analyze.
type DataConfig struct {
	Dir     string `mapstructure:"dir"`     // root of the downloaded snapshots
	Version string `mapstructure:"version"` // snapshot folder name, e.g. "20211006"
	Days    int    `mapstructure:"days"`    // trailing window length
	Metric  string `mapstructure:"metric"`  // series name, see dataset.ParseMetric
}

// AnalysisConfig tunes the decomposition and the frequency smoothing.
type AnalysisConfig struct {
	MaxModes          int     `mapstructure:"max_modes"`
	SDThreshold       float64 `mapstructure:"sd_threshold"`
	MaxSiftIterations int     `mapstructure:"max_sift_iterations"`
	RangeThreshold    float64 `mapstructure:"range_threshold"`
	SmoothingWindow   int     `mapstructure:"smoothing_window"`
}

// OutputConfig controls report and figure output.
type OutputConfig struct {
	Dir     string `mapstructure:"dir"`
	Figures bool   `mapstructure:"figures"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file and from the environment.
// An empty path skips the file and uses defaults plus environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("COVID19EMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Data defaults: the study's 525-day Tokyo window.
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.version", "20211006")
	v.SetDefault("data.days", 525)
	v.SetDefault("data.metric", "infections")

	// Analysis defaults match the decomposition defaults.
	v.SetDefault("analysis.max_modes", 10)
	v.SetDefault("analysis.sd_threshold", 0.2)
	v.SetDefault("analysis.max_sift_iterations", 1000)
	v.SetDefault("analysis.range_threshold", 0.001)
	v.SetDefault("analysis.smoothing_window", 30)

	// Output defaults
	v.SetDefault("output.dir", "./figures")
	v.SetDefault("output.figures", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Data.Version == "" {
		return fmt.Errorf("data.version is required")
	}
	if c.Data.Days < 8 {
		return fmt.Errorf("data.days must be at least 8")
	}
	if _, err := dataset.ParseMetric(c.Data.Metric); err != nil {
		return fmt.Errorf("data.metric: %w", err)
	}

	if c.Analysis.MaxModes < 1 {
		return fmt.Errorf("analysis.max_modes must be at least 1")
	}
	if c.Analysis.SDThreshold <= 0 {
		return fmt.Errorf("analysis.sd_threshold must be positive")
	}
	if c.Analysis.MaxSiftIterations < 1 {
		return fmt.Errorf("analysis.max_sift_iterations must be at least 1")
	}
	if c.Analysis.RangeThreshold < 0 {
		return fmt.Errorf("analysis.range_threshold must not be negative")
	}
	if c.Analysis.SmoothingWindow < 0 {
		return fmt.Errorf("analysis.smoothing_window must not be negative")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
