// Package config provides configuration management for the scanner.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"harmonic-scanner/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Scan       ScanConfig          `mapstructure:"scan"`
	Lifecycle  LifecycleConfig     `mapstructure:"lifecycle"`
	Tolerances []ToleranceOverride `mapstructure:"tolerances"`
	Logging    LoggingConfig       `mapstructure:"logging"`
}

// ScanConfig bounds pivot detection and candidate enumeration.
type ScanConfig struct {
	// PivotWindow is the symmetric neighborhood size for extremum
	// detection. Must be positive.
	PivotWindow int `mapstructure:"pivot_window"`
	// MaxSearchWindow bounds the extremum positions spanned by one
	// candidate. Zero disables the bound.
	MaxSearchWindow int `mapstructure:"max_search_window"`
	// MaxCandidates caps the candidates observed per run. Zero disables
	// the cap.
	MaxCandidates int `mapstructure:"max_candidates"`
}

// LifecycleConfig holds the zone resolution thresholds, as fractions of
// the final leg height.
type LifecycleConfig struct {
	MinReversalExcursion float64 `mapstructure:"min_reversal_excursion"`
	InvalidationMargin   float64 `mapstructure:"invalidation_margin"`
}

// ToleranceOverride replaces one (pattern, leg) ratio band from the
// built-in definition table.
type ToleranceOverride struct {
	Pattern string  `mapstructure:"pattern"`
	Leg     string  `mapstructure:"leg"`
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/harmonic-scanner"
	}
	return filepath.Join(home, ".config", "harmonic-scanner")
}

// Load loads configuration from the specified directory, falling back to
// defaults when no scanner.toml exists. If configDir is empty, uses the
// default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("scanner")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "loading scanner.toml")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing scanner.toml")
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.pivot_window", 3)
	v.SetDefault("scan.max_search_window", 12)
	v.SetDefault("scan.max_candidates", 5000)
	v.SetDefault("lifecycle.min_reversal_excursion", 0.382)
	v.SetDefault("lifecycle.invalidation_margin", 0.236)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", filepath.Join(DefaultConfigDir(), "logs", "scanner.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)
}

func applyEnvOverrides(cfg *Config) {
	if s := os.Getenv("SCANNER_PIVOT_WINDOW"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			cfg.Scan.PivotWindow = n
		}
	}
	if s := os.Getenv("SCANNER_MAX_SEARCH_WINDOW"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			cfg.Scan.MaxSearchWindow = n
		}
	}
	if s := os.Getenv("SCANNER_LOG_LEVEL"); s != "" {
		cfg.Logging.Level = s
	}
}

// Validate rejects invalid configuration before any computation.
func (c *Config) Validate() error {
	if c.Scan.PivotWindow < 1 {
		return errors.NewConfigError("scan.pivot_window", c.Scan.PivotWindow, "must be positive")
	}
	if c.Scan.MaxSearchWindow < 0 {
		return errors.NewConfigError("scan.max_search_window", c.Scan.MaxSearchWindow, "must be non-negative")
	}
	if c.Scan.MaxSearchWindow > 0 && c.Scan.MaxSearchWindow < 3 {
		return errors.NewConfigError("scan.max_search_window", c.Scan.MaxSearchWindow, "too small to span a candidate; use 0 to disable")
	}
	if c.Scan.MaxCandidates < 0 {
		return errors.NewConfigError("scan.max_candidates", c.Scan.MaxCandidates, "must be non-negative")
	}
	if c.Lifecycle.MinReversalExcursion <= 0 {
		return errors.NewConfigError("lifecycle.min_reversal_excursion", c.Lifecycle.MinReversalExcursion, "must be positive")
	}
	if c.Lifecycle.InvalidationMargin < 0 {
		return errors.NewConfigError("lifecycle.invalidation_margin", c.Lifecycle.InvalidationMargin, "must be non-negative")
	}
	for _, o := range c.Tolerances {
		if o.Pattern == "" || o.Leg == "" {
			return errors.NewConfigError("tolerances", o, "pattern and leg are required")
		}
		if o.Min > o.Max {
			return errors.NewConfigError("tolerances", o, "min above max")
		}
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(cfg)
	return cfg
}
