package config

import (
	"errors"
	"strings"
)

// Config is the top-level configuration struct for gitkarma.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Karma      map[string]int `mapstructure:"karma"`
	URL        URLConfig      `mapstructure:"url"`
	File       FileConfig     `mapstructure:"file"`
	Thresholds []int          `mapstructure:"thresholds"`
	Workers    int            `mapstructure:"workers"`
	Skip       SkipConfig     `mapstructure:"skip"`
	Log        LogConfig      `mapstructure:"log"`
	Report     ReportConfig   `mapstructure:"report"`
}

// URLConfig holds link templates for the HTML report. The placeholders
// {commit} and {author} are substituted per block.
type URLConfig struct {
	Commit string `mapstructure:"commit"`
	Author string `mapstructure:"author"`
}

// FileConfig holds per-file report page settings.
type FileConfig struct {
	Extension string `mapstructure:"extension"`
}

// SkipConfig controls which files the audit ignores.
type SkipConfig struct {
	Patterns []string `mapstructure:"patterns"`
	Vendored bool     `mapstructure:"vendored"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Default configuration values.
const (
	// DefaultWorkers of 0 means one worker per CPU.
	DefaultWorkers = 0
	// DefaultFileExtension is the suffix of per-file report pages.
	DefaultFileExtension = ".html"
	// DefaultSkipVendored excludes vendored trees from the audit.
	DefaultSkipVendored = true
	// DefaultLogLevel is the slog level used when none is configured.
	DefaultLogLevel = "info"
	// DefaultReportDir is where the HTML report is written.
	DefaultReportDir = "karma-report"
)

// DefaultThresholds mirrors the threshold ladder of the distribution report.
var DefaultThresholds = []int{140, 70, 50, 30, 15, 7, 3}

// Sentinel errors for configuration validation.
var (
	// ErrNegativeKarma indicates a karma map value below zero.
	ErrNegativeKarma = errors.New("karma values must be non-negative")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("workers must be non-negative")
	// ErrInvalidThreshold indicates a non-positive distribution threshold.
	ErrInvalidThreshold = errors.New("thresholds must be positive")
	// ErrInvalidExtension indicates the file extension does not start with a dot.
	ErrInvalidExtension = errors.New("file.extension must start with '.'")
	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	for _, value := range c.Karma {
		if value < 0 {
			return ErrNegativeKarma
		}
	}

	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	for _, threshold := range c.Thresholds {
		if threshold <= 0 {
			return ErrInvalidThreshold
		}
	}

	if c.File.Extension != "" && !strings.HasPrefix(c.File.Extension, ".") {
		return ErrInvalidExtension
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}
