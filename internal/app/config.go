package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // .yaml, .yml, .hcl or a directory of .hcl files

	LogFormat string
	LogLevel  string
	// MaxLoops overrides the limit stored in the pipeline file when positive.
	MaxLoops       int
	Workers        int
	SkipValidation bool
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !oneOf(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("unknown log level '%s', expected one of %v", cfg.LogLevel, logLevels)
	}
	if !oneOf(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("unknown log format '%s', expected one of %v", cfg.LogFormat, logFormats)
	}
	if cfg.MaxLoops < 0 {
		return nil, fmt.Errorf("max loops must be positive, got %d", cfg.MaxLoops)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	return &cfg, nil
}

func oneOf(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
