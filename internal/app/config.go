package app

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/monogrid/internal/cache"
)

// Environment variables read for configuration defaults.
const (
	EnvLogLevel  = "MONOGRID_LOG"
	EnvLogFormat = "MONOGRID_LOG_FORMAT"
	EnvCache     = "MONOGRID_CACHE"
	EnvCI        = "CI"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// WorkspaceRoot is searched upward from the working directory when empty.
	WorkspaceRoot string

	LogFormat       string
	LogLevel        string
	CacheMode       string
	HealthcheckPort int
	// Concurrency overrides the workspace runner concurrency when positive.
	Concurrency int
	// CI marks a continuous integration run.
	CI bool
}

// DefaultConfig returns the defaults, taking overrides from the environment.
func DefaultConfig(getenv func(string) string) Config {
	cfg := Config{
		LogFormat: "text",
		LogLevel:  "warn",
		CacheMode: string(cache.ModeReadWrite),
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := getenv(EnvCache); v != "" {
		cfg.CacheMode = v
	}
	cfg.CI = isTruthy(getenv(EnvCI))
	return cfg
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if _, err := cache.ParseMode(cfg.CacheMode); err != nil {
		return nil, err
	}
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	return &cfg, nil
}
