// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and environment variables.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount bounds the batch pool's concurrency.
	WorkerCount int `koanf:"worker_count"`

	// ScoreSourceURL is the base URL of the external scoring service.
	ScoreSourceURL string `koanf:"score_source_url"`

	// ScoreSourceTimeoutMS bounds each scoring call.
	ScoreSourceTimeoutMS int `koanf:"score_source_timeout_ms"`

	// DriftWarningDrop and DriftCriticalDrop set the alert thresholds in
	// score points.
	DriftWarningDrop  float64 `koanf:"drift_warning_drop"`
	DriftCriticalDrop float64 `koanf:"drift_critical_drop"`

	// RateLimitFailOpen controls the admission policy when the counter
	// store is unavailable: true admits, false rejects.
	RateLimitFailOpen bool `koanf:"rate_limit_fail_open"`

	// RecalcToken guards the batch trigger endpoint. Empty disables the
	// check (development only).
	RecalcToken string `koanf:"recalc_token"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9090",
		WorkerCount:          runtime.NumCPU(),
		ScoreSourceURL:       "http://localhost:9190",
		ScoreSourceTimeoutMS: 15_000,
		DriftWarningDrop:     5,
		DriftCriticalDrop:    10,
		RateLimitFailOpen:    true,
	}
}
