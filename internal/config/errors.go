package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrEmptyAddr           = errors.New("addr must not be empty")
	ErrEmptyScoreSourceURL = errors.New("score_source_url must not be empty")
	ErrThresholdOrder      = errors.New("drift_critical_drop must exceed drift_warning_drop")
)
