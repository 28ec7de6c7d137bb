package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrScoreSourceRequired = errors.New("score source is required")
)
