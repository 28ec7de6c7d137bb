package scoresource

import "errors"

// Sentinel kinds for score source errors.
var (
	ErrStatus = errors.New("score source returned non-success status")
	ErrDecode = errors.New("score source response malformed")
)
