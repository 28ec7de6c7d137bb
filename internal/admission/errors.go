package admission

import "errors"

// Sentinel kinds for admission errors.
var (
	ErrUnknownProfile = errors.New("unknown limiter profile")
)
