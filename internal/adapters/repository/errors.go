package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrTenantKnown = errors.New("tenant already exists")
	ErrBaselineSet = errors.New("baseline already set")
)
