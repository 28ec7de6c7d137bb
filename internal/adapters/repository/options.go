package repository

import "time"

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithClock overrides the time source used to stamp records whose timestamps
// the caller left zero.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
