// Package counter defines the TTL counter primitive the admission layer
// counts against.
//
// The contract is deliberately tiny: an atomic increment-with-expiry and a
// non-mutating read. Implementations must make Incr a single atomic step so
// that two concurrent callers can never observe the same count. A hosted
// key-value store with native expiry satisfies the same interface; the
// in-memory implementation below is the default backend.
package counter

import (
	"context"
	"sync"
	"time"
)

// Store supplies atomic counters with per-key expiry.
type Store interface {
	// Incr atomically increments key and returns the new count. The first
	// increment of a key arms its expiry; subsequent increments within the
	// key's lifetime do not extend it.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Peek returns the current count for key without mutating it.
	// Expired or unknown keys read as zero.
	Peek(ctx context.Context, key string) (int64, error)

	// Close releases background resources.
	Close() error
}

// Default in-memory store configuration constants.
const (
	defaultSweepInterval = 30 * time.Second
)

// entry is one live counter.
type entry struct {
	count     int64
	expiresAt time.Time
}

// InMemoryStore implements Store with a mutex-guarded map, lazy expiry on
// access, and a periodic janitor sweep for abandoned keys.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry

	now           func() time.Time
	sweepInterval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithSweepInterval sets how often the janitor removes expired counters.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *InMemoryStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithClock overrides the time source. Used by tests to advance windows
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemoryStore creates a counter store and starts its janitor.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		entries:       make(map[string]*entry),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
		stopCh:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.janitor()
	return s
}

// Incr atomically increments key, creating it with the given ttl when absent
// or expired.
func (s *InMemoryStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = &entry{expiresAt: now.Add(ttl)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// Peek returns the live count for key, or zero when absent or expired.
func (s *InMemoryStore) Peek(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		return 0, nil
	}
	return e.count, nil
}

// Close stops the janitor. Counters already stored remain readable until they
// expire.
func (s *InMemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	return nil
}

// janitor periodically removes expired counters so abandoned identifiers do
// not accumulate.
func (s *InMemoryStore) janitor() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			now := s.now()
			s.mu.Lock()
			for key, e := range s.entries {
				if !now.Before(e.expiresAt) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
