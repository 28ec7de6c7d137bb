package admission

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/driftwatch/driftwatch/internal/adapters/counter"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/metrics"
)

// Decision is the transient result of one admission check. It is never
// persisted.
type Decision struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetAt   int64 `json:"reset_at"` // epoch seconds
}

// Limiter decides whether an operation identified by (profile, identifier)
// may proceed, using a sliding-window count over the counter store.
//
// The window estimate is the standard two-bucket approximation: the current
// fixed window's count plus the previous window's count weighted by how much
// of it still overlaps the trailing interval. The only synchronization point
// is the store's atomic increment, so two concurrent checks can never both
// admit past capacity.
//
// Fail policy: fail-open by default. A counter-store failure admits the
// request with a degraded decision, logs, and increments a metric. The
// limiter guards product features against abuse; it is not a security
// boundary, and a store outage must not become a product outage. Deployments
// that prefer to reject on store failure can flip the policy with
// WithFailOpen(false).
type Limiter struct {
	counters counter.Store
	profiles Registry
	now      func() time.Time
	log      logger.Logger
	failOpen bool
}

// Option applies a configuration option to the Limiter.
type Option func(*Limiter)

// WithClock overrides the time source for deterministic window tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithFailOpen sets the policy applied when the counter store fails:
// true admits the request, false rejects it.
func WithFailOpen(open bool) Option {
	return func(l *Limiter) {
		l.failOpen = open
	}
}

// WithLogger sets a custom logger for the limiter.
func WithLogger(log logger.Logger) Option {
	return func(l *Limiter) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a Limiter over the given counter store and profile registry.
func New(counters counter.Store, profiles Registry, opts ...Option) *Limiter {
	l := &Limiter{
		counters: counters,
		profiles: profiles,
		now:      time.Now,
		failOpen: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records one admission attempt for (profile, identifier) and decides
// whether it may proceed. An unknown profile is a caller error; a counter
// store failure is resolved by the fail-open policy and never propagated.
func (l *Limiter) Check(ctx context.Context, profile, identifier string) (Decision, error) {
	p, ok := l.profiles[profile]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}

	now := l.now()
	windowStart := now.Truncate(p.Window)
	resetAt := windowStart.Add(p.Window).Unix()

	curKey := windowKey(p.Name, identifier, windowStart)
	prevKey := windowKey(p.Name, identifier, windowStart.Add(-p.Window))

	// Keys live for two windows so the previous bucket stays readable
	// throughout the current one.
	cur, err := l.counters.Incr(ctx, curKey, 2*p.Window)
	if err != nil {
		metrics.RecordAdmissionStoreError()
		if !l.failOpen {
			l.logf(ctx, "counter store unavailable; rejecting (fail-closed)", profile, identifier, err)
			metrics.RecordAdmissionDecision(p.Name, "failclosed")
			return Decision{Allowed: false, Limit: p.Capacity, Remaining: 0, ResetAt: resetAt}, nil
		}
		l.logf(ctx, "counter store unavailable; admitting (fail-open)", profile, identifier, err)
		metrics.RecordAdmissionDecision(p.Name, "failopen")
		return Decision{Allowed: true, Limit: p.Capacity, Remaining: 0, ResetAt: resetAt}, nil
	}

	prev, err := l.counters.Peek(ctx, prevKey)
	if err != nil {
		// The increment already landed; degrade to the current bucket only.
		l.logf(ctx, "counter store read failed; ignoring previous window", profile, identifier, err)
		metrics.RecordAdmissionStoreError()
		prev = 0
	}

	overlap := 1 - float64(now.Sub(windowStart))/float64(p.Window)
	estimate := float64(cur) + float64(prev)*overlap

	d := Decision{
		Limit:   p.Capacity,
		ResetAt: resetAt,
	}
	d.Allowed = estimate <= float64(p.Capacity)
	if remaining := p.Capacity - int(math.Ceil(estimate)); d.Allowed && remaining > 0 {
		d.Remaining = remaining
	}

	if d.Allowed {
		metrics.RecordAdmissionDecision(p.Name, "allowed")
	} else {
		metrics.RecordAdmissionDecision(p.Name, "rejected")
	}
	return d, nil
}

func (l *Limiter) logf(ctx context.Context, msg, profile, identifier string, err error) {
	log := l.log
	if log == nil {
		log = logger.Get().Named("admission")
		l.log = log
	}
	log.Warn(ctx, msg,
		logger.String("profile", profile),
		logger.String("identifier", identifier),
		logger.Error(err),
	)
}

// windowKey builds the counter key for one fixed window bucket.
func windowKey(profile, identifier string, start time.Time) string {
	return fmt.Sprintf("rl:%s:%s:%d", profile, identifier, start.Unix())
}
