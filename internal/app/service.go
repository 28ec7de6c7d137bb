// Package service provides the core business service that implements the
// dependencies required by the HTTP API: the recalculation orchestrator and
// read access to history and alerts.
package service

import (
	"context"
	"sync"

	"github.com/driftwatch/driftwatch/internal/adapters/pool"
	"github.com/driftwatch/driftwatch/internal/adapters/repository"
	"github.com/driftwatch/driftwatch/internal/adapters/scoresource"
	"github.com/driftwatch/driftwatch/internal/domain/drift"
	"github.com/driftwatch/driftwatch/internal/domain/model"
	"github.com/driftwatch/driftwatch/pkg/logger"
)

// defaultWorkerCount bounds the batch pool when not configured.
const defaultWorkerCount = 4

// Service wires the recalculation pipeline together.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	source scoresource.Source
	engine *drift.Engine
	batch  *pool.Pool

	// Configuration
	workerCount int

	// State
	started bool

	// Logging
	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the history repository and alert sink.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScoreSource sets the external score source.
func WithScoreSource(source scoresource.Source) Option {
	return func(s *Service) {
		if source != nil {
			s.source = source
		}
	}
}

// WithDriftEngine sets the drift engine.
func WithDriftEngine(engine *drift.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithWorkerCount sets the number of concurrent batch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes any components not injected through options.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.source == nil {
		return ErrScoreSourceRequired
	}
	if s.log == nil {
		s.log = logger.Get().Named("pipeline")
	}
	if s.store == nil {
		s.store = repository.NewInMemoryStore()
	}
	if s.engine == nil {
		s.engine = drift.New()
	}
	s.batch = pool.New(pool.WithSize(s.workerCount))

	s.started = true
	s.log.Info(ctx, "recalculation pipeline started",
		logger.Int("workers", s.workerCount),
	)
	return nil
}

// Stop shuts the service down. The batch runs to completion on its own, so
// there is nothing to drain.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.log.Info(context.Background(), "recalculation pipeline stopped")
}

// History returns a tenant's score runs in chronological order.
func (s *Service) History(ctx context.Context, tenantID string) ([]model.ScoreRun, error) {
	return s.store.History(ctx, tenantID)
}

// Alerts returns all alert records, newest first.
func (s *Service) Alerts(ctx context.Context) ([]model.Alert, error) {
	return s.store.Alerts(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
	}
	if s.started {
		if tenants, err := s.store.ListActiveTenants(context.Background()); err == nil {
			stats["activeTenants"] = len(tenants)
		}
	}
	return stats
}
