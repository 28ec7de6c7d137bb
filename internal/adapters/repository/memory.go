package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/driftwatch/driftwatch/internal/domain/model"
)

// InMemoryStore implements Store with mutex-guarded maps keyed by tenant.
// Writes never cross tenant boundaries, so per-tenant state cannot be
// corrupted by concurrent writes for other tenants.
type InMemoryStore struct {
	mu          sync.RWMutex
	tenants     map[string]model.Tenant
	runs        map[string][]model.ScoreRun
	discoveries map[string][]model.Discovery
	alerts      []model.Alert

	now func() time.Time
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		tenants:     make(map[string]model.Tenant),
		runs:        make(map[string][]model.ScoreRun),
		discoveries: make(map[string][]model.Discovery),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTenant registers a tenant, stamping CreatedAt when unset.
func (s *InMemoryStore) CreateTenant(_ context.Context, t model.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrTenantKnown, t.ID)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	s.tenants[t.ID] = t
	return nil
}

// GetTenant returns a tenant by id.
func (s *InMemoryStore) GetTenant(_ context.Context, id string) (model.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return model.Tenant{}, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	return t, nil
}

// ListActiveTenants returns active tenants ordered by creation time, then id.
func (s *InMemoryStore) ListActiveTenants(_ context.Context) ([]model.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		if t.Active {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SetBaseline writes the tenant's baseline score once, ever.
func (s *InMemoryStore) SetBaseline(_ context.Context, tenantID string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[tenantID]
	if !ok {
		return fmt.Errorf("tenant %s: %w", tenantID, ErrNotFound)
	}
	if t.BaselineScore != nil {
		return fmt.Errorf("tenant %s: %w", tenantID, ErrBaselineSet)
	}
	t.BaselineScore = &score
	s.tenants[tenantID] = t
	return nil
}

// RecordDiscovery stores a discovery artifact for a tenant.
func (s *InMemoryStore) RecordDiscovery(_ context.Context, d model.Discovery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = model.NewID()
	}
	s.discoveries[d.TenantID] = append(s.discoveries[d.TenantID], d)
	return nil
}

// LatestCompletedDiscovery returns the most recently completed discovery.
func (s *InMemoryStore) LatestCompletedDiscovery(_ context.Context, tenantID string) (model.Discovery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest model.Discovery
	found := false
	for _, d := range s.discoveries[tenantID] {
		if d.Status != model.DiscoveryStatusCompleted {
			continue
		}
		if !found || d.CompletedAt.After(latest.CompletedAt) {
			latest = d
			found = true
		}
	}
	if !found {
		return model.Discovery{}, fmt.Errorf("completed discovery for tenant %s: %w", tenantID, ErrNotFound)
	}
	return latest, nil
}

// AppendScoreRun appends one immutable run to the tenant's history.
func (s *InMemoryStore) AppendScoreRun(_ context.Context, run model.ScoreRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[run.TenantID]; !ok {
		return fmt.Errorf("tenant %s: %w", run.TenantID, ErrNotFound)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	s.runs[run.TenantID] = append(s.runs[run.TenantID], run)
	return nil
}

// History returns a copy of the tenant's runs in chronological order.
func (s *InMemoryStore) History(_ context.Context, tenantID string) ([]model.ScoreRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.runs[tenantID]
	out := make([]model.ScoreRun, len(runs))
	copy(out, runs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// AppendAlert appends an alert record to the sink.
func (s *InMemoryStore) AppendAlert(_ context.Context, a model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = model.NewID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	s.alerts = append(s.alerts, a)
	return nil
}

// Alerts returns all alerts, newest first.
func (s *InMemoryStore) Alerts(_ context.Context) ([]model.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
