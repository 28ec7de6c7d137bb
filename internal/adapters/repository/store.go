// Package repository defines durable access to tenants, score-run history,
// discoveries, and the alert sink.
package repository

import (
	"context"

	"github.com/driftwatch/driftwatch/internal/domain/model"
)

// Store provides read/append access to per-tenant pipeline state. ScoreRuns
// and Alerts are append-only: nothing in this interface mutates a run or an
// alert after creation.
type Store interface {
	// CreateTenant registers a tenant. Onboarding owns tenant creation;
	// the pipeline only reads tenants and sets their baseline.
	CreateTenant(ctx context.Context, t model.Tenant) error

	// GetTenant returns a tenant by id. Returns ErrNotFound when unknown.
	GetTenant(ctx context.Context, id string) (model.Tenant, error)

	// ListActiveTenants returns all active tenants in a stable order.
	ListActiveTenants(ctx context.Context) ([]model.Tenant, error)

	// SetBaseline sets the tenant's baseline score. The baseline is written
	// exactly once; a second call returns ErrBaselineSet.
	SetBaseline(ctx context.Context, tenantID string, score float64) error

	// RecordDiscovery stores an upstream data-collection artifact.
	RecordDiscovery(ctx context.Context, d model.Discovery) error

	// LatestCompletedDiscovery returns the tenant's most recent completed
	// discovery. Returns ErrNotFound when none exists.
	LatestCompletedDiscovery(ctx context.Context, tenantID string) (model.Discovery, error)

	// AppendScoreRun appends an immutable run to the tenant's history.
	AppendScoreRun(ctx context.Context, run model.ScoreRun) error

	// History returns the tenant's score runs in chronological order.
	History(ctx context.Context, tenantID string) ([]model.ScoreRun, error)

	// AppendAlert appends an alert record to the sink.
	AppendAlert(ctx context.Context, a model.Alert) error

	// Alerts returns all alert records, newest first.
	Alerts(ctx context.Context) ([]model.Alert, error)
}
