// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades a drift alert.
type Severity string

// Alert severities, ordered from least to most serious.
const (
	SeverityNone     Severity = ""
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertTypeNarrativeDrift is the alert type raised by the recalculation
// pipeline. Other alert types belong to other subsystems.
const AlertTypeNarrativeDrift = "narrative_drift"

// AlertStatusNew is the status every freshly raised alert carries.
// Acknowledge/resolve transitions are owned by the dashboard, not this core.
const AlertStatusNew = "new"

// DiscoveryStatusCompleted marks an upstream data-collection artifact that is
// ready to be scored against.
const DiscoveryStatusCompleted = "completed"

// Tenant is a tracked client account whose reputation score is maintained
// independently of every other tenant's.
type Tenant struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BaselineScore *float64  `json:"baseline_score,omitempty"` // set once, on the first completed run
	TargetScore   *float64  `json:"target_score,omitempty"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ControlStats is the three-sigma control band derived from a tenant's prior
// history at the moment a new run is created. With fewer than two prior runs
// StdDev is zero and the band collapses onto the new score.
type ControlStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	UCL    float64 `json:"ucl"`
	LCL    float64 `json:"lcl"` // clamped at zero
}

// ScoreRun is one immutable, timestamped computation of a tenant's composite
// score. Runs are append-only and totally ordered by CreatedAt per tenant.
type ScoreRun struct {
	ID         string             `json:"id"`
	TenantID   string             `json:"tenant_id"`
	TotalScore float64            `json:"total_score"`
	Components map[string]float64 `json:"components"`
	Stats      ControlStats       `json:"stats"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Alert records a detected score drift for a tenant.
type Alert struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Type      string    `json:"type"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Discovery is the upstream data-collection artifact a score run is derived
// from. A tenant with no completed discovery is skipped by the batch.
type Discovery struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Status      string    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewID mints a unique identifier for domain entities.
func NewID() string {
	return uuid.NewString()
}
