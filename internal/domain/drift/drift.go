// Package drift decides whether a freshly computed score represents a
// significant decline for a tenant and derives the control-band statistics
// attached to the new run.
//
// The alert trigger is deliberately simpler than the band it records: it
// compares the new score against the immediately preceding run and applies
// fixed drop thresholds. The three-sigma band is stored for trend
// visualization and anomaly context downstream.
package drift

import (
	"fmt"

	"github.com/driftwatch/driftwatch/internal/domain/model"
	"github.com/driftwatch/driftwatch/internal/domain/stats"
)

// Default drop thresholds, in score points.
const (
	defaultWarningDrop  = 5.0
	defaultCriticalDrop = 10.0
)

// Outcome is the result of evaluating one new score against a tenant's
// history.
type Outcome struct {
	// Stats is the control band computed over the prior history only,
	// excluding the score under evaluation.
	Stats model.ControlStats

	// Drop is previous score minus new score; negative when the score
	// improved. Zero when no previous run exists.
	Drop float64

	// Severity classifies the drop. SeverityNone means no alert.
	Severity model.Severity
}

// Engine evaluates score drift with configurable thresholds.
type Engine struct {
	warningDrop  float64
	criticalDrop float64
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWarningDrop sets the drop beyond which a warning alert is raised.
func WithWarningDrop(points float64) Option {
	return func(e *Engine) {
		if points > 0 {
			e.warningDrop = points
		}
	}
}

// WithCriticalDrop sets the drop beyond which a critical alert is raised.
func WithCriticalDrop(points float64) Option {
	return func(e *Engine) {
		if points > 0 {
			e.criticalDrop = points
		}
	}
}

// New creates an Engine with default thresholds (warning > 5, critical > 10).
func New(opts ...Option) *Engine {
	e := &Engine{
		warningDrop:  defaultWarningDrop,
		criticalDrop: defaultCriticalDrop,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate computes the control band over prior (chronological, oldest first)
// and classifies the drop from the most recent prior score to newScore.
// Improvements and flat scores never alert.
func (e *Engine) Evaluate(prior []float64, newScore float64) Outcome {
	band := stats.ControlBand(prior, newScore)
	out := Outcome{
		Stats: model.ControlStats{
			Mean:   band.Mean,
			StdDev: band.StdDev,
			UCL:    band.UCL,
			LCL:    band.LCL,
		},
	}
	if len(prior) == 0 {
		return out
	}
	out.Drop = prior[len(prior)-1] - newScore
	out.Severity = e.classify(out.Drop)
	return out
}

// classify maps a drop to an alert severity. Thresholds are exclusive: a drop
// exactly at the warning threshold does not alert.
func (e *Engine) classify(drop float64) model.Severity {
	switch {
	case drop > e.criticalDrop:
		return model.SeverityCritical
	case drop > e.warningDrop:
		return model.SeverityWarning
	default:
		return model.SeverityNone
	}
}

// BuildAlert materializes an alert record for a tenant from a drift outcome.
// Callers must only invoke it when the outcome's severity is not SeverityNone.
func BuildAlert(tenant model.Tenant, out Outcome, previousScore, newScore float64) model.Alert {
	return model.Alert{
		ID:       model.NewID(),
		TenantID: tenant.ID,
		Type:     model.AlertTypeNarrativeDrift,
		Severity: out.Severity,
		Title:    fmt.Sprintf("Score drift detected for %s", tenant.Name),
		Message: fmt.Sprintf("Score dropped %.1f points (%.1f -> %.1f) since the previous run",
			out.Drop, previousScore, newScore),
		Status: model.AlertStatusNew,
	}
}
