package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftwatch/driftwatch/internal/adapters/pool"
	"github.com/driftwatch/driftwatch/internal/adapters/repository"
	"github.com/driftwatch/driftwatch/internal/domain/drift"
	"github.com/driftwatch/driftwatch/internal/domain/model"
	"github.com/driftwatch/driftwatch/pkg/logger"
	"github.com/driftwatch/driftwatch/pkg/metrics"
)

// Status is a tenant's outcome within one batch pass. Each tenant moves from
// pending to exactly one terminal status per pass.
type Status string

// Terminal per-tenant statuses.
const (
	StatusRecalculated Status = "recalculated"
	StatusSkipped      Status = "skipped"
	StatusErrored      Status = "errored"
)

// TenantResult is one tenant's outcome in a batch summary.
type TenantResult struct {
	TenantID string   `json:"tenantId"`
	Status   Status   `json:"status"`
	NewScore *float64 `json:"newScore,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Summary aggregates one full batch pass.
type Summary struct {
	Success      bool           `json:"success"`
	Processed    int            `json:"processed"`
	Recalculated int            `json:"recalculated"`
	Skipped      int            `json:"skipped"`
	Errored      int            `json:"errored"`
	DurationMS   int64          `json:"durationMs"`
	Results      []TenantResult `json:"results"`
}

// Recalculate runs one full batch pass over all active tenants. Per-tenant
// failures are swallowed at the tenant boundary and surfaced only in the
// summary; the returned error is reserved for infrastructure failures that
// abort the whole pass (the tenant list cannot be loaded).
//
// Two immediate passes append two runs per tenant; deduplication is the
// trigger cadence's responsibility, not this method's.
func (s *Service) Recalculate(ctx context.Context) (Summary, error) {
	start := time.Now()

	// Once triggered the pass runs to completion; a caller disconnect must
	// not abandon tenants mid-batch or abort in-flight score calls.
	ctx = context.WithoutCancel(ctx)

	tenants, err := s.store.ListActiveTenants(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load active tenants: %w", err)
	}

	results := make([]TenantResult, len(tenants))
	tasks := make([]pool.Task, len(tenants))
	for i, tenant := range tenants {
		i, tenant := i, tenant
		tasks[i] = func(ctx context.Context) {
			results[i] = s.recalcTenant(ctx, tenant)
		}
	}
	s.batch.Run(ctx, tasks)

	summary := Summary{
		Success:    true,
		Processed:  len(tenants),
		DurationMS: time.Since(start).Milliseconds(),
		Results:    results,
	}
	for _, r := range results {
		switch r.Status {
		case StatusRecalculated:
			summary.Recalculated++
		case StatusSkipped:
			summary.Skipped++
		case StatusErrored:
			summary.Errored++
		}
		metrics.RecordTenantOutcome(string(r.Status))
	}
	metrics.RecordBatchRun(float64(summary.DurationMS))

	s.log.Info(ctx, "batch pass finished",
		logger.Int("processed", summary.Processed),
		logger.Int("recalculated", summary.Recalculated),
		logger.Int("skipped", summary.Skipped),
		logger.Int("errored", summary.Errored),
		logger.Duration("took", time.Since(start)),
	)
	return summary, nil
}

// recalcTenant processes one tenant in isolation. It never returns an error:
// every failure becomes a terminal per-tenant outcome.
func (s *Service) recalcTenant(ctx context.Context, tenant model.Tenant) TenantResult {
	result := TenantResult{TenantID: tenant.ID}

	// A tenant with no completed upstream discovery has nothing to score
	// against yet. Not an error.
	if _, err := s.store.LatestCompletedDiscovery(ctx, tenant.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			result.Status = StatusSkipped
			result.Reason = "no completed discovery"
			return result
		}
		result.Status = StatusErrored
		result.Error = fmt.Sprintf("discovery lookup failed: %v", err)
		return result
	}

	score, err := s.source.Score(ctx, tenant.ID)
	if err != nil {
		s.log.Warn(ctx, "score source failed",
			logger.String("tenant", tenant.ID),
			logger.Error(err),
		)
		result.Status = StatusErrored
		result.Error = fmt.Sprintf("score computation failed: %v", err)
		return result
	}

	history, err := s.store.History(ctx, tenant.ID)
	if err != nil {
		result.Status = StatusErrored
		result.Error = fmt.Sprintf("history load failed: %v", err)
		return result
	}
	prior := make([]float64, len(history))
	for i, run := range history {
		prior[i] = run.TotalScore
	}

	outcome := s.engine.Evaluate(prior, score.Total)

	run := model.ScoreRun{
		ID:         model.NewID(),
		TenantID:   tenant.ID,
		TotalScore: score.Total,
		Components: score.Components,
		Stats:      outcome.Stats,
		CreatedAt:  time.Now(),
	}
	if err := s.store.AppendScoreRun(ctx, run); err != nil {
		result.Status = StatusErrored
		result.Error = fmt.Sprintf("history write failed: %v", err)
		return result
	}

	// First completed run initializes the baseline, once per tenant, ever.
	if tenant.BaselineScore == nil {
		if err := s.store.SetBaseline(ctx, tenant.ID, score.Total); err != nil &&
			!errors.Is(err, repository.ErrBaselineSet) {
			s.log.Warn(ctx, "baseline write failed",
				logger.String("tenant", tenant.ID),
				logger.Error(err),
			)
		}
	}

	if outcome.Severity != model.SeverityNone {
		alert := drift.BuildAlert(tenant, outcome, prior[len(prior)-1], score.Total)
		if err := s.store.AppendAlert(ctx, alert); err != nil {
			s.log.Error(ctx, "alert write failed",
				logger.String("tenant", tenant.ID),
				logger.Error(err),
			)
		} else {
			metrics.RecordDriftAlert(string(outcome.Severity))
			s.log.Warn(ctx, "drift alert raised",
				logger.String("tenant", tenant.ID),
				logger.String("severity", string(outcome.Severity)),
				logger.Float64("drop", outcome.Drop),
				logger.Float64("newScore", score.Total),
			)
		}
	}

	newScore := score.Total
	result.Status = StatusRecalculated
	result.NewScore = &newScore
	return result
}
