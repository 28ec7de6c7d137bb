// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/driftwatch/driftwatch/internal/admission"
	service "github.com/driftwatch/driftwatch/internal/app"
	"github.com/driftwatch/driftwatch/internal/domain/model"
	"github.com/driftwatch/driftwatch/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Recalculate runs one full batch pass over all active tenants.
	Recalculate(ctx context.Context) (service.Summary, error)

	// History returns a tenant's score runs in chronological order.
	History(ctx context.Context, tenantID string) ([]model.ScoreRun, error)

	// Alerts returns all alert records, newest first.
	Alerts(ctx context.Context) ([]model.Alert, error)
}

// Server wires HTTP routes for the pipeline API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	recalcHandler  *RecalcHandler
	historyHandler *HistoryHandler
	alertsHandler  *AlertsHandler
	limiter        *admission.Limiter
}

// NewServer creates a new API server with all handlers. authToken guards the
// privileged trigger endpoint; empty means no token check.
func NewServer(deps Dependencies, statsProvider StatsProvider, limiter *admission.Limiter, authToken string) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		recalcHandler:  NewRecalcHandler(deps, authToken),
		historyHandler: NewHistoryHandler(deps),
		alertsHandler:  NewAlertsHandler(deps),
		limiter:        limiter,
	}
}

// Register attaches all HTTP routes to mux. Interactive read paths sit behind
// the general-purpose limiter profile; the batch trigger is privileged and
// guarded by its token instead.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/recalculate", MetricsMiddleware(s.recalcHandler.HandleRecalculate, "recalculate"))
	mux.HandleFunc("/alerts", MetricsMiddleware(
		RateLimit(s.limiter, admission.ProfileDefault, s.alertsHandler.HandleGetAlerts), "alerts"))
	mux.HandleFunc("/tenants/", MetricsMiddleware(
		RateLimit(s.limiter, admission.ProfileDefault, s.historyHandler.HandleGetHistory), "history"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError responds with a machine-readable code and the generic status
// text. The underlying cause is logged, never echoed to clients.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	if err != nil {
		logger.Get().Named("api").Warn(context.Background(), "request failed",
			logger.String("code", code),
			logger.Int("status", status),
			logger.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: http.StatusText(status)})
}
