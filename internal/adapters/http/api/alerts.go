// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/driftwatch/driftwatch/internal/domain/model"
)

// AlertsDependencies defines the interface for alert reads.
type AlertsDependencies interface {
	Alerts(ctx context.Context) ([]model.Alert, error)
}

// AlertsHandler handles alert listing requests.
type AlertsHandler struct {
	deps AlertsDependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps AlertsDependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// HandleGetAlerts handles GET /alerts requests.
func (h *AlertsHandler) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_alerts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	alerts, err := h.deps.Alerts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}
