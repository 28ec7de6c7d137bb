// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/driftwatch/driftwatch/internal/domain/model"
)

// HistoryDependencies defines the interface for history reads.
type HistoryDependencies interface {
	History(ctx context.Context, tenantID string) ([]model.ScoreRun, error)
}

// HistoryHandler handles score-run history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetHistory handles GET /tenants/{tenant_id}/history requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract the tenant id between /tenants/ and /history.
	path := strings.TrimPrefix(r.URL.Path, "/tenants/")
	tenantID, ok := strings.CutSuffix(path, "/history")
	if !ok || tenantID == "" || strings.Contains(tenantID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	runs, err := h.deps.History(r.Context(), tenantID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
