// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/driftwatch/driftwatch/internal/app"
)

// RecalcDependencies defines the interface for the batch trigger.
type RecalcDependencies interface {
	Recalculate(ctx context.Context) (service.Summary, error)
}

// RecalcHandler handles the privileged batch trigger.
type RecalcHandler struct {
	deps      RecalcDependencies
	authToken string
}

// NewRecalcHandler creates a new recalculation handler. An empty authToken
// disables the token check (development setups).
func NewRecalcHandler(deps RecalcDependencies, authToken string) *RecalcHandler {
	return &RecalcHandler{deps: deps, authToken: authToken}
}

// HandleRecalculate handles POST /recalculate requests. Authorization
// failures are rejected before any side effect; a failure to load the tenant
// list is the only error that surfaces as a top-level 500.
func (h *RecalcHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	const op = "api.recalculate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if h.authToken != "" {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != h.authToken {
			writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
			return
		}
	}

	summary, err := h.deps.Recalculate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "batch_failed", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
