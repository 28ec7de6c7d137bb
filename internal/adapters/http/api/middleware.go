// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/driftwatch/driftwatch/internal/admission"
	"github.com/driftwatch/driftwatch/pkg/metrics"
)

// loopbackAddr is the identifier of last resort when no address header is
// present.
const loopbackAddr = "127.0.0.1"

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)
	}
}

// rateLimitExceededResponse is the fixed rejection payload. Field names are
// part of the public API contract.
type rateLimitExceededResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetAt   int64  `json:"resetAt"`
}

// RateLimit wraps a handler with an admission check against the named limiter
// profile. The wrapped handler's contract is unchanged except for the
// additive X-RateLimit-* headers; rejected requests receive a 429 with the
// standard payload and never reach the handler.
func RateLimit(limiter *admission.Limiter, profile string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := limiter.Check(r.Context(), profile, ClientIP(r))
		if err != nil {
			// Only an unknown profile reaches here; store failures are
			// absorbed by the limiter's fail-open policy.
			writeError(w, http.StatusInternalServerError, "rate_limiter_error", Wrap("api.rate_limit", err))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt, 10))

		if !d.Allowed {
			writeJSON(w, http.StatusTooManyRequests, rateLimitExceededResponse{
				Error:     "Rate limit exceeded",
				Message:   fmt.Sprintf("Too many requests; retry after %s", time.Unix(d.ResetAt, 0).UTC().Format(time.RFC3339)),
				Limit:     d.Limit,
				Remaining: d.Remaining,
				ResetAt:   d.ResetAt,
			})
			return
		}

		next.ServeHTTP(w, r)
	}
}

// ClientIP extracts the caller identifier: the first forwarded-for entry,
// then the real-ip header, then loopback. Deterministic, never fails.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	return loopbackAddr
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
