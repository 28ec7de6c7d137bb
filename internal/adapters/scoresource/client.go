// Package scoresource calls the external scoring service.
//
// Score computation is opaque to the pipeline: given a tenant identifier the
// service returns a composite total plus a breakdown by component, and this
// package does not interpret either beyond decoding them.
package scoresource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/driftwatch/driftwatch/pkg/metrics"
)

// defaultTimeout bounds a single scoring call.
const defaultTimeout = 15 * time.Second

// Result is one successful score computation.
type Result struct {
	Total      float64            `json:"total"`
	Components map[string]float64 `json:"components"`
}

// Source computes a tenant's composite score.
type Source interface {
	Score(ctx context.Context, tenantID string) (Result, error)
}

// Client implements Source against the scoring service's HTTP API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a Client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		timeout:    defaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Score requests the composite score for tenantID. Non-2xx responses and
// malformed bodies are failures; the call never outlives the configured
// timeout.
func (c *Client) Score(ctx context.Context, tenantID string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordScoreSourceLatency(float64(time.Since(start).Milliseconds()))
	}()

	url := fmt.Sprintf("%s/tenants/%s/score", c.baseURL, tenantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordScoreSourceError()
		return Result{}, fmt.Errorf("score request for tenant %s: %w", tenantID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordScoreSourceError()
		return Result{}, fmt.Errorf("%w: %d for tenant %s", ErrStatus, resp.StatusCode, tenantID)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.RecordScoreSourceError()
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return out, nil
}
