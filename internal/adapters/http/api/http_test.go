package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/driftwatch/driftwatch/internal/adapters/counter"
	"github.com/driftwatch/driftwatch/internal/adapters/http/api"
	"github.com/driftwatch/driftwatch/internal/admission"
	service "github.com/driftwatch/driftwatch/internal/app"
	"github.com/driftwatch/driftwatch/internal/domain/model"
	"github.com/driftwatch/driftwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// stubDeps implements api.Dependencies with canned data.
type stubDeps struct {
	summary    service.Summary
	runs       []model.ScoreRun
	historyErr error
	alerts     []model.Alert
}

func (s *stubDeps) Recalculate(context.Context) (service.Summary, error) { return s.summary, nil }
func (s *stubDeps) History(_ context.Context, tenantID string) ([]model.ScoreRun, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.runs, nil
}
func (s *stubDeps) Alerts(context.Context) ([]model.Alert, error) { return s.alerts, nil }

func (s *stubDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(t *testing.T, deps *stubDeps, authToken string, reg admission.Registry) *http.ServeMux {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	store := counter.NewInMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	limiter := admission.New(store, reg)
	srv := api.NewServer(deps, deps, limiter, authToken)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return mux
}

func TestRecalculateEndpoint(t *testing.T) {
	score := 78.5
	deps := &stubDeps{
		summary: service.Summary{
			Success:      true,
			Processed:    2,
			Recalculated: 1,
			Skipped:      1,
			DurationMS:   42,
			Results: []service.TenantResult{
				{TenantID: "t-1", Status: service.StatusRecalculated, NewScore: &score},
				{TenantID: "t-2", Status: service.StatusSkipped, Reason: "no completed discovery"},
			},
		},
	}

	Convey("Given a server guarding the trigger with a token", t, func() {
		mux := newTestServer(t, deps, "sekrit", admission.DefaultRegistry())

		Convey("When the trigger is called without credentials", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recalculate", nil))

			Convey("Then it is rejected with a structured 401 and no batch ran", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
				var body map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "unauthorized")
			})
		})

		Convey("When the trigger is called with the right bearer token", func() {
			req := httptest.NewRequest(http.MethodPost, "/recalculate", nil)
			req.Header.Set("Authorization", "Bearer sekrit")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the batch summary comes back as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var got service.Summary
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Success, ShouldBeTrue)
				So(got.Processed, ShouldEqual, 2)
				So(len(got.Results), ShouldEqual, 2)
				So(got.Results[0].TenantID, ShouldEqual, "t-1")
				So(*got.Results[0].NewScore, ShouldEqual, 78.5)
				So(got.Results[1].Reason, ShouldEqual, "no completed discovery")
			})
		})

		Convey("When the trigger is called with GET", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recalculate", nil))

			Convey("Then the route does not exist for that method", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHistoryEndpoint(t *testing.T) {
	deps := &stubDeps{
		runs: []model.ScoreRun{
			{ID: "r-1", TenantID: "t-1", TotalScore: 80, CreatedAt: time.Now()},
		},
	}

	Convey("Given a server with history data", t, func() {
		mux := newTestServer(t, deps, "", admission.DefaultRegistry())

		Convey("When a tenant's history is requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants/t-1/history", nil))

			Convey("Then runs come back with rate-limit metadata attached", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("X-RateLimit-Limit"), ShouldEqual, "100")
				So(rec.Header().Get("X-RateLimit-Remaining"), ShouldNotBeEmpty)
				So(rec.Header().Get("X-RateLimit-Reset"), ShouldNotBeEmpty)

				var runs []model.ScoreRun
				So(json.Unmarshal(rec.Body.Bytes(), &runs), ShouldBeNil)
				So(len(runs), ShouldEqual, 1)
				So(runs[0].TotalScore, ShouldEqual, 80.0)
			})
		})

		Convey("When the path is malformed", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants//history", nil))

			Convey("Then a structured bad request is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})

	Convey("Given a history backend that fails", t, func() {
		mux := newTestServer(t, &stubDeps{
			historyErr: errors.New("pg: connection reset by peer"),
		}, "", admission.DefaultRegistry())

		Convey("When a tenant's history is requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenants/t-1/history", nil))

			Convey("Then the 500 body carries the code, not the internal fault", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)

				var body map[string]string
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "internal_error")
				So(body["message"], ShouldEqual, http.StatusText(http.StatusInternalServerError))
				So(rec.Body.String(), ShouldNotContainSubstring, "connection reset")
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given a running server", t, func() {
		mux := newTestServer(t, &stubDeps{}, "", admission.DefaultRegistry())

		Convey("When the snapshot is requested", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then the pipeline state comes back as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var stats map[string]interface{}
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When the snapshot is requested with POST", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stats", nil))

			Convey("Then the route does not exist for that method", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAlertsEndpoint(t *testing.T) {
	deps := &stubDeps{
		alerts: []model.Alert{
			{ID: "a-1", TenantID: "t-1", Type: model.AlertTypeNarrativeDrift, Severity: model.SeverityCritical, Status: model.AlertStatusNew},
		},
	}

	Convey("Given a server with one alert in the sink", t, func() {
		mux := newTestServer(t, deps, "", admission.DefaultRegistry())

		Convey("When alerts are listed", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/alerts", nil))

			Convey("Then the alert record shape round-trips", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var alerts []model.Alert
				So(json.Unmarshal(rec.Body.Bytes(), &alerts), ShouldBeNil)
				So(len(alerts), ShouldEqual, 1)
				So(alerts[0].Type, ShouldEqual, "narrative_drift")
				So(alerts[0].Severity, ShouldEqual, model.SeverityCritical)
				So(alerts[0].Status, ShouldEqual, "new")
			})
		})
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	Convey("Given a server with a tiny limiter profile", t, func() {
		reg := admission.Registry{
			admission.ProfileDefault: {Name: admission.ProfileDefault, Capacity: 2, Window: time.Minute},
		}
		mux := newTestServer(t, &stubDeps{}, "", reg)

		get := func(ip string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/alerts", nil)
			req.Header.Set("X-Forwarded-For", ip)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			return rec
		}

		Convey("When a caller exhausts the window", func() {
			So(get("203.0.113.7").Code, ShouldEqual, http.StatusOK)
			So(get("203.0.113.7").Code, ShouldEqual, http.StatusOK)
			rec := get("203.0.113.7")

			Convey("Then the third request gets the standard 429 payload", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(rec.Header().Get("X-RateLimit-Remaining"), ShouldEqual, "0")

				var body struct {
					Error     string `json:"error"`
					Message   string `json:"message"`
					Limit     int    `json:"limit"`
					Remaining int    `json:"remaining"`
					ResetAt   int64  `json:"resetAt"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body.Error, ShouldEqual, "Rate limit exceeded")
				So(body.Message, ShouldNotBeEmpty)
				So(body.Limit, ShouldEqual, 2)
				So(body.Remaining, ShouldEqual, 0)
				So(body.ResetAt, ShouldBeGreaterThan, 0)
			})

			Convey("And a different caller is unaffected", func() {
				So(get("198.51.100.9").Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestClientIP(t *testing.T) {
	Convey("Given requests with various address headers", t, func() {
		Convey("When X-Forwarded-For carries a chain", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1, 10.0.0.2")
			req.Header.Set("X-Real-IP", "198.51.100.9")

			Convey("Then the first entry wins", func() {
				So(api.ClientIP(req), ShouldEqual, "203.0.113.7")
			})
		})

		Convey("When only X-Real-IP is present", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Real-IP", "198.51.100.9")

			Convey("Then it is used as the identifier", func() {
				So(api.ClientIP(req), ShouldEqual, "198.51.100.9")
			})
		})

		Convey("When no address header is present", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			Convey("Then the loopback constant is returned", func() {
				So(api.ClientIP(req), ShouldEqual, "127.0.0.1")
			})
		})
	})
}
