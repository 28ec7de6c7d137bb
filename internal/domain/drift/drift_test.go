package drift_test

import (
	"testing"

	"github.com/driftwatch/driftwatch/internal/domain/drift"
	"github.com/driftwatch/driftwatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEngine_Evaluate(t *testing.T) {
	Convey("Given a drift engine with default thresholds", t, func() {
		engine := drift.New()

		Convey("When a tenant has no prior history", func() {
			out := engine.Evaluate(nil, 67.0)

			Convey("Then the band collapses onto the new score and nothing alerts", func() {
				So(out.Stats.Mean, ShouldEqual, 67.0)
				So(out.Stats.StdDev, ShouldEqual, 0)
				So(out.Stats.UCL, ShouldEqual, 67.0)
				So(out.Stats.LCL, ShouldEqual, 67.0)
				So(out.Drop, ShouldEqual, 0)
				So(out.Severity, ShouldEqual, model.SeverityNone)
			})
		})

		Convey("When the score improves", func() {
			out := engine.Evaluate([]float64{60, 62}, 75.0)

			Convey("Then no alert is raised regardless of magnitude", func() {
				So(out.Drop, ShouldBeLessThan, 0)
				So(out.Severity, ShouldEqual, model.SeverityNone)
			})
		})

		Convey("When the score is flat", func() {
			out := engine.Evaluate([]float64{70}, 70.0)

			Convey("Then no alert is raised", func() {
				So(out.Drop, ShouldEqual, 0)
				So(out.Severity, ShouldEqual, model.SeverityNone)
			})
		})

		Convey("When the drop is exactly at the warning threshold", func() {
			out := engine.Evaluate([]float64{75}, 70.0)

			Convey("Then the threshold is exclusive and nothing alerts", func() {
				So(out.Drop, ShouldEqual, 5.0)
				So(out.Severity, ShouldEqual, model.SeverityNone)
			})
		})

		Convey("When the drop is between the warning and critical thresholds", func() {
			out := engine.Evaluate([]float64{80}, 73.0)

			Convey("Then a warning is raised", func() {
				So(out.Drop, ShouldEqual, 7.0)
				So(out.Severity, ShouldEqual, model.SeverityWarning)
			})
		})

		Convey("When the drop is exactly at the critical threshold", func() {
			out := engine.Evaluate([]float64{80}, 70.0)

			Convey("Then it stays a warning", func() {
				So(out.Drop, ShouldEqual, 10.0)
				So(out.Severity, ShouldEqual, model.SeverityWarning)
			})
		})

		Convey("When the drop exceeds the critical threshold", func() {
			out := engine.Evaluate([]float64{80}, 69.0)

			Convey("Then a critical alert is raised", func() {
				So(out.Severity, ShouldEqual, model.SeverityCritical)
			})
		})

		Convey("When a realistic history precedes a sharp decline", func() {
			// Prior runs [80, 78, 82]; the new score 70 drops 12 points
			// from the most recent run (82), not from the mean (80).
			out := engine.Evaluate([]float64{80, 78, 82}, 70.0)

			Convey("Then the drop is measured against the previous run", func() {
				So(out.Drop, ShouldEqual, 12.0)
				So(out.Severity, ShouldEqual, model.SeverityCritical)
			})

			Convey("And the band is computed from history only", func() {
				So(out.Stats.Mean, ShouldEqual, 80.0)
				So(out.Stats.StdDev, ShouldAlmostEqual, 2.0, 1e-9)
				So(out.Stats.UCL, ShouldAlmostEqual, 86.0, 1e-9)
				So(out.Stats.LCL, ShouldAlmostEqual, 74.0, 1e-9)
			})
		})
	})

	Convey("Given a drift engine with custom thresholds", t, func() {
		engine := drift.New(
			drift.WithWarningDrop(2),
			drift.WithCriticalDrop(4),
		)

		Convey("When scores decline past the custom thresholds", func() {
			Convey("Then classification follows the injected values", func() {
				So(engine.Evaluate([]float64{50}, 47.0).Severity, ShouldEqual, model.SeverityWarning)
				So(engine.Evaluate([]float64{50}, 45.0).Severity, ShouldEqual, model.SeverityCritical)
				So(engine.Evaluate([]float64{50}, 49.0).Severity, ShouldEqual, model.SeverityNone)
			})
		})
	})
}

func TestBuildAlert(t *testing.T) {
	Convey("Given a tenant and a critical drift outcome", t, func() {
		tenant := model.Tenant{ID: "t-1", Name: "Acme Corp", Active: true}
		engine := drift.New()
		out := engine.Evaluate([]float64{80, 78, 82}, 70.0)

		Convey("When the alert record is built", func() {
			alert := drift.BuildAlert(tenant, out, 82.0, 70.0)

			Convey("Then it carries the fixed type, new status and tenant reference", func() {
				So(alert.ID, ShouldNotBeEmpty)
				So(alert.TenantID, ShouldEqual, "t-1")
				So(alert.Type, ShouldEqual, model.AlertTypeNarrativeDrift)
				So(alert.Severity, ShouldEqual, model.SeverityCritical)
				So(alert.Status, ShouldEqual, model.AlertStatusNew)
				So(alert.Title, ShouldContainSubstring, "Acme Corp")
				So(alert.Message, ShouldContainSubstring, "12.0 points")
			})
		})
	})
}
