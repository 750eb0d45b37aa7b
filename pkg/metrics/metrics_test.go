package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))

			Convey("Then every collector is registered", func() {
				So(manager, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				// Vectors without observed labels are not gathered; plain collectors are.
				So(len(families), ShouldBeGreaterThan, 5)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNaming("naas", "web"),
				WithMetricPrefix("test"),
				WithLatencyBuckets(1, 10, 100),
				WithConstLabels(map[string]string{"env": "test"}),
				WithRegistry(registry),
			)
			manager.pageViews.Inc()

			Convey("Then metric names use the namespace, subsystem and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "naas_web_test_page_views_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When business metrics are disabled", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry), WithoutBusinessMetrics())

			Convey("Then the manager reports itself disabled", func() {
				So(manager.enabled, ShouldBeFalse)
				So(manager.customLabels, ShouldBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording registration outcomes", func() {
			before := testutil.ToFloat64(globalManager.registrations.WithLabelValues(OutcomeDuplicate))
			RecordRegistration(OutcomeDuplicate)

			Convey("Then the labelled counter increases", func() {
				after := testutil.ToFloat64(globalManager.registrations.WithLabelValues(OutcomeDuplicate))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording a failed store call", func() {
			before := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("insert_registration"))
			RecordStoreCall("insert_registration", 3*time.Millisecond, errors.New("boom"))
			RecordStoreCall("insert_registration", time.Millisecond, nil)

			Convey("Then only the failure is counted as an error", func() {
				after := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("insert_registration"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateVisitorCount(42)
			UpdateQueueSize(3)
			UpdateQueueCapacity(10)
			UpdateWorkerCount(2)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.visitorCount), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.workerActive), ShouldEqual, 2)
			})
		})

		Convey("When the remaining helpers are called", func() {
			So(func() {
				RecordPitch(OutcomeAccepted)
				RecordDelegateCheck("verified")
				RecordPaymentDecision("confirmed")
				RecordPageView()
				RecordUpload("receipts", 1024, 5*time.Millisecond)
				RecordNotification("registration.submitted", "delivered", time.Millisecond)
				RecordQueueDropped()
				RecordWorkerLatency(time.Millisecond)
				RecordHTTPRequest("registrations", "POST", "201", 10*time.Millisecond)
				RecordErrorByComponent("queue", "full")
				RecordErrorByEndpoint("registrations", "POST", "client_error")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})
	})
}

func TestRegistryExposition(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordPageView()

		Convey("Then it exposes the page view counter", func() {
			count, err := testutil.GatherAndCount(GetRegistry(), "convention_site_page_views_total")
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 1)
		})
	})
}
