package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "candidateboard")
				So(manager.subsystem, ShouldEqual, "pipeline")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("board"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "board")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2, 3})
				So(manager.constLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When empty values are passed to options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "candidateboard")
				So(manager.subsystem, ShouldEqual, "pipeline")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("When recording cache activity", func() {
			before := testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("rankings"))
			RecordCacheHit("rankings")
			RecordCacheHit("rankings")
			RecordCacheMiss("rankings")
			RecordCacheInvalidation()

			Convey("Then the hit counter advances per slot", func() {
				So(testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("rankings")), ShouldEqual, before+2)
			})
		})

		Convey("When recording store activity", func() {
			before := testutil.ToFloat64(globalManager.storeLoadFallbacks)
			RecordStoreLoad("default")
			RecordStoreFallback()
			RecordStoreSave()
			RecordStoreSaveError()
			UpdateCandidatesTotal(40)

			Convey("Then counters and gauges reflect it", func() {
				So(testutil.ToFloat64(globalManager.storeLoadFallbacks), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.candidatesTotal), ShouldEqual, 40)
			})
		})

		Convey("When recording pipeline and HTTP activity", func() {
			So(func() {
				RecordRankingDuration(0.2)
				RecordAggregationDuration(0.1)
				RecordQuery(12)
				RecordRegeneration()
				RecordExport("sql")
				RecordHTTPRequest("/candidates", "GET", "200")
				RecordHTTPRequestDuration("/candidates", "GET", "200", 1.5)
				RecordErrorByEndpoint("/candidates", "GET", "client_error")
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then our collectors are registered there", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
