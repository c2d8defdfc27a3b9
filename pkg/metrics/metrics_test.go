package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue gathers the registry and returns the counter of the named
// family whose label values equal values, in label order.
func counterValue(m *Manager, field string, values ...string) float64 {
	names := map[string]string{
		"diagnoses":        "seasondiag_diagnoses_total",
		"undefinedMetrics": "seasondiag_undefined_trends_total",
		"seasonLoads":      "seasondiag_season_loads_total",
		"httpRequests":     "seasondiag_http_requests_total",
	}
	families, err := m.Registry().Gather()
	if err != nil {
		return -1
	}
	for _, f := range families {
		if f.GetName() != names[field] {
			continue
		}
	next:
		for _, metric := range f.GetMetric() {
			labels := metric.GetLabel()
			if len(labels) != len(values) {
				continue
			}
			// labels are sorted by name; match as a set
			want := map[string]bool{}
			for _, v := range values {
				want[v] = true
			}
			for _, l := range labels {
				if !want[l.GetValue()] {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should own a registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("diag"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered on that registry", func() {
				So(manager.Registry(), ShouldEqual, registry)
				manager.RecordSeasonLoad(SourceFetch)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				So(families[0].GetName(), ShouldStartWith, "test_diag_")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording diagnoses", func() {
			m.RecordDiagnosis("", 3*time.Millisecond)
			m.RecordDiagnosis("", time.Millisecond)
			m.RecordDiagnosis("INSUFFICIENT_SAMPLE", time.Millisecond)

			Convey("Then they are counted by outcome and kind", func() {
				So(counterValue(m, "diagnoses", OutcomeOK, "none"), ShouldEqual, 2)
				So(counterValue(m, "diagnoses", OutcomeError, "INSUFFICIENT_SAMPLE"), ShouldEqual, 1)
			})
		})

		Convey("When recording undefined trends and loads", func() {
			m.RecordUndefinedTrend("babip")
			m.RecordSeasonLoad(SourceCache)
			m.RecordSeasonLoad(SourceCache)
			m.RecordFetchDuration(250 * time.Millisecond)

			Convey("Then the counters move", func() {
				So(counterValue(m, "undefinedMetrics", "babip"), ShouldEqual, 1)
				So(counterValue(m, "seasonLoads", SourceCache), ShouldEqual, 2)
			})
		})

		Convey("When recording HTTP requests", func() {
			m.RecordHTTPRequest("/healthz", "GET", "200", time.Millisecond)

			Convey("Then the request counter moves", func() {
				So(counterValue(m, "httpRequests", "/healthz", "GET", "200"), ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsDisabled(t *testing.T) {
	Convey("Given a disabled manager", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))

		Convey("When recording", func() {
			m.RecordDiagnosis("", time.Millisecond)
			m.RecordSeasonLoad(SourceFetch)

			Convey("Then nothing is counted", func() {
				So(counterValue(m, "diagnoses", OutcomeOK, "none"), ShouldEqual, 0)
				So(counterValue(m, "seasonLoads", SourceFetch), ShouldEqual, 0)
			})
		})
	})
}

func TestMetricsHandler(t *testing.T) {
	Convey("Given a manager with one recorded diagnosis", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		m.RecordDiagnosis("", time.Millisecond)

		Convey("When scraping the handler", func() {
			rec := httptest.NewRecorder()
			m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
			body, _ := io.ReadAll(rec.Body)

			Convey("Then the exposition contains the counter", func() {
				So(rec.Code, ShouldEqual, 200)
				So(strings.Contains(string(body), "seasondiag_diagnoses_total"), ShouldBeTrue)
			})
		})
	})
}

func TestGlobalManager(t *testing.T) {
	Convey("Given the process-wide manager", t, func() {
		Convey("Then package-level recorders do not panic", func() {
			So(func() {
				RecordDiagnosis("", time.Millisecond)
				RecordUndefinedTrend("woba")
				RecordSeasonLoad(SourceFile)
				RecordFetchDuration(time.Second)
			}, ShouldNotPanic)
			So(Default(), ShouldNotBeNil)
		})
	})
}
