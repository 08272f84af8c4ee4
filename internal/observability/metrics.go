package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment service.
type Metrics struct {
	AssessmentsTotal   *prometheus.CounterVec // labels: outcome={success,invalid,no_data,error}
	AssessmentDuration prometheus.Histogram
	ReportsRendered    *prometheus.CounterVec // labels: kind={chart,pdf}

	// NASA POWER retrieval metrics.
	PowerRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	PowerAPIDuration prometheus.Histogram
	PowerCache       *prometheus.CounterVec // labels: result={hit,miss}
	RecordsDropped   prometheus.Counter

	// Assessment-event publishing metrics.
	EventsPublished  prometheus.Counter
	PublisherEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentDuration,
		m.ReportsRendered,
		m.PowerRequests,
		m.PowerAPIDuration,
		m.PowerCache,
		m.RecordsDropped,
		m.EventsPublished,
		m.PublisherEnabled,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "thi",
			Name:      "assessments_total",
			Help:      "Completed assessment requests by outcome.",
		}, []string{"outcome"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "thi",
			Name:      "assessment_duration_seconds",
			Help:      "Duration of a complete fetch-classify-aggregate-summarize cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ReportsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "thi",
			Name:      "reports_rendered_total",
			Help:      "Rendered output artifacts by kind.",
		}, []string{"kind"}),
		PowerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "thi",
			Name:      "power_requests_total",
			Help:      "NASA POWER API requests by outcome.",
		}, []string{"outcome"}),
		PowerAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "thi",
			Name:      "power_api_duration_seconds",
			Help:      "NASA POWER API request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PowerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "thi",
			Name:      "power_cache_total",
			Help:      "POWER fetch cache lookups by result.",
		}, []string{"result"}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "thi",
			Name:      "records_dropped_total",
			Help:      "Daily records dropped for fill values or unparseable fields.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "thi",
			Name:      "events_published_total",
			Help:      "Assessment events published to the sink topic.",
		}),
		PublisherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "thi",
			Name:      "publisher_enabled",
			Help:      "1 when assessment-event publishing is enabled, 0 otherwise.",
		}),
	}
}
