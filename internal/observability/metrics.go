package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are registered on a caller-supplied registry so tests can build as
// many as they like. A nil *Metrics is a no-op.
type Metrics struct {
	registry      *prometheus.Registry
	uploads       *prometheus.CounterVec
	trendResults  *prometheus.CounterVec
	buildDuration prometheus.Histogram
	sessions      prometheus.Gauge
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "uploads_total",
			Help:      "Dataset uploads by outcome.",
		}, []string{"result"}),
		trendResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "trend_results_total",
			Help:      "Trend fits by result kind.",
		}, []string{"kind"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "build_duration_seconds",
			Help:      "Time spent computing all product reports for one request.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dashboard",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
	}

	registry.MustRegister(
		m.uploads,
		m.trendResults,
		m.buildDuration,
		m.sessions,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveUpload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveTrend(kind string) {
	if m == nil {
		return
	}
	m.trendResults.WithLabelValues(kind).Inc()
}

// TrendCounter exposes one trend_results_total series.
func (m *Metrics) TrendCounter(kind string) prometheus.Counter {
	return m.trendResults.WithLabelValues(kind)
}

func (m *Metrics) ObserveBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(d.Seconds())
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
