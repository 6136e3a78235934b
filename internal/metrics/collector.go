// Package metrics exposes Prometheus instrumentation for the retrieval
// engine, plus an optional scrape listener. Everything registers on a
// private registry so tests and embedders never collide on the global one.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dltmtt/viaggiatreno-api/internal/bulk"
	"github.com/dltmtt/viaggiatreno-api/internal/viaggiatreno"
)

// Collector implements the client and pipeline recorder interfaces.
type Collector struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	tasks       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	resumeAt    prometheus.Gauge
}

var (
	_ viaggiatreno.Recorder = (*Collector)(nil)
	_ bulk.TaskRecorder     = (*Collector)(nil)
)

// NewCollector builds a collector with all metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viaggiatreno_requests_total",
			Help: "Completed requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viaggiatreno_rate_limited_total",
			Help: "Rate-limit responses by endpoint.",
		}, []string{"endpoint"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viaggiatreno_bulk_tasks_total",
			Help: "Bulk task outcomes by stage.",
		}, []string{"stage", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "viaggiatreno_request_duration_seconds",
			Help:    "Request latency by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		resumeAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "viaggiatreno_backoff_resume_seconds",
			Help: "Unix time the shared backoff window ends at.",
		}),
	}

	c.registry.MustRegister(c.requests, c.rateLimited, c.tasks, c.duration, c.resumeAt)
	return c
}

// ObserveRequest counts one finished request attempt.
func (c *Collector) ObserveRequest(endpoint, outcome string, elapsed time.Duration) {
	c.requests.WithLabelValues(endpoint, outcome).Inc()
	c.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveRateLimit counts one 403 and tracks the shared window's end.
func (c *Collector) ObserveRateLimit(endpoint string, resumeAt time.Time) {
	c.rateLimited.WithLabelValues(endpoint).Inc()
	c.resumeAt.Set(float64(resumeAt.Unix()))
}

// ObserveTasks tallies one bulk stage.
func (c *Collector) ObserveTasks(stage string, s bulk.Summary) {
	c.tasks.WithLabelValues(stage, "data").Add(float64(s.Data))
	c.tasks.WithLabelValues(stage, "empty").Add(float64(s.Empty))
	c.tasks.WithLabelValues(stage, "failed").Add(float64(s.Failed))
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
