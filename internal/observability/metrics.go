package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Save outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector holds the prometheus metrics for the server. Each collector has
// its own registry so tests can create as many as they like.
type Collector struct {
	registry  *prometheus.Registry
	namespace string

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	Commands       *prometheus.CounterVec
	Saves          *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

// NewCollector creates a collector with metrics under namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry:  prometheus.NewRegistry(),
		namespace: namespace,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "editor_commands_total",
				Help:      "Editor commands that changed a graph, by command",
			},
			[]string{"command"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "editor_saves_total",
				Help:      "Editor saves by outcome",
			},
			[]string{"outcome"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "Open editing sessions",
			},
		),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.Saves,
		c.ActiveSessions,
	)
	return c
}

// ObserveStreams exports the number of open event streams, read from count
// at scrape time. Call it at most once per collector.
func (c *Collector) ObserveStreams(count func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "sse_streams_open",
			Help:      "Open server-sent event streams",
		},
		func() float64 { return float64(count()) },
	))
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CommandExecuted counts an editor command
func (c *Collector) CommandExecuted(name string) {
	c.Commands.WithLabelValues(name).Inc()
}

// SaveCompleted counts a finished save
func (c *Collector) SaveCompleted(err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	c.Saves.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
