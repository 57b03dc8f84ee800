// Package metrics exposes the service's Prometheus instruments.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolve results.
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Metrics holds the instruments registered on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	created    *prometheus.CounterVec
	reused     prometheus.Counter
	resolved   *prometheus.CounterVec
	collisions prometheus.Counter
	duration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlinks_created_total",
			Help: "Short links created, by strategy.",
		}, []string{"strategy"}),
		reused: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortlinks_reused_total",
			Help: "Shorten requests answered with an existing link.",
		}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shortlinks_resolved_total",
			Help: "Redirect lookups, by result.",
		}, []string{"result"}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shortlink_key_collisions_total",
			Help: "Generated keys rejected because they were already taken.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency, by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.created,
		m.reused,
		m.resolved,
		m.collisions,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) LinkCreated(strategy string) {
	m.created.WithLabelValues(strategy).Inc()
}

func (m *Metrics) LinkReused() {
	m.reused.Inc()
}

func (m *Metrics) LinkResolved(result string) {
	m.resolved.WithLabelValues(result).Inc()
}

// KeyCollision matches the generator's collision hook signature.
func (m *Metrics) KeyCollision(int) {
	m.collisions.Inc()
}

// Registry returns the registry the instruments are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware observes request latency. The route label is the chi route
// pattern, so path parameters such as keys do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.duration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
