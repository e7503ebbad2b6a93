// Package metrics exposes Prometheus collectors for the edge server: one for
// inbound HTTP traffic and one for calls made to the content backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/platform-smith-labs/siteedge/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds Prometheus metrics collectors for HTTP requests
type Collector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

// MetricsOptions configures Prometheus metrics collection
type MetricsOptions struct {
	// DurationBuckets defines histogram buckets for request duration (in seconds)
	DurationBuckets []float64

	// Namespace is the Prometheus namespace for metrics
	Namespace string

	// Subsystem is the Prometheus subsystem for metrics
	Subsystem string
}

// DefaultMetricsOptions returns the buckets and namespace used by the server
func DefaultMetricsOptions() MetricsOptions {
	return MetricsOptions{
		DurationBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		Namespace:       "siteedge",
	}
}

// EnablePrometheusMetrics tracks every request on router and serves the
// registry at metricsPath.
//
// Metrics tracked:
//   - <ns>_http_requests_total{method,path,status}
//   - <ns>_http_request_duration_seconds{method,path}
//   - <ns>_http_requests_in_flight
//
// A nil registerer selects prometheus.DefaultRegisterer.
func EnablePrometheusMetrics(router chi.Router, metricsPath string, opts MetricsOptions, registerer prometheus.Registerer) *Collector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	collector := &Collector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Subsystem: subsystem(opts, "http"),
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Subsystem: subsystem(opts, "http"),
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency distribution",
				Buckets:   opts.DurationBuckets,
			},
			[]string{"method", "path"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: opts.Namespace,
				Subsystem: subsystem(opts, "http"),
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being served",
			},
		),
	}

	registerer.MustRegister(collector.requestsTotal, collector.requestDuration, collector.requestsInFlight)

	router.Use(collector.Middleware)
	router.Handle(metricsPath, Handler(registerer))

	return collector
}

// Handler serves the metrics gathered by registerer.
func Handler(registerer prometheus.Registerer) http.Handler {
	if gatherer, ok := registerer.(prometheus.Gatherer); ok && registerer != prometheus.DefaultRegisterer {
		return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

// Middleware tracks HTTP request metrics
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.requestsInFlight.Inc()
		defer c.requestsInFlight.Dec()

		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		routePattern := getRoutePattern(r)
		c.requestsTotal.WithLabelValues(r.Method, routePattern, strconv.Itoa(ww.statusCode)).Inc()
		c.requestDuration.WithLabelValues(r.Method, routePattern).Observe(time.Since(start).Seconds())
	})
}

// BackendCollector records calls made by the backend API client. It
// satisfies apiclient.Observer.
type BackendCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewBackendCollector registers the backend metrics:
//   - <ns>_backend_requests_total{method,route,status,code}
//   - <ns>_backend_request_duration_seconds{method,route}
//
// A nil registerer selects prometheus.DefaultRegisterer.
func NewBackendCollector(opts MetricsOptions, registerer prometheus.Registerer) *BackendCollector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	b := &BackendCollector{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: opts.Namespace,
				Subsystem: subsystem(opts, "backend"),
				Name:      "requests_total",
				Help:      "Total number of backend API calls",
			},
			[]string{"method", "route", "status", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: opts.Namespace,
				Subsystem: subsystem(opts, "backend"),
				Name:      "request_duration_seconds",
				Help:      "Backend API call latency distribution",
				Buckets:   opts.DurationBuckets,
			},
			[]string{"method", "route"},
		),
	}
	registerer.MustRegister(b.requestsTotal, b.requestDuration)
	return b
}

// ObserveRequest records one backend call. Successful calls carry the code
// label "ok"; transport failures carry status "0".
func (b *BackendCollector) ObserveRequest(method, route string, status int, code core.ErrorCode, duration time.Duration) {
	codeLabel := string(code)
	if codeLabel == "" {
		codeLabel = "ok"
	}
	b.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status), codeLabel).Inc()
	b.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// subsystem joins the configured subsystem with the collector's own.
func subsystem(opts MetricsOptions, name string) string {
	if opts.Subsystem == "" {
		return name
	}
	return opts.Subsystem + "_" + name
}

// getRoutePattern extracts the route pattern from chi's route context
// This normalizes paths like "/tr/content/projects/depot" to
// "/{locale}/content/projects/{slug}" to prevent metric cardinality explosion
func getRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	// Redirects and skipped paths never reach a route
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// WriteHeader captures the status code
func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

// Write ensures status code is captured even if WriteHeader isn't explicitly called
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
