// Package metrics exposes Prometheus collectors for HTTP traffic, backend
// calls and rendered documents.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diewo77/proposal-desk/httpx"
)

// Metrics owns a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	gatewayCalls     *prometheus.CounterVec
	gatewayDuration  *prometheus.HistogramVec
	documentsRendered *prometheus.CounterVec
}

// New registers every collector under prefix, plus the Go and process
// collectors.
func New(prefix string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		gatewayCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_backend_requests_total",
				Help: "Total number of calls to the REST backend",
			},
			[]string{"resource", "method", "status"},
		),
		gatewayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_backend_request_duration_seconds",
				Help:    "Duration of calls to the REST backend in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource", "method"},
		),
		documentsRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_documents_rendered_total",
				Help: "Total number of rendered documents",
			},
			[]string{"kind", "format"},
		),
	}
	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.gatewayCalls,
		m.gatewayDuration,
		m.documentsRendered,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by route pattern. It must wrap the mux directly
// so the matched pattern is visible after the call.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := httpx.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rec.Status)
		m.httpRequests.WithLabelValues(r.Method, path, status).Inc()
		m.httpDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

// ObserveGateway records one backend call. Status 0 is a transport error.
func (m *Metrics) ObserveGateway(resource, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayCalls.WithLabelValues(resource, method, strconv.Itoa(status)).Inc()
	m.gatewayDuration.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}

// DocumentRendered counts one rendered document, e.g. ("contract", "pdf").
func (m *Metrics) DocumentRendered(kind, format string) {
	if m == nil {
		return
	}
	m.documentsRendered.WithLabelValues(kind, format).Inc()
}
