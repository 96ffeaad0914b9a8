// Package metrics defines the Prometheus collectors used by docshelf and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docshelf"

// Search result types
const (
	SearchResultHit   = "hit"
	SearchResultEmpty = "zero_result"
	SearchResultError = "error"
)

// Metrics holds all Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	TreeIndexDuration    prometheus.Histogram
	TreeIndexErrors      prometheus.Counter
	TreeDocuments        prometheus.Gauge
	PathRejections       *prometheus.CounterVec
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        prometheus.Histogram
	SearchCoalesced      prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed.",
			},
		),
		TreeIndexDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tree_index_duration_seconds",
				Help:      "Time spent walking the content folder.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		TreeIndexErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tree_index_errors_total",
				Help:      "Total tree index calls that failed to read a directory.",
			},
		),
		TreeDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tree_documents",
				Help:      "Number of documents found by the last successful index.",
			},
		),
		PathRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "path_rejections_total",
				Help:      "Requested paths rejected by reason (escape, malformed, not_found).",
			},
			[]string{"reason"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_queries_total",
				Help:      "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_latency_seconds",
				Help:      "Search latency in seconds, including the in-memory index build.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		SearchCoalesced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_coalesced_total",
				Help:      "Search calls answered by an identical in-flight query.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.TreeIndexDuration,
		m.TreeIndexErrors,
		m.TreeDocuments,
		m.PathRejections,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchCoalesced,
	)

	return m
}

// ObserveIndex records one tree index call.
func (m *Metrics) ObserveIndex(elapsed time.Duration, documents int, err error) {
	if m == nil {
		return
	}
	m.TreeIndexDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.TreeIndexErrors.Inc()
		return
	}
	m.TreeDocuments.Set(float64(documents))
}

// ObserveRejection records a rejected path by reason.
func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.PathRejections.WithLabelValues(reason).Inc()
}

// ObserveSearch records one search call.
func (m *Metrics) ObserveSearch(elapsed time.Duration, hits int, err error, shared bool) {
	if m == nil {
		return
	}
	m.SearchLatency.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		m.SearchQueriesTotal.WithLabelValues(SearchResultError).Inc()
	case hits == 0:
		m.SearchQueriesTotal.WithLabelValues(SearchResultEmpty).Inc()
	default:
		m.SearchQueriesTotal.WithLabelValues(SearchResultHit).Inc()
	}
	if shared {
		m.SearchCoalesced.Inc()
	}
}

// Handler returns the Prometheus scrape HTTP handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
