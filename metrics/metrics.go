// Package metrics provides Prometheus metrics collection for the medicine info API.
// It exports HTTP metrics for every route plus domain metrics:
//   - http_response_size_bytes: Histogram of response body sizes per route
//   - medicine_lookup_total: Counter of store lookups by endpoint and outcome
//   - ai_fallback_total: Counter of AI fallback calls by result
//   - ai_fallback_duration_seconds: Histogram of AI call latency
//   - medicine_store_up: Gauge set by the periodic store probe
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size",
			Buckets: prometheus.ExponentialBuckets(64, 4, 6),
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	LookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medicine_lookup_total",
			Help: "Fuzzy store lookups by endpoint and outcome (hit, below_threshold, miss, error)",
		},
		[]string{"endpoint", "outcome"},
	)

	AIFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_fallback_total",
			Help: "AI fallback calls by result",
		},
		[]string{"result"},
	)

	AIFallbackDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ai_fallback_duration_seconds",
			Help:    "Latency of the generative API call",
			Buckets: []float64{.25, .5, 1, 2, 4, 8, 15, 30},
		},
	)

	StoreUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "medicine_store_up",
			Help: "1 when the last store probe succeeded, 0 otherwise",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPResponseSize)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(LookupTotal)
	prometheus.MustRegister(AIFallbackTotal)
	prometheus.MustRegister(AIFallbackDuration)
	prometheus.MustRegister(StoreUp)
}
