// Package metrics exposes Prometheus collectors for the outreach pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CompaniesProcessed counts per-company outcomes of a scan run.
	CompaniesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_companies_total",
			Help: "Companies handled by the scan pipeline, by outcome",
		},
		[]string{"outcome"},
	)

	// CapabilityCalls counts calls to external capabilities (gemini, search, smtp).
	CapabilityCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_capability_calls_total",
			Help: "Calls to external capabilities, by capability and status",
		},
		[]string{"capability", "status"},
	)

	// FetchDuration tracks HTTP fetch latency in seconds.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outreach_fetch_duration_seconds",
			Help:    "Page fetch duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"host", "status"},
	)

	// HTTPRequestDuration tracks API request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outreach_http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)
)

// IncrementCompany records one per-company outcome.
func IncrementCompany(outcome string) {
	CompaniesProcessed.WithLabelValues(outcome).Inc()
}

// IncrementCapabilityCall records one capability call.
func IncrementCapabilityCall(capability, status string) {
	CapabilityCalls.WithLabelValues(capability, status).Inc()
}

// RecordFetchDuration records the latency of a page fetch.
func RecordFetchDuration(host, status string, duration time.Duration) {
	FetchDuration.WithLabelValues(host, status).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration records the latency of an API request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
