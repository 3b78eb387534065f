package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	apiRequestsTotal    *prometheus.CounterVec
	apiLatencySeconds   *prometheus.HistogramVec
	apiErrorsTotal      *prometheus.CounterVec
	reviewDecisions     *prometheus.CounterVec
	reviewSubmissions   *prometheus.CounterVec
	reviewEvents        *prometheus.CounterVec
	reviewStreamClients prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors for API traffic and the review queues.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentora_api_requests_total",
			Help: "API requests served, by surface, route and status.",
		}, []string{"surface", "method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mentora_api_latency_seconds",
			Help:    "Latency distribution for API requests; review list views target a 250ms p95.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"surface", "method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mentora_api_errors_total",
			Help: "Error responses returned, by surface, route and status.",
		}, []string{"surface", "method", "route", "status"})

		reviewDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_decisions_total",
			Help: "Review decisions applied, by queue and resulting status.",
		}, []string{"kind", "status"})

		reviewSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_submissions_total",
			Help: "Records submitted into a review queue.",
		}, []string{"kind"})

		reviewEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_events_total",
			Help: "Review events fanned out to stream subscribers, by origin.",
		}, []string{"origin"})

		reviewStreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "review_stream_clients",
			Help: "Websocket clients currently following review events.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			reviewDecisions,
			reviewSubmissions,
			reviewEvents,
			reviewStreamClients,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the error response counter.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ReviewDecisions exposes the counter of applied review decisions.
func ReviewDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewDecisions
}

// ReviewSubmissions exposes the counter of intake submissions.
func ReviewSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewSubmissions
}

// ReviewEvents exposes the counter of fanned-out review events.
func ReviewEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewEvents
}

// ReviewStreamClients exposes the gauge of connected review stream clients.
func ReviewStreamClients() prometheus.Gauge {
	RegisterMetrics()
	return reviewStreamClients
}
