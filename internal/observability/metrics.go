package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce     sync.Once
	requestsTotal    *prometheus.CounterVec
	latencySeconds   *prometheus.HistogramVec
	submissionsTotal *prometheus.CounterVec
	gradesPublished  prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors for the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essayq_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "essayq_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "essayq_submissions_total",
			Help: "Essay submissions by outcome (ok or local/backend error code).",
		}, []string{"outcome"})

		gradesPublished = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "essayq_grades_published_total",
			Help: "Grade events published to the gradebook.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, submissionsTotal, gradesPublished)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Submissions exposes the per-outcome submission counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// GradesPublished exposes the grade event counter.
func GradesPublished() prometheus.Counter {
	RegisterMetrics()
	return gradesPublished
}
