// Package metrics defines Prometheus metrics for engagerag.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query outcomes recorded by QueriesTotal.
const (
	OutcomeAnswered    = "answered"
	OutcomeGreeting    = "greeting"
	OutcomeUnavailable = "unavailable"
	OutcomeModelError  = "model_error"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engagerag_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagerag_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagerag_queries_total",
			Help: "Answered queries by outcome",
		},
		[]string{"outcome"},
	)

	ModelErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagerag_model_errors_total",
			Help: "Embedding and completion failures by stage",
		},
		[]string{"stage"},
	)

	IndexBuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engagerag_index_builds_total",
			Help: "Retrieval index rebuilds",
		},
	)

	SnapshotComputationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engagerag_snapshot_computations_total",
			Help: "Statistics snapshots computed from the raw dataset",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal,
		QueriesTotal, ModelErrorsTotal,
		IndexBuildsTotal, SnapshotComputationsTotal,
	)
}
