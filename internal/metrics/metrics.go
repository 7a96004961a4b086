// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "import_sessions_total",
			Help: "Total number of roster import sessions started",
		},
	)

	RowsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rows_evaluated_total",
			Help: "Roster rows by evaluation outcome",
		},
		[]string{"outcome"},
	)

	ExportChunkRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_chunk_rows",
			Help:    "Distribution of data rows per exported chunk",
			Buckets: prometheus.LinearBuckets(0, 25, 11),
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
