// Package metrics provides Prometheus metrics for phimgo.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOpsTotal counts store reads issued by listings, by operation and outcome.
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phimgo",
			Name:      "store_ops_total",
			Help:      "Total number of listing store operations",
		},
		[]string{"op", "status"},
	)

	// StoreOpDuration measures listing store read latency.
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "phimgo",
			Name:      "store_op_duration_seconds",
			Help:      "Duration of listing store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// StoreRetriesTotal counts retries of transient store failures.
	StoreRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phimgo",
			Name:      "store_retries_total",
			Help:      "Total number of retried store operations",
		},
	)

	// StaleResponsesTotal counts listing responses discarded because a newer request was issued.
	StaleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phimgo",
			Name:      "stale_responses_total",
			Help:      "Total number of superseded listing responses discarded",
		},
	)

	// CacheInvalidationsTotal counts pagination cache resets by reason.
	CacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phimgo",
			Name:      "cache_invalidations_total",
			Help:      "Total number of pagination cache invalidations",
		},
		[]string{"reason"},
	)

	// ActiveViews tracks mounted listing views.
	ActiveViews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "phimgo",
			Name:      "active_views",
			Help:      "Number of mounted listing views",
		},
	)

	// SourceRequestsTotal counts upstream movie source requests by outcome.
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phimgo",
			Name:      "source_requests_total",
			Help:      "Total number of movie source requests",
		},
		[]string{"status"},
	)

	// JobRunsTotal counts scheduled job runs by job and outcome.
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phimgo",
			Name:      "job_runs_total",
			Help:      "Total number of scheduled job runs",
		},
		[]string{"job", "status"},
	)
)

// RecordStoreOp records one store read.
func RecordStoreOp(op, status string, duration float64) {
	StoreOpsTotal.WithLabelValues(op, status).Inc()
	StoreOpDuration.WithLabelValues(op).Observe(duration)
}

// RecordStale records a discarded response.
func RecordStale() {
	StaleResponsesTotal.Inc()
}

// RecordInvalidation records a pagination cache reset.
func RecordInvalidation(reason string) {
	CacheInvalidationsTotal.WithLabelValues(reason).Inc()
}

// RecordJob records a scheduled job run.
func RecordJob(job string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	JobRunsTotal.WithLabelValues(job, status).Inc()
}
