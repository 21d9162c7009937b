package trends

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClusterRunsTotal tracks pipeline runs by outcome
	ClusterRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vectrend_cluster_runs_total",
			Help: "The total number of clustering pipeline runs",
		},
		[]string{"status"},
	)

	// ClusterErrors tracks pipeline failures by error type
	ClusterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vectrend_cluster_errors_total",
			Help: "The total number of clustering pipeline errors",
		},
		[]string{"stage", "error_type"},
	)

	// StageDuration tracks how long each pipeline stage takes
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vectrend_stage_duration_seconds",
			Help:    "The duration of clustering pipeline stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 18), // From 100µs to ~13s
		},
		[]string{"stage"},
	)

	// RecordsPerRun tracks the size of clustered batches
	RecordsPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vectrend_records_per_run",
			Help:    "The number of records clustered per run",
			Buckets: prometheus.ExponentialBuckets(4, 2, 12), // From 4 to ~8k
		},
	)

	// ClustersPerRun tracks how many clusters each run produced
	ClustersPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vectrend_clusters_per_run",
			Help:    "The number of non-empty clusters produced per run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// MeanSilhouette tracks the overall silhouette score of the latest run
	MeanSilhouette = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vectrend_mean_silhouette",
			Help: "Mean silhouette score of the most recent clustering run",
		},
	)
)
