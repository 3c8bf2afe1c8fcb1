package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ContainerOpensTotal counts file-index containers successfully parsed by
// fileindex.Open.
var ContainerOpensTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "fileindex_container_opens_total",
		Help: "File-index containers opened for reading.",
	},
)

// ColumnIndexReadsByKind counts readers constructed by
// Container.ReadColumnIndex, by index kind (bitmap, bloomfilter, bsi, ...).
var ColumnIndexReadsByKind = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fileindex_column_index_reads_total",
		Help: "Column index readers constructed, by index kind.",
	},
	[]string{"index_kind"},
)

// PredicateEvaluationsByResult counts leaf-predicate Evaluate calls, by
// index kind and outcome (skip, remain, or a forced bitmap).
var PredicateEvaluationsByResult = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fileindex_predicate_evaluations_total",
		Help: "Leaf predicate evaluations against a reader, by index kind and outcome.",
	},
	[]string{"index_kind", "result"},
)

// EvaluationLatencyHistogram times one reader's Evaluate call, by index
// kind.
var EvaluationLatencyHistogram = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "fileindex_evaluation_latency_seconds",
		Help:    "Latency of one reader's Evaluate call.",
		Buckets: prometheus.ExponentialBuckets(0.000001, 10, 10),
	},
	[]string{"index_kind"},
)

// BucketAssignmentsByMode counts bucket ids computed by
// bucket.Calculator.CalculateBucketID, by bucket mode.
var BucketAssignmentsByMode = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fileindex_bucket_assignments_total",
		Help: "Bucket ids computed, by bucket mode.",
	},
	[]string{"mode"},
)

// Version reports this binary's build information, matching the teacher's
// own process-wide version gauge.
var Version = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "version",
		Help: "Version information of this binary",
	},
	[]string{"started_at", "tag", "commit", "compiler", "goarch", "goos", "goamd64", "vcs", "vcs_revision", "vcs_time", "vcs_modified"},
)
