package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Proposal/commit metrics (the guard + decision-policy pipeline)
	ProposalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentineldb_proposals_total",
			Help: "Total number of write proposals evaluated",
		},
		[]string{"verdict"},
	)

	ProposalEvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentineldb_proposal_evaluation_duration_seconds",
			Help:    "Guard evaluation latencies for a single proposal",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"verdict"},
	)

	CommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentineldb_commits_total",
			Help: "Total number of writes committed to the store",
		},
		[]string{"operation"},
	)

	// Guard metrics
	GuardEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentineldb_guard_evaluations_total",
			Help: "Total number of individual guard evaluations",
		},
		[]string{"guard_type", "passed"},
	)

	GuardsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentineldb_guards_registered",
			Help: "Number of guards currently registered on the engine",
		},
	)

	// Store metrics
	StoreKeysTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentineldb_store_keys_total",
			Help: "Number of distinct keys currently held in the store",
		},
	)

	StoreVersionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentineldb_store_versions_total",
			Help: "Total number of versions retained across all keys",
		},
	)

	RetentionPrunedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentineldb_retention_pruned_total",
			Help: "Total number of versions pruned by the retention policy",
		},
		[]string{"key"},
	)

	// WAL metrics
	WALWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentineldb_wal_writes_total",
			Help: "Total number of records appended to the write-ahead log",
		},
		[]string{"record_type", "status"},
	)

	WALDisabledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentineldb_wal_disabled_total",
			Help: "Total number of times the WAL was disabled after an I/O error",
		},
	)

	// Snapshot metrics
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentineldb_snapshots_total",
			Help: "Total number of snapshots written",
		},
		[]string{"status"},
	)

	SnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentineldb_snapshot_duration_seconds",
			Help:    "Snapshot write latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SnapshotSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentineldb_snapshot_size_bytes",
			Help: "Size in bytes of the most recently written snapshot",
		},
	)

	// Recovery metrics
	RecoveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentineldb_recovery_duration_seconds",
			Help:    "Time taken to replay snapshot and WAL on startup",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	RecoveryRecordsReplayedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentineldb_recovery_records_replayed_total",
			Help: "Total number of WAL records replayed during recovery",
		},
		[]string{"record_type"},
	)

	RecoveryMalformedLinesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentineldb_recovery_malformed_lines_total",
			Help: "Total number of malformed WAL lines skipped during recovery",
		},
	)

	// Build info
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentineldb_build_info",
			Help: "Build information about SentinelDB",
		},
		[]string{"version", "go_version"},
	)
)
