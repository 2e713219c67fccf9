// Package metrics provides Prometheus metrics for the edge replica service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncEventsTotal tracks change events by upstream table, event type and outcome.
	SyncEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgereplica",
			Name:      "sync_events_total",
			Help:      "Total number of change events received by table, type and status",
		},
		[]string{"table", "type", "status"},
	)

	// AlertsTotal tracks alert deliveries by severity and outcome.
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgereplica",
			Name:      "alerts_total",
			Help:      "Total number of alert deliveries by severity and status",
		},
		[]string{"severity", "status"},
	)

	// SearchDuration tracks replica search latency in seconds.
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "edgereplica",
			Name:      "search_duration_seconds",
			Help:      "Duration of restaurant searches against the replica in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	// SnapshotsTotal tracks replica snapshot cycles by outcome.
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgereplica",
			Name:      "snapshots_total",
			Help:      "Total number of replica snapshot cycles by status",
		},
		[]string{"status"},
	)

	// ReplicaRows tracks row counts per replica table.
	ReplicaRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edgereplica",
			Name:      "replica_rows",
			Help:      "Number of rows in each replica table",
		},
		[]string{"table"},
	)
)

// Sync event statuses.
const (
	StatusSuccess  = "success"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)
