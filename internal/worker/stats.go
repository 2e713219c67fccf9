package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hyperengineering/edgereplica/internal/metrics"
	"github.com/hyperengineering/edgereplica/internal/store"
)

// StatsStore defines the store operations needed by the stats worker.
type StatsStore interface {
	GetStats(ctx context.Context) (*store.Stats, error)
}

// ReplicaStatsWorker periodically publishes replica row counts as gauges.
type ReplicaStatsWorker struct {
	store    StatsStore
	interval time.Duration
}

// NewReplicaStatsWorker creates a worker with the given store and interval.
func NewReplicaStatsWorker(s StatsStore, interval time.Duration) *ReplicaStatsWorker {
	return &ReplicaStatsWorker{
		store:    s,
		interval: interval,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Runs once immediately so gauges are populated before the first tick.
func (w *ReplicaStatsWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "replica-stats",
		"interval", w.interval.String(),
	)

	w.collect(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "replica-stats",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.collect(ctx)
		}
	}
}

// collect executes a single stats cycle.
func (w *ReplicaStatsWorker) collect(ctx context.Context) {
	stats, err := w.store.GetStats(ctx)
	if err != nil {
		// Check for graceful shutdown
		if ctx.Err() != nil {
			return
		}
		slog.Warn("replica stats failed",
			"component", "worker",
			"action", "stats_failed",
			"error", err,
		)
		return
	}

	metrics.ReplicaRows.WithLabelValues("restaurants").Set(float64(stats.Restaurants))
	metrics.ReplicaRows.WithLabelValues("suppliers").Set(float64(stats.Suppliers))
	metrics.ReplicaRows.WithLabelValues("supplier_relationships").Set(float64(stats.SupplierRelationships))
	metrics.ReplicaRows.WithLabelValues("allergen_protocols").Set(float64(stats.AllergenProtocols))
	metrics.ReplicaRows.WithLabelValues("disclaimer_acceptances").Set(float64(stats.DisclaimerAcceptances))

	slog.Debug("replica stats collected",
		"component", "worker",
		"action", "stats_complete",
		"restaurants", stats.Restaurants,
	)
}
