package worker

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/hyperengineering/edgereplica/internal/metrics"
)

// SnapshotFileName is the local file each cycle writes under the snapshot directory.
const SnapshotFileName = "replica.db"

// SnapshotStore defines the store operations needed by the snapshot worker.
type SnapshotStore interface {
	Snapshot(ctx context.Context, dest string) error
}

// SnapshotUploader publishes a finished snapshot file.
type SnapshotUploader interface {
	Upload(ctx context.Context, filePath string) error
}

// ReplicaSnapshotWorker periodically writes a replica snapshot and publishes it.
type ReplicaSnapshotWorker struct {
	store    SnapshotStore
	uploader SnapshotUploader
	dir      string
	interval time.Duration
}

// NewReplicaSnapshotWorker creates a worker that snapshots into dir every interval.
func NewReplicaSnapshotWorker(store SnapshotStore, uploader SnapshotUploader, dir string, interval time.Duration) *ReplicaSnapshotWorker {
	return &ReplicaSnapshotWorker{
		store:    store,
		uploader: uploader,
		dir:      dir,
		interval: interval,
	}
}

// Run starts the worker loop. Generates a snapshot immediately on start,
// then on each interval. Respects context cancellation for graceful shutdown.
func (w *ReplicaSnapshotWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "replica-snapshot",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "replica-snapshot",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce writes and publishes one snapshot. It returns the local path on
// success and "" on failure.
func (w *ReplicaSnapshotWorker) RunOnce(ctx context.Context) string {
	start := time.Now()
	dest := filepath.Join(w.dir, SnapshotFileName)

	if err := w.store.Snapshot(ctx, dest); err != nil {
		w.failed(ctx, "snapshot_failed", err)
		return ""
	}
	if err := w.uploader.Upload(ctx, dest); err != nil {
		w.failed(ctx, "upload_failed", err)
		return ""
	}

	metrics.SnapshotsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	slog.Info("snapshot published",
		"component", "worker",
		"action", "snapshot_complete",
		"path", dest,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return dest
}

func (w *ReplicaSnapshotWorker) failed(ctx context.Context, action string, err error) {
	// Check if it's a context cancellation (graceful shutdown)
	if ctx.Err() != nil {
		return
	}
	metrics.SnapshotsTotal.WithLabelValues(metrics.StatusFailed).Inc()
	slog.Warn("snapshot cycle failed",
		"component", "worker",
		"action", action,
		"error", err,
	)
}
