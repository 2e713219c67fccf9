package main

import (
	"fmt"

	"github.com/hyperengineering/edgereplica/internal/snapshot"
	"github.com/hyperengineering/edgereplica/internal/store"
	"github.com/hyperengineering/edgereplica/internal/worker"
	"github.com/spf13/cobra"
)

var snapshotDirOverride string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write and publish a replica snapshot",
	Long: "Write a compacted copy of the replica to the snapshot directory and, " +
		"when snapshot storage is configured, upload it and print a download link.",
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	addReplicaFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapshotDirOverride, "dir", "",
		"Snapshot directory (overrides config and EDGEREPLICA_SNAPSHOT_DIR)")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadOfflineConfig()
	if err != nil {
		return err
	}
	if snapshotDirOverride != "" {
		cfg.Snapshot.Dir = snapshotDirOverride
	}

	uploader, err := snapshot.NewUploader(cfg.Snapshot)
	if err != nil {
		return err
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	w := worker.NewReplicaSnapshotWorker(s, uploader, cfg.Snapshot.Dir, 0)
	path := w.RunOnce(ctx)
	if path == "" {
		return fmt.Errorf("snapshot of %s failed", cfg.Database.Path)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Snapshot written to %s\n", path)

	link, expiry, err := uploader.PresignedURL(ctx)
	if err != nil {
		// Local-only mode has no link to print.
		return nil
	}
	fmt.Fprintf(out, "Download: %s\nExpires:  %s\n", link, expiry.Format("2006-01-02 15:04:05 MST"))
	return nil
}
