package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hyperengineering/edgereplica/internal/config"
	"github.com/hyperengineering/edgereplica/internal/store"
	"github.com/spf13/cobra"
)

var (
	dbPathOverride string
	jsonOutput     bool
)

// addReplicaFlags registers the flags shared by the offline replica commands.
func addReplicaFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dbPathOverride, "db", "",
		"Replica database path (overrides config and EDGEREPLICA_DB_PATH)")
}

// loadOfflineConfig loads configuration for commands that do not serve
// traffic, applying the --db override.
func loadOfflineConfig() (*config.Config, error) {
	cfg, err := config.LoadOffline()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dbPathOverride != "" {
		cfg.Database.Path = dbPathOverride
	}
	return cfg, nil
}

// openReplica opens the replica from config with optional --db override.
// Opening runs pending migrations.
func openReplica() (*store.SQLiteStore, string, error) {
	cfg, err := loadOfflineConfig()
	if err != nil {
		return nil, "", err
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, "", err
	}
	return s, cfg.Database.Path, nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
