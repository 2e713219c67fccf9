package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply replica migrations",
	Long:  "Create or upgrade the replica schema without starting the server.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	addReplicaFlags(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	s, path, err := openReplica()
	if err != nil {
		return err
	}
	defer s.Close()

	version, err := s.SchemaVersion(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Replica %s at schema v%d\n", path, version)
	return nil
}
