package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show replica row counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	addReplicaFlags(statsCmd)
	statsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func runStats(cmd *cobra.Command, args []string) error {
	s, _, err := openReplica()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.GetStats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, stats)
	}

	last := "-"
	if stats.LastReplicaUpdate != nil {
		last = *stats.LastReplicaUpdate
	}

	w := newTabWriter(out)
	fmt.Fprintln(w, "TABLE\tROWS")
	fmt.Fprintf(w, "restaurants\t%d\n", stats.Restaurants)
	fmt.Fprintf(w, "suppliers\t%d\n", stats.Suppliers)
	fmt.Fprintf(w, "supplier_relationships\t%d\n", stats.SupplierRelationships)
	fmt.Fprintf(w, "allergen_protocols\t%d\n", stats.AllergenProtocols)
	fmt.Fprintf(w, "disclaimer_acceptances\t%d\n", stats.DisclaimerAcceptances)
	w.Flush()

	fmt.Fprintf(out, "\nLast replica update: %s\n", last)
	return nil
}
