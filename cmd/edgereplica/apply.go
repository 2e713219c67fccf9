package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hyperengineering/edgereplica/internal/cdc"
	"github.com/hyperengineering/edgereplica/internal/translator"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <event.json>",
	Short: "Apply a change event file to the replica",
	Long: "Translate and apply one change event exactly as the sync webhook would. " +
		"Use - to read the event from stdin.",
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	addReplicaFlags(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open event: %w", err)
		}
		defer f.Close()
		in = f
	}

	ev, err := cdc.Decode(in)
	if err != nil {
		return err
	}

	stmt, err := translator.Translate(ev, time.Now())
	if err != nil {
		return err
	}

	s, _, err := openReplica()
	if err != nil {
		return err
	}
	defer s.Close()

	affected, err := s.Apply(cmd.Context(), stmt)
	if err != nil {
		return fmt.Errorf("apply %s %s: %w", ev.Type, ev.Table, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Applied %s on %s (%d row(s) affected)\n", ev.Type, ev.Table, affected)
	return nil
}
