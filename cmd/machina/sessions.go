package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imh0ng/open-machina/internal/arbiter"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions <session-id>",
	Short: "Print a session's deferred/parallel queue snapshot",
	Long: `Print the deferred and parallel queues for a session as JSON.

Session state lives inside the embedding host process; a standalone CLI
process starts empty. This command exists for hosts that expose machina's
CLI against their own service instance and for scripting against the
snapshot shape.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := arbiter.NewService(cfg, arbiter.WithLogger(newLogger()))
		snapshot := svc.SessionSnapshot(args[0])

		out, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render snapshot: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
