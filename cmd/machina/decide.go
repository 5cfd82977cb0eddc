package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/imh0ng/open-machina/internal/arbiter"
)

var decideSnapshotFile string

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Run one arbitration decision for a snapshot",
	Long: `Run a single arbitration decision against the configured judge and
print the validated decision as JSON.

The session snapshot is read as a JSON object from --snapshot or stdin.
Recognized keys: userMessage (required), timestamp, intent, persona,
activeWork, systemHealth. Unknown keys are ignored.

Example:
  echo '{"userMessage":"stop the deploy"}' | machina decide`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readSnapshot()
		if err != nil {
			return err
		}

		var snapshot map[string]any
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			return fmt.Errorf("snapshot is not a JSON object: %w", err)
		}

		svc := arbiter.NewService(cfg, arbiter.WithLogger(newLogger()))
		out, err := svc.RunDecision(cmd.Context(), snapshot)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func readSnapshot() ([]byte, error) {
	if decideSnapshotFile != "" && decideSnapshotFile != "-" {
		return os.ReadFile(decideSnapshotFile)
	}
	return io.ReadAll(os.Stdin)
}

func init() {
	decideCmd.Flags().StringVar(&decideSnapshotFile, "snapshot", "", "Path to snapshot JSON file (default stdin)")
}
