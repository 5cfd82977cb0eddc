package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/imh0ng/open-machina/internal/arbiter"
	"github.com/imh0ng/open-machina/internal/judge"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.Judge.APIKey != "" {
			shown.Judge.APIKey = "[REDACTED]"
		}

		out, err := yaml.Marshal(&shown)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		cmd.Print(string(out))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and probe judge readiness",
	Long: `Validate the loaded configuration and perform a dry judge resolution:
policy evaluation, catalog validation, and credential lookup, without
issuing a model call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := arbiter.NewService(cfg, arbiter.WithLogger(newLogger()))
		result := svc.Probe(cmd.Context())

		switch result.Status {
		case judge.ProbeReady:
			color.Green("judge: ready (%s)", result.Detail)
		case judge.ProbeUnconfigured:
			color.Yellow("judge: unconfigured (%s)", result.Detail)
			color.Yellow("arbitration will be skipped until a judge model is set")
		case judge.ProbeNoCredentials:
			color.Yellow("judge: no credentials (%s)", result.Detail)
		case judge.ProbeBlocked:
			color.Red("judge: blocked (%s)", result.Detail)
			return fmt.Errorf("judge configuration is blocked by policy")
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}
