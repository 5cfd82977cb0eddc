package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/imh0ng/open-machina/internal/config"
	"github.com/imh0ng/open-machina/internal/observability"
)

var (
	configPath string
	verbose    bool

	// cfg is populated by the persistent pre-run before any subcommand
	// executes.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "machina",
	Short: "Machina - autonomy arbitration for agent sessions",
	Long: `Machina decides whether in-progress autonomous agent work should be
aborted, deferred, parallelized, or continued when a new user message
arrives. The host runtime embeds it as a library; this CLI exposes the
raw decision operation and configuration diagnostics.`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = os.Getenv("MACHINA_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath()
	}

	loaded, err := config.LoadWithDefaults(path)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// newLogger builds the CLI logger from the loaded configuration; --verbose
// forces debug.
func newLogger() *slog.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(os.Stderr, level)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "machina.yaml"
	}
	return filepath.Join(home, ".config", "machina", "machina.yaml")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to machina.yaml (default ~/.config/machina/machina.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
