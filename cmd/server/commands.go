package main

import (
	"fmt"

	"github.com/phrazzld/scry-scheduler/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "scry-scheduler",
		Short: "FSRS spaced-repetition scheduler",
		Long: `scry-scheduler decides when each flashcard should be reviewed again.

It serves the scheduling HTTP API, manages the PostgreSQL schema and
projects future review load for a set of cards.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"path to a YAML config file (default: ./config.yaml when present)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newForecastCmd(opts),
	)
	return cmd
}

// loadConfig loads the configuration from the --config file, ./config.yaml and
// SCRY_ environment variables.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
