package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-scheduler/internal/platform/logger"
	"github.com/phrazzld/scry-scheduler/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate {up|up-by-one|down|redo|reset|status|version}",
		Short: "Apply or inspect the database schema migrations",
		Long: `migrate runs a goose command against the migrations embedded in the
binary. The database URL is read from database.url or SCRY_DATABASE_URL.`,
		ValidArgs: []string{"up", "up-by-one", "down", "redo", "reset", "status", "version"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			db, err := postgres.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("error closing database connection", slog.String("error", err.Error()))
				}
			}()

			log.Info("executing migrations", slog.String("command", args[0]))
			if err := postgres.Migrate(cmd.Context(), db, log, args[0]); err != nil {
				return err
			}
			log.Info("migrations finished", slog.String("command", args[0]))
			return nil
		},
	}
}
