package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/config"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/persistence/sqlite"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the SQLite schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, _, err := config.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := sqlite.Open(cfg.SQLitePath, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Debug("Migration finished", zap.String("path", cfg.SQLitePath))
			fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s\n", cfg.SQLitePath)
			return nil
		},
	}
}
