package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long:  "Applies all pending postgres migrations, or reverts them with --down. The sqlite schema is created when the database is opened.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		down, err := cmd.Flags().GetBool("down")
		if err != nil {
			return err
		}

		if cfg.Db.Mode == dbModeSQLite {
			s, err := newSQLite()
			if err != nil {
				return err
			}
			closeStore(s)

			logger.Info("SQLite schema is up to date", slog.String("path", cfg.Db.Sqlite.Path))
			return nil
		}

		p, err := newPostgres()
		if err != nil {
			return err
		}
		defer closeStore(p)

		if down {
			err = p.MigrateDown()
			if err != nil {
				return fmt.Errorf("failed to revert migrations: %w", err)
			}

			logger.Info("Migrations reverted")
			return nil
		}

		err = p.MigrateUp()
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}

		logger.Info("Migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("down", false, "Revert all migrations")
}
