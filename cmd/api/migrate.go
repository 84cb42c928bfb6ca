package main

import (
	"fmt"

	"contenthub-service/internal/config"
	"contenthub-service/internal/db"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE: withMigrator(func(m *db.Migrator, _ *zap.Logger) error {
			return m.Down(steps)
		}),
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: withMigrator(func(m *db.Migrator, _ *zap.Logger) error {
				return m.Up()
			}),
		},
		down,
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: withMigrator(func(m *db.Migrator, logger *zap.Logger) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				logger.Info("migration status", zap.Uint("version", v), zap.Bool("dirty", dirty))
				fmt.Printf("version=%d dirty=%t\n", v, dirty)
				return nil
			}),
		},
	)

	return cmd
}

func withMigrator(fn func(*db.Migrator, *zap.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		cmd.SilenceUsage = true
		return fn(db.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, logger), logger)
	}
}
