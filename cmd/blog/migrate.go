package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-blog/internal/config"
	"github.com/redmonkez12/go-blog/internal/database"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	for _, direction := range []database.Direction{database.MigrateUp, database.MigrateDown, database.MigrateStatus} {
		migrateCmd.AddCommand(&cobra.Command{
			Use:   string(direction),
			Short: migrateDescriptions[direction],
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd, direction)
			},
		})
	}

	return migrateCmd
}

var migrateDescriptions = map[database.Direction]string{
	database.MigrateUp:     "Apply all pending migrations",
	database.MigrateDown:   "Roll back the most recent migration",
	database.MigrateStatus: "Show which migrations are applied",
}

func runMigrate(cmd *cobra.Command, direction database.Direction) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)
	defer logger.Sync() //nolint:errcheck

	sqlDB, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer sqlDB.Close()

	logger.Info("running migrations", "direction", string(direction), "database", cfg.Database.DBName)
	if err := database.Migrate(cmd.Context(), sqlDB, direction); err != nil {
		return err
	}

	if direction != database.MigrateStatus {
		printSuccess(fmt.Sprintf("Migrations %s complete", direction))
	}
	return nil
}
