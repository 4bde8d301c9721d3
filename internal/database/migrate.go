package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Direction selects which goose command Migrate runs
type Direction string

const (
	MigrateUp     Direction = "up"
	MigrateDown   Direction = "down"
	MigrateStatus Direction = "status"
)

// gooseRun is a seam for tests
var gooseRun = func(ctx context.Context, db *sql.DB, command string) error {
	return goose.RunContext(ctx, command, db, "migrations")
}

// Migrate applies the embedded schema migrations
func Migrate(ctx context.Context, db *sql.DB, direction Direction) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	switch direction {
	case MigrateUp, MigrateDown, MigrateStatus:
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}

	if err := gooseRun(ctx, db, string(direction)); err != nil {
		return fmt.Errorf("failed to run migrations %s: %w", direction, err)
	}

	return nil
}
