package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/osse101/FlightShop_Go/internal/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate brings the flight schema up to date for the given dialect.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	gd, err := d.gooseDialect()
	if err != nil {
		return err
	}

	dir, err := fs.Sub(migrationsFS, "migrations/"+string(d))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToLoadMigrations, err)
	}

	provider, err := goose.NewProvider(gd, db, dir)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToLoadMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToMigrate, err)
	}

	logger.FromContext(ctx).Info(LogMsgMigrationsApplied, "dialect", string(d), "applied", len(results))
	return nil
}
