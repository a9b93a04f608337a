package pg

import (
	"context"
	"errors"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// logger is the slog surface migration progress is reported through.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// Migrate applies the registry migrations embedded in fsys to the
// shared schema. Tenant schemas are migrated separately, each against
// its own version table; this only touches the registry's tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, cfg Config, log logger) error {
	if fsys == nil {
		return errors.Join(ErrFailedToApplyMigrations, ErrNoMigrationsFS)
	}

	// goose speaks database/sql; the wrapper shares the pool's connections.
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration db handle", "error", err)
		}
	}()

	store, err := database.NewStore(database.DialectPostgres, cfg.MigrationsTable)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	// The dialect must stay empty when a custom store is supplied.
	provider, err := goose.NewProvider("", db, fsys, goose.WithStore(store))
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	for _, res := range results {
		if res.Empty {
			continue
		}
		log.InfoContext(ctx, "registry migration applied",
			"migration", res.Source.Path, "duration", res.Duration)
	}
	return nil
}
