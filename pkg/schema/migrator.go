package schema

import (
	"context"
	"database/sql"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

// gooseMigrator runs goose migrations inside a single tenant schema.
//
// goose itself is schema-oblivious: it migrates whatever the
// connection's search_path points at and keeps its version table there.
// Bending that to schema-per-tenant means opening a dedicated
// database/sql handle whose every connection binds to the target schema
// before use. The version table then lives inside the tenant schema, so
// each tenant tracks its own migration state.
type gooseMigrator struct {
	connConfig *pgx.ConnConfig
	fsys       fs.FS
	table      string
}

func (g *gooseMigrator) up(ctx context.Context, schemaName string) (int, error) {
	db := g.openSchemaDB(schemaName)
	defer func() { _ = db.Close() }()

	provider, err := g.newProvider(db)
	if err != nil {
		return 0, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, res := range results {
		if !res.Empty {
			applied++
		}
	}
	return applied, nil
}

func (g *gooseMigrator) version(ctx context.Context, schemaName string) (int64, error) {
	db := g.openSchemaDB(schemaName)
	defer func() { _ = db.Close() }()

	provider, err := g.newProvider(db)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

// openSchemaDB bridges pgx to the database/sql interface goose expects,
// with an AfterConnect hook that pins every new connection to the
// target schema.
func (g *gooseMigrator) openSchemaDB(schemaName string) *sql.DB {
	cfg := g.connConfig.Copy()
	return stdlib.OpenDB(*cfg, stdlib.OptionAfterConnect(func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SELECT set_config('search_path', $1, false)", schemaName)
		return err
	}))
}

func (g *gooseMigrator) newProvider(db *sql.DB) (*goose.Provider, error) {
	store, err := database.NewStore(database.DialectPostgres, g.table)
	if err != nil {
		return nil, err
	}
	// The dialect must stay empty when a custom store is supplied.
	return goose.NewProvider("", db, g.fsys, goose.WithStore(store))
}
