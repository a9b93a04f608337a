// Package pg bootstraps the shared PostgreSQL layer: connection
// pooling, registry migrations, health checks, and error classification
// helpers on top of the pgx/v5 driver.
//
// The package owns the connection every other layer builds on. The
// registry stores tenant metadata through it, pkg/tenantdb wraps the
// same pool with schema routing, and pkg/schema borrows connections for
// advisory locks. It deliberately knows nothing about tenants itself.
//
// # Usage
//
//	var cfg pg.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    panic(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.Registry(), cfg, slog.Default()); err != nil {
//	    panic(err)
//	}
//
// Connect retries until the database accepts connections, so instance
// and database restarts can happen in any order. Migrate applies the
// embedded registry migrations through goose; per-tenant schema
// migrations are pkg/schema's job and never pass through here.
//
// # Error Handling
//
// Helpers such as [IsDuplicateKeyError] and [IsNotFoundError] classify
// pgx errors so business logic can branch without reaching into
// *pgconn.PgError.
package pg
