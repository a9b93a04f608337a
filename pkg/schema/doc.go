// Package schema manages the lifecycle of tenant schemas in a
// schema-per-tenant PostgreSQL database: creating them, migrating them
// with goose, and dropping them behind a double latch.
//
// Concurrent operations on the same schema name are serialized twice
// over: a keyed mutex covers goroutines within one process, and a
// PostgreSQL advisory lock (derived deterministically from the schema
// name) covers other instances sharing the database. Operations on
// different schemas proceed in parallel.
//
// Migrations come from an fs.FS, usually the embedded tenant migration
// directory. Each schema carries its own goose version table, so
// tenants migrate independently and a half-migrated fleet is a normal,
// observable state.
//
// Dropping sits behind two latches: the manager must be constructed
// with WithDropEnabled, and the caller must repeat the schema name as
// confirmation. Soft deletion lives in the registry; this package only
// ever touches physical schemas.
package schema
