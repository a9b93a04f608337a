package schema

import "time"

type Config struct {
	MigrationsTable string        `env:"TENANT_MIGRATIONS_TABLE" envDefault:"schema_migrations"` // MigrationsTable is the per-schema table tracking applied migration versions.
	LockTimeout     time.Duration `env:"TENANT_SCHEMA_LOCK_TIMEOUT" envDefault:"30s"`            // LockTimeout bounds the wait for the cross-instance schema lock.
	EnableDrop      bool          `env:"TENANT_SCHEMA_ENABLE_DROP" envDefault:"false"`           // EnableDrop arms DropSchema; it stays refused unless explicitly enabled.
}

// Options translates the env-driven config into manager options.
func (c Config) Options() []Option {
	opts := []Option{
		WithMigrationsTable(c.MigrationsTable),
		WithLockTimeout(c.LockTimeout),
	}
	if c.EnableDrop {
		opts = append(opts, WithDropEnabled())
	}
	return opts
}
