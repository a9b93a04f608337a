package pg

import "time"

// Config tunes the shared registry pool. Every instance of the service
// talks to one PostgreSQL database; tenant isolation happens at the
// schema level, not with separate databases or pools.
type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL,required"`                   // Full pgx connection URL.
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`      // Pool ceiling; shared by all tenants.
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`       // Connections kept warm between bursts.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`  // How often the pool probes idle connections.
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"` // Idle time before a connection is closed.
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`  // Hard cap on connection age.

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`  // Connection attempts before Connect gives up.
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"` // Base wait between attempts; attempt n waits n times this.

	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"` // Version table for registry migrations in the shared schema.
}
