package schema

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// DefaultMigrationsTable is the per-schema table goose tracks applied
// versions in.
const DefaultMigrationsTable = "schema_migrations"

// querier covers the pool surface used for DDL and existence checks.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// db is the pool seam. Advisory locks are session-scoped, so the lock
// path needs a dedicated connection rather than pool-level Exec.
type db interface {
	querier
	AcquireLockConn(ctx context.Context) (lockConn, error)
}

type lockConn interface {
	querier
	Release()
}

// migrator applies tenant migrations inside one schema. Production uses
// the goose-backed implementation in migrator.go.
type migrator interface {
	up(ctx context.Context, schemaName string) (int, error)
	version(ctx context.Context, schemaName string) (int64, error)
}

// Manager drives the lifecycle of tenant schemas: creation, migration
// and (double-latched) removal. Operations on the same schema name are
// serialized in-process with a keyed mutex and across instances with a
// PostgreSQL advisory lock, so two provisioners can never run
// migrations in one schema concurrently.
type Manager struct {
	db          db
	runner      migrator
	locks       *keyedMutex
	table       string
	lockTimeout time.Duration
	dropEnabled bool
	log         *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithMigrationsTable overrides the version-tracking table name.
func WithMigrationsTable(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.table = name
		}
	}
}

// WithLockTimeout bounds how long an operation waits for the schema
// lock held by another instance.
func WithLockTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.lockTimeout = d
		}
	}
}

// WithDropEnabled arms DropSchema. Without this option every drop
// attempt fails with ErrDropDisabled regardless of confirmation.
func WithDropEnabled() Option {
	return func(m *Manager) {
		m.dropEnabled = true
	}
}

// WithLogger sets a custom logger for the manager.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates a Manager applying migrations from the given filesystem
// (typically an embed.FS with the tenant migration SQL).
func New(pool *pgxpool.Pool, migrations fs.FS, opts ...Option) (*Manager, error) {
	m := newManager(poolAdapter{pool: pool}, nil, opts...)
	if err := tenant.ValidateSchemaName(m.table); err != nil {
		return nil, errors.Join(err, errors.New("invalid migrations table name"))
	}
	m.runner = &gooseMigrator{
		connConfig: pool.Config().ConnConfig,
		fsys:       migrations,
		table:      m.table,
	}
	return m, nil
}

func newManager(db db, runner migrator, opts ...Option) *Manager {
	m := &Manager{
		db:          db,
		runner:      runner,
		locks:       newKeyedMutex(),
		table:       DefaultMigrationsTable,
		lockTimeout: 30 * time.Second,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateSchema creates the schema if it does not exist and brings it to
// the latest migration version. The operation is idempotent: calling it
// for an existing schema only applies pending migrations. Registry
// status transitions are the caller's concern.
func (m *Manager) CreateSchema(ctx context.Context, schemaName string) error {
	if err := tenant.ValidateSchemaName(schemaName); err != nil {
		return err
	}

	return m.withSchemaLock(ctx, schemaName, func(ctx context.Context) error {
		if _, err := m.db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdentifier(schemaName)); err != nil {
			return errors.Join(ErrCreateFailed, err)
		}
		m.log.InfoContext(ctx, "schema ensured", "schema", schemaName)
		return m.migrateLocked(ctx, schemaName)
	})
}

// MigrateSchema applies pending migrations to an existing schema.
// Unlike CreateSchema it refuses to conjure the schema into existence:
// a missing schema means the registry and the database disagree, which
// must surface, not self-heal.
func (m *Manager) MigrateSchema(ctx context.Context, schemaName string) error {
	if err := tenant.ValidateSchemaName(schemaName); err != nil {
		return err
	}

	return m.withSchemaLock(ctx, schemaName, func(ctx context.Context) error {
		exists, err := m.schemaExists(ctx, schemaName)
		if err != nil {
			return errors.Join(ErrMigrateFailed, err)
		}
		if !exists {
			return errors.Join(ErrSchemaNotFound, errors.New("schema "+schemaName))
		}
		return m.migrateLocked(ctx, schemaName)
	})
}

func (m *Manager) migrateLocked(ctx context.Context, schemaName string) error {
	applied, err := m.runner.up(ctx, schemaName)
	if err != nil {
		return errors.Join(ErrMigrateFailed, err)
	}
	if applied > 0 {
		m.log.InfoContext(ctx, "migrations applied", "schema", schemaName, "count", applied)
	}
	return nil
}

// DropSchema irreversibly removes a schema and all its data. Two
// independent latches guard it: the manager must have been constructed
// with WithDropEnabled, and confirm must repeat the exact schema name.
func (m *Manager) DropSchema(ctx context.Context, schemaName, confirm string) error {
	if err := tenant.ValidateSchemaName(schemaName); err != nil {
		return err
	}
	if !m.dropEnabled {
		return ErrDropDisabled
	}
	if confirm != schemaName {
		return ErrDropNotConfirmed
	}

	return m.withSchemaLock(ctx, schemaName, func(ctx context.Context) error {
		if _, err := m.db.Exec(ctx, "DROP SCHEMA IF EXISTS "+quoteIdentifier(schemaName)+" CASCADE"); err != nil {
			return errors.Join(ErrDropFailed, err)
		}
		m.log.WarnContext(ctx, "schema dropped", "schema", schemaName)
		return nil
	})
}

// Version reports the current migration version of a schema.
func (m *Manager) Version(ctx context.Context, schemaName string) (int64, error) {
	if err := tenant.ValidateSchemaName(schemaName); err != nil {
		return 0, err
	}
	exists, err := m.schemaExists(ctx, schemaName)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, errors.Join(ErrSchemaNotFound, errors.New("schema "+schemaName))
	}
	return m.runner.version(ctx, schemaName)
}

func (m *Manager) schemaExists(ctx context.Context, schemaName string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)",
		schemaName,
	).Scan(&exists)
	return exists, err
}

// quoteIdentifier quotes a validated schema name for DDL statements,
// which cannot take bind parameters.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// poolAdapter implements the db seam on a pgx pool.
type poolAdapter struct {
	pool *pgxpool.Pool
}

func (a poolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.pool.Exec(ctx, sql, args...)
}

func (a poolAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.pool.QueryRow(ctx, sql, args...)
}

func (a poolAdapter) AcquireLockConn(ctx context.Context) (lockConn, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return poolLockConn{conn: conn}, nil
}

type poolLockConn struct {
	conn *pgxpool.Conn
}

func (c poolLockConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c poolLockConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c poolLockConn) Release() {
	c.conn.Release()
}
