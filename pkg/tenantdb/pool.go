package tenantdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// DefaultSchema is the neutral schema connections are reset to before
// they are returned to the pool.
const DefaultSchema = "public"

// Pool wraps a pgx connection pool and hands out connections bound to a
// tenant schema. Binding sets search_path on the acquired connection and
// verifies it took effect; releasing resets search_path to the neutral
// default. A connection whose reset or bind fails is destroyed rather
// than returned, so pooled connections can never carry one tenant's
// search_path into another tenant's unit of work.
type Pool struct {
	db            acquirer
	defaultSchema string
	verify        bool
	log           *slog.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithDefaultSchema changes the neutral schema connections are reset to
// on release. The name is validated by New.
func WithDefaultSchema(name string) Option {
	return func(p *Pool) {
		p.defaultSchema = name
	}
}

// WithoutVerification skips the current_schema() round trip after
// binding. The bind itself still runs; only the read-back is dropped.
// Use this when the extra query per acquisition matters more than
// detecting dropped or renamed schemas at bind time.
func WithoutVerification() Option {
	return func(p *Pool) {
		p.verify = false
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// New creates a schema-routing pool on top of an established pgx pool.
func New(pool *pgxpool.Pool, opts ...Option) (*Pool, error) {
	return newPool(pgxPool{pool: pool}, opts...)
}

func newPool(db acquirer, opts ...Option) (*Pool, error) {
	p := &Pool{
		db:            db,
		defaultSchema: DefaultSchema,
		verify:        true,
		log:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := tenant.ValidateSchemaName(p.defaultSchema); err != nil {
		return nil, err
	}
	return p, nil
}

// Acquire checks out a connection bound to the given schema. The caller
// must release the connection when done:
//
//	conn, err := pool.Acquire(ctx, schemaName)
//	if err != nil {
//		return err
//	}
//	defer conn.Release(ctx)
//
// The schema name is validated before it touches SQL. After binding,
// the pool reads current_schema() back: a missing schema surfaces as
// ErrSchemaNotFound (PostgreSQL accepts a search_path pointing at a
// nonexistent schema without complaint), any other discrepancy as
// ErrSchemaMismatch. In both cases the connection is destroyed.
func (p *Pool) Acquire(ctx context.Context, schemaName string) (*Conn, error) {
	if err := tenant.ValidateSchemaName(schemaName); err != nil {
		return nil, err
	}

	conn, err := p.db.Acquire(ctx)
	if err != nil {
		return nil, errors.Join(ErrAcquireFailed, err)
	}

	if err := setSearchPath(ctx, conn, schemaName); err != nil {
		conn.Destroy(ctx)
		return nil, errors.Join(ErrSchemaBindFailed, err)
	}

	if p.verify {
		current, err := currentSchema(ctx, conn)
		if err != nil {
			conn.Destroy(ctx)
			return nil, errors.Join(ErrSchemaBindFailed, err)
		}
		if current == "" {
			conn.Destroy(ctx)
			p.log.WarnContext(ctx, "schema missing at bind time", "schema", schemaName)
			return nil, errors.Join(ErrSchemaNotFound, fmt.Errorf("schema %q", schemaName))
		}
		if current != schemaName {
			conn.Destroy(ctx)
			p.log.ErrorContext(ctx, "schema bind verification mismatch",
				"want", schemaName, "got", current)
			return nil, errors.Join(ErrSchemaMismatch,
				fmt.Errorf("bound %q, current_schema reports %q", schemaName, current))
		}
	}

	return &Conn{conn: conn, schema: schemaName, pool: p}, nil
}

// AcquireFromContext checks out a connection bound to the schema of the
// tenant in the current scope. Returns tenant.ErrNoTenantInContext when
// no schema is bound; it never falls back to the default schema.
func (p *Pool) AcquireFromContext(ctx context.Context) (*Conn, error) {
	schemaName, ok := tenant.SchemaFromContext(ctx)
	if !ok {
		return nil, tenant.ErrNoTenantInContext
	}
	return p.Acquire(ctx, schemaName)
}

// WithSchema runs fn with a connection bound to the given schema and
// releases it afterwards, including on panic.
func (p *Pool) WithSchema(ctx context.Context, schemaName string, fn func(ctx context.Context, conn *Conn) error) error {
	conn, err := p.Acquire(ctx, schemaName)
	if err != nil {
		return err
	}
	defer conn.Release(ctx)
	return fn(ctx, conn)
}

// WithTenant runs fn with a connection bound to the schema of the
// tenant in the current scope.
func (p *Pool) WithTenant(ctx context.Context, fn func(ctx context.Context, conn *Conn) error) error {
	conn, err := p.AcquireFromContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Release(ctx)
	return fn(ctx, conn)
}

// setSearchPath binds the connection to the schema. set_config takes
// the value as a bind parameter, so the schema name never gets
// interpolated into SQL text.
func setSearchPath(ctx context.Context, conn pooledConn, schemaName string) error {
	_, err := conn.Exec(ctx, "SELECT set_config('search_path', $1, false)", schemaName)
	return err
}

// currentSchema reads the effective schema back. It returns "" when the
// search_path points at a schema that does not exist.
func currentSchema(ctx context.Context, conn pooledConn) (string, error) {
	var current *string
	if err := conn.QueryRow(ctx, "SELECT current_schema()").Scan(&current); err != nil {
		return "", err
	}
	if current == nil {
		return "", nil
	}
	return *current, nil
}
