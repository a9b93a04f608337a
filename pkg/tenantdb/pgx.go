package tenantdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// acquirer and pooledConn are the seams between the router and pgxpool.
// Production uses the adapters below; tests substitute fakes that model
// pool reuse, which is how the reset-on-release invariant gets exercised
// without a database.
type acquirer interface {
	Acquire(ctx context.Context) (pooledConn, error)
}

type pooledConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	// Release returns the connection to the pool as-is.
	Release()
	// Destroy closes the underlying connection so the pool discards it.
	Destroy(ctx context.Context)
}

type pgxPool struct {
	pool *pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (pooledConn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return pgxConn{conn: conn}, nil
}

type pgxConn struct {
	conn *pgxpool.Conn
}

func (c pgxConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c pgxConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

func (c pgxConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c pgxConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}

func (c pgxConn) Release() {
	c.conn.Release()
}

func (c pgxConn) Destroy(ctx context.Context) {
	// Closing the raw connection marks it broken; the pool drops it on
	// release instead of recycling it.
	_ = c.conn.Conn().Close(ctx)
	c.conn.Release()
}
