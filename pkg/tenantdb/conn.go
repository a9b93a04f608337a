package tenantdb

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// resetTimeout bounds the search_path reset on release so a dead
// connection cannot block the caller indefinitely.
const resetTimeout = 5 * time.Second

// Conn is a pooled connection bound to one tenant schema. All queries
// running on it resolve unqualified table names inside that schema.
// Conn is not safe for concurrent use, matching the underlying pgx
// connection.
type Conn struct {
	conn     pooledConn
	schema   string
	pool     *Pool
	released atomic.Bool
}

// Schema returns the schema this connection is bound to.
func (c *Conn) Schema() string {
	return c.schema
}

// Exec executes a statement on the bound connection.
func (c *Conn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

// Query executes a query on the bound connection.
func (c *Conn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return c.conn.Query(ctx, sql, args...)
}

// QueryRow executes a single-row query on the bound connection.
func (c *Conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

// Begin starts a transaction on the bound connection. The transaction
// inherits the schema binding.
func (c *Conn) Begin(ctx context.Context) (pgx.Tx, error) {
	return c.conn.Begin(ctx)
}

// Release resets the connection to the neutral schema and returns it to
// the pool. If the reset fails the connection is destroyed instead, so
// a tenant-bound connection is never handed to another caller. Release
// is idempotent; calls after the first do nothing.
//
// The reset runs detached from the request context: a canceled unit of
// work must still return a neutral connection.
func (c *Conn) Release(ctx context.Context) {
	if !c.released.CompareAndSwap(false, true) {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resetTimeout)
	defer cancel()

	if err := setSearchPath(ctx, c.conn, c.pool.defaultSchema); err != nil {
		c.pool.log.WarnContext(ctx, "search_path reset failed, destroying connection",
			"schema", c.schema, "error", err)
		c.conn.Destroy(ctx)
		return
	}
	c.conn.Release()
}
