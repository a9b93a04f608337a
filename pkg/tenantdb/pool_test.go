package tenantdb

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// fakePool models pgxpool recycling: released connections go back to an
// idle list unchanged, so whatever session state a connection carries is
// visible to the next caller. That is exactly the hazard the router's
// reset-on-release exists to contain.
type fakePool struct {
	mu         sync.Mutex
	idle       []*fakeConn
	schemas    map[string]bool
	acquireErr error
	created    int
	destroyed  int
	onNewConn  func(*fakeConn)
}

func newFakePool(schemas ...string) *fakePool {
	known := map[string]bool{"public": true}
	for _, s := range schemas {
		known[s] = true
	}
	return &fakePool{schemas: known}
}

func (p *fakePool) Acquire(ctx context.Context) (pooledConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	if n := len(p.idle); n > 0 {
		conn := p.idle[n-1]
		p.idle = p.idle[:n-1]
		return conn, nil
	}
	p.created++
	conn := &fakeConn{pool: p, searchPath: "public"}
	if p.onNewConn != nil {
		p.onNewConn(conn)
	}
	return conn, nil
}

func (p *fakePool) schemaExists(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.schemas[name]
}

func (p *fakePool) idleConns() []*fakeConn {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*fakeConn, len(p.idle))
	copy(out, p.idle)
	return out
}

func (p *fakePool) stats() (created, destroyed, idle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created, p.destroyed, len(p.idle)
}

type fakeConn struct {
	pool       *fakePool
	mu         sync.Mutex
	searchPath string
	misbindTo  string // when set, binds land on this schema instead
	execErr    error  // consumed by the next set_config call
	releases   int
	destroyed  bool
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.Contains(sql, "set_config('search_path'") {
		if c.execErr != nil {
			err := c.execErr
			c.execErr = nil
			return pgconn.CommandTag{}, err
		}
		target := args[0].(string)
		if c.misbindTo != "" && target != "public" {
			target = c.misbindTo
		}
		// Like PostgreSQL, accept a search_path that points nowhere.
		c.searchPath = target
	}
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeConn: Query not implemented")
}

func (c *fakeConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if !strings.Contains(sql, "current_schema") {
		return fakeRow{err: errors.New("fakeConn: unexpected query " + sql)}
	}
	c.mu.Lock()
	path := c.searchPath
	c.mu.Unlock()
	if !c.pool.schemaExists(path) {
		return fakeRow{}
	}
	return fakeRow{value: &path}
}

func (c *fakeConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeConn: Begin not implemented")
}

func (c *fakeConn) Release() {
	c.mu.Lock()
	c.releases++
	c.mu.Unlock()

	c.pool.mu.Lock()
	c.pool.idle = append(c.pool.idle, c)
	c.pool.mu.Unlock()
}

func (c *fakeConn) Destroy(ctx context.Context) {
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()

	c.pool.mu.Lock()
	c.pool.destroyed++
	c.pool.mu.Unlock()
}

func (c *fakeConn) currentPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchPath
}

func (c *fakeConn) failNextReset(err error) {
	c.mu.Lock()
	c.execErr = err
	c.mu.Unlock()
}

type fakeRow struct {
	value *string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(**string); ok {
		*p = r.value
		return nil
	}
	return errors.New("fakeRow: unsupported scan target")
}

func TestNewPool(t *testing.T) {
	t.Parallel()

	t.Run("rejects an invalid default schema", func(t *testing.T) {
		t.Parallel()

		_, err := newPool(newFakePool(), WithDefaultSchema("Bad Name"))
		assert.ErrorIs(t, err, tenant.ErrInvalidSchemaName)
	})

	t.Run("accepts a custom default schema", func(t *testing.T) {
		t.Parallel()

		p, err := newPool(newFakePool(), WithDefaultSchema("app_shared"))
		require.NoError(t, err)
		assert.Equal(t, "app_shared", p.defaultSchema)
	})
}

func TestPoolAcquire(t *testing.T) {
	t.Parallel()

	t.Run("binds the connection to the requested schema", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		pool, err := newPool(fp)
		require.NoError(t, err)

		conn, err := pool.Acquire(context.Background(), "t_acme_a1b2c3")
		require.NoError(t, err)
		defer conn.Release(context.Background())

		assert.Equal(t, "t_acme_a1b2c3", conn.Schema())
		assert.Equal(t, "t_acme_a1b2c3", conn.conn.(*fakeConn).currentPath())
	})

	t.Run("rejects invalid schema names before touching the pool", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool()
		pool, err := newPool(fp)
		require.NoError(t, err)

		_, err = pool.Acquire(context.Background(), `t_acme";DROP SCHEMA public`)
		assert.ErrorIs(t, err, tenant.ErrInvalidSchemaName)

		created, _, _ := fp.stats()
		assert.Zero(t, created, "validation failures must not consume pool connections")
	})

	t.Run("destroys the connection when the schema does not exist", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		pool, err := newPool(fp)
		require.NoError(t, err)

		_, err = pool.Acquire(context.Background(), "t_ghost_a1b2c3")
		assert.ErrorIs(t, err, ErrSchemaNotFound)

		_, destroyed, idle := fp.stats()
		assert.Equal(t, 1, destroyed, "a connection bound to a missing schema must be destroyed")
		assert.Zero(t, idle)
	})

	t.Run("destroys the connection on bind verification mismatch", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3", "t_evil_a1b2c3")
		fp.onNewConn = func(c *fakeConn) { c.misbindTo = "t_evil_a1b2c3" }
		pool, err := newPool(fp)
		require.NoError(t, err)

		_, err = pool.Acquire(context.Background(), "t_acme_a1b2c3")
		assert.ErrorIs(t, err, ErrSchemaMismatch)

		_, destroyed, idle := fp.stats()
		assert.Equal(t, 1, destroyed)
		assert.Zero(t, idle)
	})

	t.Run("destroys the connection when the bind statement fails", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		fp.onNewConn = func(c *fakeConn) { c.execErr = errors.New("connection reset by peer") }
		pool, err := newPool(fp)
		require.NoError(t, err)

		_, err = pool.Acquire(context.Background(), "t_acme_a1b2c3")
		assert.ErrorIs(t, err, ErrSchemaBindFailed)

		_, destroyed, _ := fp.stats()
		assert.Equal(t, 1, destroyed)
	})

	t.Run("wraps pool acquisition failures", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		fp.acquireErr = errors.New("pool exhausted")
		pool, err := newPool(fp)
		require.NoError(t, err)

		_, err = pool.Acquire(context.Background(), "t_acme_a1b2c3")
		assert.ErrorIs(t, err, ErrAcquireFailed)
	})

	t.Run("skips the read-back when verification is disabled", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool()
		pool, err := newPool(fp, WithoutVerification())
		require.NoError(t, err)

		// The schema does not exist; without verification the bind is
		// accepted at face value.
		conn, err := pool.Acquire(context.Background(), "t_ghost_a1b2c3")
		require.NoError(t, err)
		conn.Release(context.Background())
	})
}

func TestAcquireFromContext(t *testing.T) {
	t.Parallel()

	t.Run("uses the schema bound to the tenant scope", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		pool, err := newPool(fp)
		require.NoError(t, err)

		ctx := tenant.NewContext(context.Background())
		require.True(t, tenant.BindSchema(ctx, "t_acme_a1b2c3"))

		conn, err := pool.AcquireFromContext(ctx)
		require.NoError(t, err)
		defer conn.Release(ctx)

		assert.Equal(t, "t_acme_a1b2c3", conn.Schema())
	})

	t.Run("fails closed when no schema is bound", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		pool, err := newPool(fp)
		require.NoError(t, err)

		for _, ctx := range []context.Context{
			context.Background(),
			tenant.NewContext(context.Background()),
		} {
			_, err := pool.AcquireFromContext(ctx)
			assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
		}

		created, _, _ := fp.stats()
		assert.Zero(t, created, "unbound requests must not reach the pool")
	})
}

func TestWithSchema(t *testing.T) {
	t.Parallel()

	t.Run("runs fn on a bound connection and releases it", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		pool, err := newPool(fp)
		require.NoError(t, err)

		var inside string
		err = pool.WithSchema(context.Background(), "t_acme_a1b2c3", func(ctx context.Context, conn *Conn) error {
			inside = conn.conn.(*fakeConn).currentPath()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "t_acme_a1b2c3", inside)

		idle := fp.idleConns()
		require.Len(t, idle, 1)
		assert.Equal(t, "public", idle[0].currentPath())
	})

	t.Run("propagates fn errors after releasing", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		pool, err := newPool(fp)
		require.NoError(t, err)

		boom := errors.New("query failed")
		err = pool.WithSchema(context.Background(), "t_acme_a1b2c3", func(ctx context.Context, conn *Conn) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, _, idle := fp.stats()
		assert.Equal(t, 1, idle)
	})

	t.Run("releases the connection when fn panics", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_acme_a1b2c3")
		pool, err := newPool(fp)
		require.NoError(t, err)

		assert.Panics(t, func() {
			_ = pool.WithSchema(context.Background(), "t_acme_a1b2c3", func(ctx context.Context, conn *Conn) error {
				panic("handler exploded")
			})
		})

		idle := fp.idleConns()
		require.Len(t, idle, 1)
		assert.Equal(t, "public", idle[0].currentPath(), "panic path must still reset the connection")
	})
}

func TestWithTenant(t *testing.T) {
	t.Parallel()

	t.Run("routes through the scope-bound schema", func(t *testing.T) {
		t.Parallel()

		fp := newFakePool("t_globex_d4e5f6")
		pool, err := newPool(fp)
		require.NoError(t, err)

		ctx := tenant.NewContext(context.Background())
		require.True(t, tenant.BindSchema(ctx, "t_globex_d4e5f6"))

		var schemaName string
		err = pool.WithTenant(ctx, func(ctx context.Context, conn *Conn) error {
			schemaName = conn.Schema()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "t_globex_d4e5f6", schemaName)
	})
}
