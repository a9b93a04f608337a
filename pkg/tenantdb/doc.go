// Package tenantdb routes pooled PostgreSQL connections to tenant
// schemas for schema-per-tenant applications.
//
// The Pool wraps a pgxpool.Pool. Acquire validates the schema name,
// checks out a connection, binds it with
// set_config('search_path', ..., false) and verifies the binding with a
// current_schema() read-back. Release resets search_path to the neutral
// default before the connection returns to the pool; when the reset
// cannot be confirmed the connection is destroyed. These two rules
// together guarantee that no pooled connection ever carries one
// tenant's search_path into another tenant's queries.
//
// Typical request-path usage reads the schema from the tenant scope:
//
//	err := pool.WithTenant(ctx, func(ctx context.Context, conn *tenantdb.Conn) error {
//		rows, err := conn.Query(ctx, "SELECT id, name FROM projects")
//		...
//	})
//
// Background jobs that know the schema directly use WithSchema or
// Acquire. There is no fallback: acquiring without a bound schema fails
// with tenant.ErrNoTenantInContext.
package tenantdb
