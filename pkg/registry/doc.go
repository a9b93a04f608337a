// Package registry persists tenant records in the shared PostgreSQL
// schema and serves them to the resolution middleware.
//
// The registry is the single source of truth for tenant metadata: which
// tenants exist, which schema each one's data lives in, and what
// lifecycle status it is in. Tenant data itself never lives here; see
// pkg/tenantdb for routing queries into tenant schemas.
//
// # Store
//
// Store wraps a pgx pool (or transaction) with typed CRUD over the
// tenants table:
//
//	store := registry.New(pool)
//	t := &tenant.Tenant{Key: "acme", Name: "Acme Corp", SchemaName: schemaName}
//	if err := store.Create(ctx, t); err != nil { ... }
//
// Every mutation is guarded by optimistic concurrency on the row
// version. When two processes race, the loser gets ErrVersionConflict
// and must reload. Status changes additionally go through the lifecycle
// state machine; illegal moves fail with tenant.ErrInvalidTransition
// before any SQL runs.
//
// Store implements tenant.Provider, so it plugs straight into the
// resolution middleware:
//
//	tenant.Middleware(resolver, store)
//
// # Settings encryption
//
// With WithSettingsKey configured, the settings document is encrypted
// with a per-tenant key before it reaches the database and decrypted on
// reads. Resolution reads never load settings at all, so neither
// plaintext nor ciphertext ever enters the resolution cache.
//
// # Caching
//
// RedisCache implements tenant.Cache on go-redis for multi-instance
// deployments; resolution results are shared across instances and
// survive restarts. Redis outages degrade to cache misses. After
// mutating a tenant, call tenant.InvalidateTenant to evict it under all
// of its resolution keys.
//
// # Schema names
//
// GenerateSchemaName derives the permanent schema name from the tenant
// key at creation time. The name is never regenerated afterwards:
// renames and soft deletion keep the original schema name, and the
// unique constraint keeps it reserved.
package registry
