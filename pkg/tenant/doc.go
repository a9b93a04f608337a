// Package tenant provides the core multi-tenancy model for
// schema-per-tenant applications: the tenant record and its lifecycle,
// request-scoped tenant context, and fail-closed tenant resolution for
// HTTP requests.
//
// # Architecture
//
// The package is built around four concepts:
//
//  1. Tenant and Status - the registry record and its lifecycle state machine
//  2. Scope - a per-unit-of-work context binding for the resolved tenant
//  3. Resolvers - strategies that extract tenant identifiers from requests
//  4. Middleware - orchestrates resolution, caching, binding and cleanup
//
// Durable storage of tenant records lives in the registry package; this
// package only defines the Provider interface the middleware loads
// records through.
//
// # Tenant scope
//
// Every unit of work (HTTP request, job run) carries exactly one scope.
// The middleware attaches it with NewContext, binds the resolved tenant
// with Bind, and clears it unconditionally when the unit finishes. The
// clear runs on every exit path, including panics, so a binding can
// never leak into the next unit of work. Background jobs follow the
// same shape:
//
//	ctx := tenant.NewContext(ctx)
//	defer tenant.Clear(ctx)
//	tenant.BindSchema(ctx, schemaName)
//
// # Resolution
//
// Resolvers are consulted in precedence order via CompositeResolver;
// explicit signals (header, token claim) should be listed before
// ambient ones (subdomain). Resolution is fail-closed: a malformed or
// unknown identifier, or a tenant in any non-active status, rejects the
// request. The default tenant configured with WithDefaultTenant applies
// only when the request presents no identifier at all.
//
//	resolver := tenant.NewCompositeResolver(
//		tenant.NewHeaderResolver("X-Tenant-ID"),
//		tenant.NewClaimResolver(claimsFromRequest, "tenant"),
//		tenant.NewSubdomainResolver(".saas.example.com"),
//	)
//	router.Use(tenant.Middleware(resolver, provider,
//		tenant.WithCacheTTL(10*time.Minute),
//		tenant.WithSkipPaths([]string{"/health"}),
//	))
//
// Handlers read the binding back with FromContext or SchemaFromContext:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		t, ok := tenant.FromContext(r.Context())
//		if !ok {
//			return
//		}
//		// use t.SchemaName via the tenantdb router
//	}
//
// # Caching
//
// The middleware caches resolved tenants to keep registry lookups off
// the hot path. The default in-memory cache handles TTL expiration and
// LRU eviction; a shared backend such as Redis can be plugged in via
// the Cache interface. After a status change, delete the affected keys
// so routing picks the change up before the TTL expires.
//
// # Errors
//
// Resolution failures map to distinct sentinel errors: ErrTenantNotFound,
// ErrTenantSuspended, ErrTenantNotReady and ErrInvalidIdentifier. The
// default error handler translates them to 404, 403, 503 and 400
// responses; deleted tenants are reported exactly like absent ones.
package tenant
