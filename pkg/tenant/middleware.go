package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Middleware creates HTTP middleware that resolves the tenant for each
// request and binds it to a request-scoped tenant context.
//
// Resolution is fail-closed: when the request presents an identifier
// that is malformed, unknown, or belongs to a non-active tenant, the
// request is rejected. There is no fallback to a shared or default
// tenant in that case. The configured default tenant (if any) applies
// only to requests that present no identifier at all.
//
// The scope bound by this middleware is cleared unconditionally when
// the request finishes, on every exit path including panics.
func Middleware(resolver Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		cache:        NewInMemoryCache(),
		cacheTTL:     5 * time.Minute,
		errorHandler: defaultErrorHandler,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := NewContext(r.Context())
			defer Clear(ctx)
			r = r.WithContext(ctx)

			// An earlier stage may have bound the tenant already;
			// resolving again could contradict its decision.
			if _, ok := SchemaFromContext(ctx); ok {
				next.ServeHTTP(w, r)
				return
			}

			identifier, err := resolver.Resolve(r)
			if err != nil {
				cfg.logger.WarnContext(ctx, "tenant resolution failed", "error", err)
				cfg.errorHandler(w, r, errors.Join(ErrInvalidIdentifier, err))
				return
			}
			if identifier == "" {
				if cfg.defaultIdentifier == "" {
					// No identifier and no default: continue unbound and
					// let RequireTenant decide downstream.
					next.ServeHTTP(w, r)
					return
				}
				identifier = cfg.defaultIdentifier
			}
			if err := ValidateIdentifier(identifier); err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			t, ok := cfg.cache.Get(ctx, identifier)
			if !ok {
				t, err = provider.GetByIdentifier(ctx, identifier)
				if err != nil {
					if !errors.Is(err, ErrTenantNotFound) {
						cfg.logger.ErrorContext(ctx, "tenant lookup failed",
							"identifier", identifier, "error", err)
					}
					cfg.errorHandler(w, r, err)
					return
				}
				cfg.cache.Set(ctx, identifier, t, cfg.cacheTTL)
			}

			if err := resolutionError(t.Status); err != nil {
				cfg.logger.WarnContext(ctx, "tenant refused",
					"identifier", identifier, "status", t.Status.String())
				cfg.errorHandler(w, r, err)
				return
			}

			Bind(ctx, t)
			next.ServeHTTP(w, r)
		})
	}
}

// resolutionError maps a non-resolvable status to the error surfaced to
// the client. Deleted tenants are indistinguishable from absent ones.
func resolutionError(s Status) error {
	switch s {
	case StatusActive:
		return nil
	case StatusSuspended:
		return ErrTenantSuspended
	case StatusDeleting, StatusDeleted:
		return ErrTenantNotFound
	default:
		return ErrTenantNotReady
	}
}

// RequireTenant creates middleware that ensures a tenant is bound to the
// current scope. Use it to protect routes that must never run without
// tenant context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
