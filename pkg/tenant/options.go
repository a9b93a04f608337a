package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	cache             Cache
	cacheTTL          time.Duration
	errorHandler      ErrorHandler
	skipPaths         []string
	defaultIdentifier string
	logger            *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithCache sets a custom cache implementation.
func WithCache(cache Cache) Option {
	return func(c *config) {
		c.cache = cache
	}
}

// WithCacheTTL sets how long resolved tenants stay cached. Status
// changes made elsewhere become visible after at most this duration
// unless the cache entry is invalidated explicitly.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that bypass tenant resolution.
func WithSkipPaths(paths []string) Option {
	return func(c *config) {
		c.skipPaths = paths
	}
}

// WithDefaultTenant sets the identifier to resolve when the request
// presents none at all. It applies only to requests with no identifier;
// a presented identifier that fails lookup or validation is always
// rejected, never replaced with the default.
func WithDefaultTenant(identifier string) Option {
	return func(c *config) {
		c.defaultIdentifier = identifier
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound), errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrTenantSuspended):
		http.Error(w, "Tenant is suspended", http.StatusForbidden)
	case errors.Is(err, ErrTenantNotReady):
		http.Error(w, "Tenant is not ready", http.StatusServiceUnavailable)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
