package tenant

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// scopeKey is a private type to prevent collisions with other context keys.
type scopeKey struct{}

// scope is the mutable per-unit-of-work holder for the resolved tenant.
// Exactly one scope is attached per unit of work (HTTP request, job run).
// Whoever attaches it clears it when the unit finishes, so a binding can
// never leak into the next unit of work even when the surrounding
// machinery reuses workers or contexts.
type scope struct {
	mu     sync.RWMutex
	tenant *Tenant
	schema string
}

func scopeFrom(ctx context.Context) (*scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*scope)
	return s, ok
}

// NewContext returns a context carrying an empty tenant scope. If the
// context already carries a scope it is returned unchanged, so nested
// middleware shares one scope and an earlier binding stays visible.
func NewContext(ctx context.Context) context.Context {
	if _, ok := scopeFrom(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, &scope{})
}

// Bind attaches the tenant (and its schema name) to the scope in ctx.
// Returns false if ctx carries no scope or the tenant is nil; callers
// must establish a scope with NewContext first.
func Bind(ctx context.Context, t *Tenant) bool {
	s, ok := scopeFrom(ctx)
	if !ok || t == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenant = t
	s.schema = t.SchemaName
	return true
}

// BindSchema attaches a bare schema name to the scope in ctx. Background
// jobs that know only the target schema use this instead of Bind.
func BindSchema(ctx context.Context, schemaName string) bool {
	s, ok := scopeFrom(ctx)
	if !ok || schemaName == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = schemaName
	return true
}

// Clear empties the scope in ctx. It is safe to call when nothing was
// bound or when ctx carries no scope, and it runs unconditionally on
// every exit path of the middleware, including panics.
func Clear(ctx context.Context) {
	s, ok := scopeFrom(ctx)
	if !ok {
		return
	}
	s.mu.Lock()
	s.tenant = nil
	s.schema = ""
	s.mu.Unlock()
}

// FromContext retrieves the tenant bound to the current scope.
// Returns nil, false if no tenant is bound.
func FromContext(ctx context.Context) (*Tenant, bool) {
	s, ok := scopeFrom(ctx)
	if !ok {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tenant == nil {
		return nil, false
	}
	return s.tenant, true
}

// SchemaFromContext retrieves the schema name bound to the current
// scope, whether it was set through Bind or BindSchema.
func SchemaFromContext(ctx context.Context) (string, bool) {
	s, ok := scopeFrom(ctx)
	if !ok {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.schema == "" {
		return "", false
	}
	return s.schema, true
}

// IDFromContext retrieves just the tenant ID from the current scope.
// Returns zero UUID and false if no tenant is bound.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return uuid.UUID{}, false
	}
	return t.ID, true
}

// MustFromContext retrieves the tenant bound to the current scope.
// Panics if no tenant is bound. Use this only in handlers that sit
// behind RequireTenant.
func MustFromContext(ctx context.Context) *Tenant {
	t, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return t
}

// LoggerExtractor returns a context extractor for the logger that adds
// the bound tenant ID to every log record.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}

// SchemaLoggerExtractor returns a context extractor for the logger that
// adds the bound schema name to every log record.
func SchemaLoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if schemaName, ok := SchemaFromContext(ctx); ok {
			return slog.String("tenant_schema", schemaName), true
		}
		return slog.Attr{}, false
	}
}
