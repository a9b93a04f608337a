package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is the registry record describing a single tenant and the
// database schema its data lives in. SchemaName is assigned once at
// provisioning time and never changes afterwards, even across renames
// or soft deletion.
type Tenant struct {
	ID         uuid.UUID `json:"id"`
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	Subdomain  string    `json:"subdomain"`
	SchemaName string    `json:"schema_name"`
	Status     Status    `json:"status"`
	Plan       string    `json:"plan"`
	Settings   []byte    `json:"-"`
	LastError  string    `json:"last_error,omitempty"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Resolvable reports whether requests may be routed to this tenant.
// Only active tenants resolve; every other status is refused so that a
// half-provisioned or suspended tenant can never receive traffic.
func (t *Tenant) Resolvable() bool {
	return t != nil && t.Status.Resolvable()
}

// Provider loads tenant records from a data source.
// Implementations should handle various identifier formats
// (key, subdomain, UUID) based on application needs.
type Provider interface {
	// GetByIdentifier retrieves a tenant using any unique identifier.
	// Returns ErrTenantNotFound if no tenant matches the identifier.
	// Soft-deleted tenants are reported as not found.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
