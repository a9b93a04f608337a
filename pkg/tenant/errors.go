package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when a tenant cannot be found.
	// Soft-deleted tenants are reported with this error as well so that
	// their existence is not revealed to callers.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrInvalidSchemaName is returned when a schema name fails validation.
	ErrInvalidSchemaName = errors.New("invalid schema name")

	// ErrNoTenantInContext is returned when no tenant is bound to the
	// current scope.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrTenantSuspended is returned when the resolved tenant exists but
	// is suspended.
	ErrTenantSuspended = errors.New("tenant is suspended")

	// ErrTenantNotReady is returned when the resolved tenant is still
	// being provisioned or its provisioning has failed.
	ErrTenantNotReady = errors.New("tenant is not ready")

	// ErrInvalidTransition is returned when a status change violates the
	// lifecycle state machine.
	ErrInvalidTransition = errors.New("invalid status transition")
)
