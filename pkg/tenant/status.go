package tenant

// Status describes where a tenant is in its lifecycle. The zero value is
// not a valid status; records always carry one of the constants below.
type Status string

const (
	// StatusCreating means the registry row exists but the schema does not yet.
	StatusCreating Status = "creating"
	// StatusProvisioning means the schema is being created and migrated.
	StatusProvisioning Status = "provisioning"
	// StatusActive means the tenant is fully provisioned and serves requests.
	StatusActive Status = "active"
	// StatusSuspended means the tenant is intact but refuses requests.
	StatusSuspended Status = "suspended"
	// StatusFailed means provisioning did not complete; the registry row is
	// retained so the operation can be retried or the tenant discarded.
	StatusFailed Status = "failed"
	// StatusDeleting means the tenant is soft-deleted and awaiting cleanup.
	StatusDeleting Status = "deleting"
	// StatusDeleted is terminal. The row is kept forever so the schema name
	// can never be reassigned to another tenant.
	StatusDeleted Status = "deleted"
)

// transitions is the full set of legal status changes. Anything not
// listed here is rejected with ErrInvalidTransition by the registry.
var transitions = map[Status][]Status{
	StatusCreating:     {StatusProvisioning, StatusFailed},
	StatusProvisioning: {StatusActive, StatusFailed},
	StatusFailed:       {StatusProvisioning, StatusDeleting},
	StatusActive:       {StatusSuspended, StatusDeleting},
	StatusSuspended:    {StatusActive, StatusDeleting},
	StatusDeleting:     {StatusDeleted},
	StatusDeleted:      {},
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to the given status is legal.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Resolvable reports whether requests may be routed to a tenant in this status.
func (s Status) Resolvable() bool {
	return s == StatusActive
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0 && s.Valid()
}

func (s Status) String() string {
	return string(s)
}
