package provision

import "errors"

var (
	ErrProvisionFailed = errors.New("tenant provisioning failed")
	ErrPlanUnknown     = errors.New("unknown subscription plan")
	ErrNotRetryable    = errors.New("only failed tenants can be retried")
	ErrNotPurgeable    = errors.New("tenant must be soft-deleted before its schema can be dropped")
	ErrNotMigratable   = errors.New("tenant is being deleted, refusing to migrate its schema")
)
