package tenantdb

import "errors"

var (
	ErrAcquireFailed    = errors.New("failed to acquire connection from pool")
	ErrSchemaBindFailed = errors.New("failed to bind schema search path")
	ErrSchemaNotFound   = errors.New("schema does not exist")
	ErrSchemaMismatch   = errors.New("schema binding verification mismatch")
)
