package schema

import "errors"

var (
	ErrLockFailed       = errors.New("failed to acquire schema lock")
	ErrCreateFailed     = errors.New("failed to create schema")
	ErrMigrateFailed    = errors.New("failed to migrate schema")
	ErrDropFailed       = errors.New("failed to drop schema")
	ErrDropDisabled     = errors.New("schema drop is disabled")
	ErrDropNotConfirmed = errors.New("schema drop not confirmed")
	ErrSchemaNotFound   = errors.New("schema does not exist")
)
