package registry

import "errors"

var (
	ErrAlreadyExists      = errors.New("tenant with the same key, subdomain, or schema already exists")
	ErrVersionConflict    = errors.New("tenant record was changed concurrently, reload and retry")
	ErrQueryFailed        = errors.New("registry query failed")
	ErrSettingsEncryption = errors.New("failed to encrypt tenant settings")
	ErrSettingsDecryption = errors.New("failed to decrypt tenant settings")
)
