package tenant

import (
	"regexp"
	"strings"
)

const (
	// MaxIdentifierLength bounds resolved tenant identifiers (keys,
	// subdomains, UUIDs) before they are used in lookups.
	MaxIdentifierLength = 63

	// MaxSchemaNameLength matches the PostgreSQL identifier limit
	// (NAMEDATALEN-1 bytes).
	MaxSchemaNameLength = 63
)

var (
	identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)
	schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// ValidateIdentifier checks a resolved tenant identifier before it is
// used in a registry lookup. Identifiers arrive from untrusted request
// surfaces (headers, hostnames, token claims), so anything outside the
// allowed charset or length is rejected outright.
func ValidateIdentifier(identifier string) error {
	if identifier == "" || len(identifier) > MaxIdentifierLength {
		return ErrInvalidIdentifier
	}
	if !identifierPattern.MatchString(identifier) {
		return ErrInvalidIdentifier
	}
	return nil
}

// ValidateSchemaName checks that a schema name is safe to interpolate
// into SQL as a quoted identifier. Names are restricted to lowercase
// letters, digits and underscores; the reserved pg_ prefix is refused.
func ValidateSchemaName(name string) error {
	if name == "" || len(name) > MaxSchemaNameLength {
		return ErrInvalidSchemaName
	}
	if !schemaNamePattern.MatchString(name) {
		return ErrInvalidSchemaName
	}
	if strings.HasPrefix(name, "pg_") {
		return ErrInvalidSchemaName
	}
	return nil
}
