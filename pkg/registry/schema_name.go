package registry

import (
	"github.com/dmitrymomot/tenantkit/pkg/slug"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

const (
	schemaNamePrefix   = "t_"
	schemaSuffixLength = 6
)

// GenerateSchemaName derives a fresh PostgreSQL schema name from a
// tenant key: the slugged key plus a random suffix under a fixed "t_"
// prefix, e.g. "t_acme_corp_x7g3k2". The suffix keeps names unique even
// when keys are reused after deletion; the registry's unique constraint
// on schema_name is the final arbiter.
func GenerateSchemaName(key string) (string, error) {
	base := slug.Make(key,
		slug.Separator("_"),
		slug.MaxLength(tenant.MaxSchemaNameLength-len(schemaNamePrefix)),
		slug.WithSuffix(schemaSuffixLength),
	)
	name := schemaNamePrefix + base
	if err := tenant.ValidateSchemaName(name); err != nil {
		return "", err
	}
	return name, nil
}
