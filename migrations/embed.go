// Package migrations embeds the SQL migration sets shipped with the kit.
package migrations

import (
	"embed"
	"io/fs"
)

// RegistryFS contains the migrations for the shared registry schema:
// the tenants table and its supporting indexes. Applied once per
// database via pg.Migrate.
//
//go:embed registry/*.sql
var RegistryFS embed.FS

// RegistryDir is the directory within RegistryFS where migrations live.
const RegistryDir = "registry"

// TenantFS contains the baseline migrations applied to every tenant
// schema. The schema manager runs them against each schema with its own
// version table, so tenants migrate independently.
//
//go:embed tenant/*.sql
var TenantFS embed.FS

// TenantDir is the directory within TenantFS where migrations live.
const TenantDir = "tenant"

// Registry returns the registry migration set rooted at its SQL files,
// ready to hand to a goose provider.
func Registry() fs.FS {
	return mustSub(RegistryFS, RegistryDir)
}

// Tenant returns the tenant baseline migration set rooted at its SQL
// files.
func Tenant() fs.FS {
	return mustSub(TenantFS, TenantDir)
}

func mustSub(fsys embed.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		// The directories are embedded at compile time; failing here
		// means the binary itself is broken.
		panic("migrations: " + err.Error())
	}
	return sub
}
