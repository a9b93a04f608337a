package registry_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/registry"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestGenerateSchemaName(t *testing.T) {
	t.Parallel()

	t.Run("derives a valid schema name from the key", func(t *testing.T) {
		t.Parallel()

		name, err := registry.GenerateSchemaName("acme-corp")
		require.NoError(t, err)

		assert.Regexp(t, `^t_acme_corp_[a-z0-9]{6}$`, name)
		assert.NoError(t, tenant.ValidateSchemaName(name))
	})

	t.Run("names are unique per call", func(t *testing.T) {
		t.Parallel()

		a, err := registry.GenerateSchemaName("acme")
		require.NoError(t, err)
		b, err := registry.GenerateSchemaName("acme")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("long keys fit the PostgreSQL identifier limit", func(t *testing.T) {
		t.Parallel()

		name, err := registry.GenerateSchemaName(strings.Repeat("verylongkey", 12))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(name), tenant.MaxSchemaNameLength)
		assert.NoError(t, tenant.ValidateSchemaName(name))
	})

	t.Run("uppercase keys fold to lowercase", func(t *testing.T) {
		t.Parallel()

		name, err := registry.GenerateSchemaName("ACME")
		require.NoError(t, err)
		assert.Regexp(t, `^t_acme_[a-z0-9]{6}$`, name)
	})

	t.Run("degenerate keys still produce a name", func(t *testing.T) {
		t.Parallel()

		// Nothing sluggable in the key leaves prefix plus suffix.
		name, err := registry.GenerateSchemaName("***")
		require.NoError(t, err)
		assert.Regexp(t, `^t_[a-z0-9]{6}$`, name)
	})
}
