package plans_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/plans"
)

const catalogYAML = `
plans:
  - id: free
    name: Free
    description: For trying things out.
    public: true
    limits:
      members: 3
      projects: 1
  - id: pro
    name: Pro
    public: true
    trial_days: 14
    limits:
      members: 25
      projects: -1
    features:
      - custom_domain
      - priority_support
  - id: enterprise_2019
    name: Enterprise (legacy)
    public: false
    limits:
      members: -1
      projects: -1
    features:
      - custom_domain
      - sso
`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("parses a catalog preserving file order", func(t *testing.T) {
		t.Parallel()

		catalog, err := plans.Parse([]byte(catalogYAML))
		require.NoError(t, err)

		assert.Equal(t, []string{"free", "pro", "enterprise_2019"}, catalog.IDs())
		assert.True(t, catalog.Has("free"))
		assert.True(t, catalog.Has("enterprise_2019"))
		assert.False(t, catalog.Has("ghost"))
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		t.Parallel()

		_, err := plans.Parse([]byte("plans: [whoops"))
		assert.ErrorIs(t, err, plans.ErrParseFailed)
	})

	t.Run("rejects an empty catalog", func(t *testing.T) {
		t.Parallel()

		_, err := plans.Parse([]byte("plans: []"))
		assert.ErrorIs(t, err, plans.ErrParseFailed)
	})

	t.Run("rejects duplicate plan ids", func(t *testing.T) {
		t.Parallel()

		_, err := plans.Parse([]byte("plans:\n  - id: free\n  - id: free\n"))
		assert.ErrorIs(t, err, plans.ErrDuplicatePlan)
	})

	t.Run("rejects invalid plan ids", func(t *testing.T) {
		t.Parallel()

		for _, id := range []string{"", "Pro", "pro plan", "-pro", "pro;drop"} {
			_, err := plans.Parse([]byte("plans:\n  - id: \"" + id + "\"\n"))
			assert.ErrorIs(t, err, plans.ErrInvalidPlanID, "id %q", id)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("loads a catalog from a filesystem", func(t *testing.T) {
		t.Parallel()

		fsys := fstest.MapFS{
			"plans.yaml": &fstest.MapFile{Data: []byte(catalogYAML)},
		}
		catalog, err := plans.Load(fsys, "plans.yaml")
		require.NoError(t, err)
		assert.Len(t, catalog.All(), 3)
	})

	t.Run("reports a missing file", func(t *testing.T) {
		t.Parallel()

		_, err := plans.Load(fstest.MapFS{}, "plans.yaml")
		assert.ErrorIs(t, err, plans.ErrParseFailed)
	})
}

func TestCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := plans.Parse([]byte(catalogYAML))
	require.NoError(t, err)

	t.Run("returns plans by id", func(t *testing.T) {
		t.Parallel()

		pro, err := catalog.Get("pro")
		require.NoError(t, err)
		assert.Equal(t, "Pro", pro.Name)
		assert.Equal(t, 14, pro.TrialDays)

		_, err = catalog.Get("ghost")
		assert.ErrorIs(t, err, plans.ErrPlanNotFound)
	})

	t.Run("resolves limits including unlimited", func(t *testing.T) {
		t.Parallel()

		pro, err := catalog.Get("pro")
		require.NoError(t, err)
		assert.Equal(t, int64(25), pro.Limit("members"))
		assert.Equal(t, plans.Unlimited, pro.Limit("projects"))
		assert.Zero(t, pro.Limit("unknown_resource"), "unnamed resources are not granted")
	})

	t.Run("answers feature checks", func(t *testing.T) {
		t.Parallel()

		pro, err := catalog.Get("pro")
		require.NoError(t, err)
		assert.True(t, pro.HasFeature("custom_domain"))
		assert.False(t, pro.HasFeature("sso"))
	})

	t.Run("filters public plans", func(t *testing.T) {
		t.Parallel()

		public := catalog.Public()
		require.Len(t, public, 2)
		assert.Equal(t, "free", public[0].ID)
		assert.Equal(t, "pro", public[1].ID)
	})
}
