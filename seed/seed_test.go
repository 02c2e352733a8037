package seed

import (
	"testing"

	"github.com/hoofmatch/hoofmatch/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogResolvesEveryHorse(t *testing.T) {
	catalog := NewCatalog()
	require.Equal(t, len(Horses()), catalog.Len(), "hash collision in seed names would shrink the catalog")

	for _, h := range Horses() {
		norm, err := identity.Normalize(identity.SeedName(h.Name))
		require.NoError(t, err)

		got, ok := catalog.ByKey(norm.Key)
		require.True(t, ok, "horse %q missing under %s", h.Name, norm.Key)
		assert.Equal(t, h.Name, got.Name)
		assert.NotEmpty(t, got.Breed)
		assert.NotEmpty(t, got.ImageURL)
	}
}

func TestCatalogUnknownKey(t *testing.T) {
	catalog := NewCatalog()
	_, ok := catalog.ByKey("seed:00000000")
	assert.False(t, ok)
}
