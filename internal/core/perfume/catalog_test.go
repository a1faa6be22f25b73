package perfume

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogIDPattern = regexp.MustCompile(`^[A-Z]{2}-\d{7}$`)

func TestDefaultCatalog(t *testing.T) {
	entries := DefaultCatalog.Entries()
	require.Len(t, entries, 24)
	assert.Equal(t, 24, DefaultCatalog.Len())

	known := make(map[ScentCategory]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}

	for _, e := range entries {
		assert.Regexp(t, catalogIDPattern, e.ID)
		assert.NotEmpty(t, e.Name)
		assert.True(t, known[e.MainCategory], "unknown category %q for %s", e.MainCategory, e.ID)
	}
}

func TestCatalogLookup(t *testing.T) {
	byID, ok := DefaultCatalog.ByID("LM-2201285")
	require.True(t, ok)
	assert.Equal(t, "레몬", byID.Name)

	byName, ok := DefaultCatalog.Lookup("레몬")
	require.True(t, ok)
	assert.Equal(t, byID, byName)

	_, ok = DefaultCatalog.Lookup("유자")
	assert.False(t, ok)

	assert.True(t, DefaultCatalog.Contains("RS-2201289", "장미"))
	assert.False(t, DefaultCatalog.Contains("RS-2201289", "자스민"))
	assert.False(t, DefaultCatalog.Contains("XX-0000000", "장미"))
}

func TestCatalogEntriesIsCopy(t *testing.T) {
	entries := DefaultCatalog.Entries()
	entries[0].Name = "changed"

	first := DefaultCatalog.Entries()[0]
	assert.Equal(t, "블랙베리", first.Name)
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	assert.Panics(t, func() {
		NewCatalog([]Ingredient{
			{ID: "AA-0000001", Name: "a", MainCategory: CategoryCitrus},
			{ID: "AA-0000001", Name: "b", MainCategory: CategoryCitrus},
		})
	})
	assert.Panics(t, func() {
		NewCatalog([]Ingredient{
			{ID: "AA-0000001", Name: "a", MainCategory: CategoryCitrus},
			{ID: "AA-0000002", Name: "a", MainCategory: CategoryCitrus},
		})
	})
}
