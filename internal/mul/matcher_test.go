package mul

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechdex/mechdex/internal/model"
)

func testMatcher(overrides map[int]string) *Matcher {
	bySlug := map[string]int{
		"atlas-as7-d":     1,
		"fire-moth-a":     2,
		"warhammer-whm-6r": 3,
		"special-case":    4,
		// Stored slug differs from what the full name would slug to,
		// so only the name index can resolve this unit.
		"grasshopper-ghr-5h-kurita": 5,
	}
	byName := map[string]model.UnitRef{
		"atlas as7-d":        {ID: 1, Slug: "atlas-as7-d"},
		"fire moth a":        {ID: 2, Slug: "fire-moth-a"},
		"warhammer whm-6r":   {ID: 3, Slug: "warhammer-whm-6r"},
		"grasshopper ghr-5h": {ID: 5, Slug: "grasshopper-ghr-5h-kurita"},
	}
	return NewMatcher(bySlug, byName, overrides)
}

func TestMatcherExactSlug(t *testing.T) {
	m := testMatcher(nil)
	res, ok := m.Match(model.RegistryUnit{ID: 10, Name: "Atlas AS7-D"})
	require.True(t, ok)
	assert.Equal(t, 1, res.UnitID)
	assert.Equal(t, "exact_slug", res.Strategy)
}

func TestMatcherDualName(t *testing.T) {
	m := testMatcher(nil)
	res, ok := m.Match(model.RegistryUnit{ID: 11, Name: "Dasher (Fire Moth) A"})
	require.True(t, ok)
	assert.Equal(t, 2, res.UnitID)
	assert.Equal(t, "dual_name", res.Strategy)
	assert.Equal(t, "fire-moth-a", res.Slug)
}

func TestMatcherNormalizedSlug(t *testing.T) {
	m := testMatcher(nil)
	res, ok := m.Match(model.RegistryUnit{ID: 12, Name: "Atlas AS7-D (Danielle)"})
	require.True(t, ok)
	assert.Equal(t, 1, res.UnitID)
	assert.Equal(t, "normalized_slug", res.Strategy)
}

func TestMatcherOverrideWins(t *testing.T) {
	// Override beats the exact-slug hit the name would otherwise produce
	m := testMatcher(map[int]string{13: "special-case"})
	res, ok := m.Match(model.RegistryUnit{ID: 13, Name: "Atlas AS7-D"})
	require.True(t, ok)
	assert.Equal(t, 4, res.UnitID)
	assert.Equal(t, "override", res.Strategy)
}

func TestMatcherNameInsensitive(t *testing.T) {
	m := testMatcher(nil)
	res, ok := m.Match(model.RegistryUnit{ID: 15, Name: "GRASSHOPPER GHR-5H"})
	require.True(t, ok)
	assert.Equal(t, 5, res.UnitID)
	assert.Equal(t, "name_insensitive", res.Strategy)
	// The stored slug, not one recomputed from the registry name
	assert.Equal(t, "grasshopper-ghr-5h-kurita", res.Slug)
}

func TestMatcherNameInsensitiveNormalizedAlternate(t *testing.T) {
	// Every slug strategy misses; the annotation-stripped name hits
	// the name index.
	m := testMatcher(nil)
	res, ok := m.Match(model.RegistryUnit{ID: 16, Name: "Grasshopper GHR-5H (Hisao)"})
	require.True(t, ok)
	assert.Equal(t, 5, res.UnitID)
	assert.Equal(t, "name_insensitive", res.Strategy)
}

func TestMatcherNoMatch(t *testing.T) {
	m := testMatcher(nil)
	_, ok := m.Match(model.RegistryUnit{ID: 14, Name: "Nonexistent Unit Z-99"})
	assert.False(t, ok)
}

func TestDualNameAlternatives(t *testing.T) {
	assert.Equal(t,
		[]string{"Dasher A", "Fire Moth A"},
		DualNameAlternatives("Dasher (Fire Moth) A"))

	// Trailing parenthetical with nothing after it is an annotation
	assert.Nil(t, DualNameAlternatives("Atlas AS7-D (Danielle)"))
	assert.Nil(t, DualNameAlternatives("Atlas AS7-D"))
	assert.Nil(t, DualNameAlternatives("(Standard) X"))
}

func TestExtractClanName(t *testing.T) {
	assert.Equal(t, "Fire Moth", ExtractClanName("Dasher (Fire Moth) A"))
	assert.Equal(t, "", ExtractClanName("Atlas AS7-D"))
	assert.Equal(t, "", ExtractClanName("Atlas AS7-D (Danielle)"))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Atlas AS7-D", normalizeName("Atlas AS7-D (Danielle)"))
	assert.Equal(t, "Atlas AS7-D", normalizeName("  Atlas   AS7-D  "))
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"144": "atlas-as7-d"}`), 0o644))

	overrides, err := LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{144: "atlas-as7-d"}, overrides)
}

func TestLoadOverridesMissingFile(t *testing.T) {
	overrides, err := LoadOverrides(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestWriteUnmatchedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unmatched.csv")
	units := []UnmatchedUnit{
		{MulID: 99, Name: "Mystery Mech", ComputedSlug: "mystery-mech", Tonnage: 45},
	}
	require.NoError(t, WriteUnmatchedCSV(path, units))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mul_id,mul_name,computed_slug,tonnage\n99,Mystery Mech,mystery-mech,45\n", string(data))
}

func TestInferFactionType(t *testing.T) {
	assert.Equal(t, "clan", InferFactionType("Clan Snow Raven"))
	assert.Equal(t, "periphery", InferFactionType("Calderon Protectorate of the Periphery"))
	assert.Equal(t, "periphery", InferFactionType("Taurian Concordat"))
	assert.Equal(t, "mercenary", InferFactionType("Mercenary"))
	assert.Equal(t, "other", InferFactionType("Sol Advance Guard"))
}
