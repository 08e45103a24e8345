package mul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuickList = `{
  "Units": [
    {
      "Id": 144,
      "Name": "Atlas AS7-D",
      "Class": "Assault",
      "Variant": "AS7-D",
      "Tonnage": 100.0,
      "BattleValue": 1897,
      "Cost": 9626000,
      "Rules": "Introductory",
      "DateIntroduced": "2755",
      "Technology": {"Id": 1, "Name": "Inner Sphere"},
      "Role": {"Id": 7, "Name": "Juggernaut"},
      "Type": {"Id": 18, "Name": "BattleMech"}
    },
    {
      "Id": 99,
      "Name": "Mystery Mech",
      "Tonnage": 45.0,
      "BattleValue": 0,
      "Cost": 0,
      "DateIntroduced": ""
    }
  ]
}`

func TestParseQuickListWrapped(t *testing.T) {
	units, err := ParseQuickList([]byte(sampleQuickList))
	require.NoError(t, err)
	require.Len(t, units, 2)

	u := units[0]
	assert.Equal(t, 144, u.ID)
	assert.Equal(t, "Atlas AS7-D", u.Name)
	assert.Equal(t, 100.0, u.Tonnage)
	assert.Equal(t, "Juggernaut", u.RoleName())
	require.NotNil(t, u.BV())
	assert.Equal(t, 1897, *u.BV())
	require.NotNil(t, u.IntroYear())
	assert.Equal(t, 2755, *u.IntroYear())

	// Zero battle value and cost mean unknown, not free
	assert.Nil(t, units[1].BV())
	assert.Nil(t, units[1].CostValue())
	assert.Nil(t, units[1].IntroYear())
}

func TestParseQuickListBareArray(t *testing.T) {
	units, err := ParseQuickList([]byte(`[{"Id": 7, "Name": "Wasp WSP-1A"}]`))
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Wasp WSP-1A", units[0].Name)
}

func TestParseQuickListInvalid(t *testing.T) {
	_, err := ParseQuickList([]byte("not json"))
	assert.Error(t, err)
}
