package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mechdex/mechdex/internal/model"
)

const sampleBLK = `#building block data file
<BlockVersion>
1
</BlockVersion>

<UnitType>
Tank
</UnitType>

<Name>
Scorpion Light Tank
</Name>

<Model>
(Standard)
</Model>

<mul id:>
2857
</mul id:>

<year>
2807
</year>

<type>
IS Level 1
</type>

<tonnage>
25
</tonnage>

<source>
TRO: 3039
</source>

<Front Equipment>
AC/5
</Front Equipment>

<Turret Equipment>
AC/5 Ammo
Machine Gun
Machine Gun
</Turret Equipment>
`

func TestParseBLK(t *testing.T) {
	unit := ParseBLK(sampleBLK, model.UnitTypeOther)
	require.NotNil(t, unit)

	assert.Equal(t, "Scorpion Light Tank", unit.Chassis)
	assert.Equal(t, "(Standard)", unit.Model)
	assert.Equal(t, model.UnitTypeVehicle, unit.UnitType)
	assert.Equal(t, model.TechBaseInnerSphere, unit.TechBase)
	assert.Equal(t, model.RulesStandard, unit.RulesLevel)
	assert.Equal(t, 25.0, unit.Tonnage)
	assert.Equal(t, "TRO: 3039", unit.Source)
	require.NotNil(t, unit.MulID)
	assert.Equal(t, 2857, *unit.MulID)
	require.NotNil(t, unit.IntroYear)
	assert.Equal(t, 2807, *unit.IntroYear)

	// BLK armor blocks are not parsed; no location rows, ever
	assert.Empty(t, unit.Locations)
	assert.Nil(t, unit.MechDetail)
}

func TestParseBLKLoadout(t *testing.T) {
	unit := ParseBLK(sampleBLK, model.UnitTypeOther)
	require.NotNil(t, unit)
	require.Len(t, unit.Loadout, 3)

	byKey := make(map[string]model.LoadoutEntry)
	for _, e := range unit.Loadout {
		byKey[e.Equipment+"@"+e.Location] = e
	}

	assert.Equal(t, 1, byKey["AC/5@front"].Quantity)
	assert.Equal(t, 1, byKey["AC/5 Ammo@turret"].Quantity)
	assert.Equal(t, 2, byKey["Machine Gun@turret"].Quantity)
}

func TestParseBLKDefaultUnitType(t *testing.T) {
	content := "<Name>\nStub\n</Name>\n<tonnage>\n50\n</tonnage>\n"
	unit := ParseBLK(content, model.UnitTypeFighter)
	require.NotNil(t, unit)
	assert.Equal(t, model.UnitTypeFighter, unit.UnitType)
}

func TestParseBLKRulesLevelFromType(t *testing.T) {
	tests := []struct {
		typeStr string
		want    model.RulesLevel
	}{
		{"IS Level 1", model.RulesStandard},
		{"IS Level 2", model.RulesAdvanced},
		{"Clan Level 3", model.RulesExperimental},
		{"Unofficial", model.RulesUnofficial},
		{"Mixed (IS Chassis)", model.RulesStandard},
	}

	for _, tt := range tests {
		content := "<Name>\nStub\n</Name>\n<tonnage>\n50\n</tonnage>\n<type>\n" + tt.typeStr + "\n</type>\n"
		unit := ParseBLK(content, model.UnitTypeOther)
		require.NotNil(t, unit, tt.typeStr)
		assert.Equal(t, tt.want, unit.RulesLevel, tt.typeStr)
	}
}

func TestParseBLKMissingName(t *testing.T) {
	assert.Nil(t, ParseBLK("<tonnage>\n50\n</tonnage>\n", model.UnitTypeOther))
}

func TestParseBLKMissingTonnage(t *testing.T) {
	assert.Nil(t, ParseBLK("<Name>\nStub\n</Name>\n", model.UnitTypeOther))
}
