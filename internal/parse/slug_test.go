package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mechdex/mechdex/internal/model"
)

func TestToSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Clan Wolf", "clan-wolf"},
		{"Atlas AS7-D", "atlas-as7-d"},
		{"Dasher (Fire Moth) A", "dasher-fire-moth-a"},
		{"  leading  spaces ", "leading-spaces"},
		{"Hell's Horses", "hell-s-horses"},
		{"AC/20 Ammo", "ac-20-ammo"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToSlug(tt.in), tt.in)
	}
}

func TestToSlugIdempotent(t *testing.T) {
	inputs := []string{"Clan Wolf", "Atlas AS7-D (Danielle)", "already-a-slug"}
	for _, in := range inputs {
		slug := ToSlug(in)
		assert.Equal(t, slug, ToSlug(slug), in)
	}
}

func TestCategorizeEquipment(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"AC/20 Ammo", "ammunition"},
		{"Double Heat Sink", "heat_sink"},
		{"Jump Jet", "jump_jet"},
		{"Targeting Computer", "targeting_computer"},
		{"ER Large Laser", "energy_weapon"},
		{"LRM 20", "missile_weapon"},
		{"Gauss Rifle", "ballistic_weapon"},
		{"Guardian ECM Suite", "equipment"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeEquipment(tt.name), tt.name)
	}
}

func TestEquipmentTechBase(t *testing.T) {
	assert.Equal(t, model.TechBaseClan, EquipmentTechBase("CLERLargeLaser"))
	assert.Equal(t, model.TechBaseClan, EquipmentTechBase("Clan Gauss Rifle"))
	assert.Equal(t, model.TechBaseInnerSphere, EquipmentTechBase("Medium Laser"))
}
