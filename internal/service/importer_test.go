package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mechdex/mechdex/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path        string
		wantMTF     bool
		wantDefault model.UnitType
		wantOK      bool
	}{
		{"mechfiles/Atlas AS7-D.mtf", true, "", true},
		{"mechfiles/atlas/AS7-D.MTF", true, "", true},
		{"vehicles/Scorpion Light Tank.blk", false, model.UnitTypeVehicle, true},
		{"unit_files/vees/Warrior H-7.blk", false, model.UnitTypeVehicle, true},
		{"fighters/Stingray F-90.blk", false, model.UnitTypeFighter, true},
		{"aero/Shilone SL-17.blk", false, model.UnitTypeFighter, true},
		{"infantry/Foot Platoon.blk", false, model.UnitTypeOther, true},
		{"docs/readme.txt", false, "", false},
		{"mechfiles/", false, "", false},
	}

	for _, tt := range tests {
		isMTF, defaultType, ok := classify(tt.path)
		assert.Equal(t, tt.wantOK, ok, tt.path)
		assert.Equal(t, tt.wantMTF, isMTF, tt.path)
		if tt.wantOK && !tt.wantMTF {
			assert.Equal(t, tt.wantDefault, defaultType, tt.path)
		}
	}
}
