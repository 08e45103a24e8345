// Package parse turns MegaMek MTF and BLK unit files into the canonical
// in-memory unit model.
package parse

import (
	"strings"

	"github.com/mechdex/mechdex/internal/model"
)

// ToSlug converts a display name to a lowercase hyphenated identifier.
// Slugifying an already-slugified string returns it unchanged.
func ToSlug(s string) string {
	var b strings.Builder
	prevHyphen := true // trims leading hyphens
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b.WriteRune(c)
			prevHyphen = false
		case c >= 'A' && c <= 'Z':
			b.WriteRune(c + ('a' - 'A'))
			prevHyphen = false
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// CategorizeEquipment infers an equipment category from its display name
func CategorizeEquipment(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "ammo"):
		return "ammunition"
	case strings.Contains(lower, "heat sink"):
		return "heat_sink"
	case strings.Contains(lower, "jump jet"):
		return "jump_jet"
	case strings.Contains(lower, "targeting computer"):
		return "targeting_computer"
	case strings.Contains(lower, "gyro"):
		return "gyro"
	case strings.Contains(lower, "cockpit"):
		return "cockpit"
	case strings.Contains(lower, "endo steel"), strings.Contains(lower, "structure"):
		return "structure"
	case strings.Contains(lower, "ferro"),
		strings.Contains(lower, "reactive armor"),
		strings.Contains(lower, "stealth"):
		return "armor"
	case strings.Contains(lower, "engine"):
		return "engine"
	case strings.Contains(lower, "laser"),
		strings.Contains(lower, "ppc"),
		strings.Contains(lower, "flamer"),
		strings.Contains(lower, "plasma rifle"):
		return "energy_weapon"
	case strings.Contains(lower, "lrm"),
		strings.Contains(lower, "srm"),
		strings.Contains(lower, "streak"),
		strings.Contains(lower, "narc"),
		strings.Contains(lower, "ams"),
		strings.Contains(lower, "mml"),
		strings.Contains(lower, "atm"),
		strings.Contains(lower, "rocket"),
		strings.Contains(lower, "arrow"),
		strings.Contains(lower, "thunderbolt"):
		return "missile_weapon"
	case strings.Contains(lower, "autocannon"),
		strings.Contains(lower, "ac/"),
		strings.Contains(lower, "gauss"),
		strings.Contains(lower, "rifle"),
		strings.Contains(lower, "lbx"),
		strings.Contains(lower, "ultra"),
		strings.Contains(lower, "rotary"),
		strings.Contains(lower, "hag"):
		return "ballistic_weapon"
	default:
		return "equipment"
	}
}

// EquipmentTechBase infers the tech base of a piece of equipment from
// its MegaMek name prefix ("CL..." / "Clan ...")
func EquipmentTechBase(name string) model.TechBase {
	if strings.HasPrefix(name, "CL") || strings.HasPrefix(strings.ToLower(name), "clan") {
		return model.TechBaseClan
	}
	return model.TechBaseInnerSphere
}
