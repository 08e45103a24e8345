package parse

import (
	"strconv"
	"strings"

	"github.com/mechdex/mechdex/internal/model"
)

// scanState tracks where the line scanner is inside an MTF file
type scanState int

const (
	stateTopLevel scanState = iota
	stateInLocation
)

type armorVals struct {
	front *int
	rear  *int
}

// ParseMTF parses an MTF (mech) unit file. Returns nil when the content
// is structurally incomplete: a missing chassis name or tonnage is an
// invalid parse, not a zero-value unit.
func ParseMTF(content string) *model.ParsedUnit {
	var (
		chassis     string
		mdl         string
		mulID       *int
		techBase    = model.TechBaseInnerSphere
		rulesLevel  = model.RulesStandard
		introYear   *int
		source      string
		tonnage     *float64
		description string
		quirks      []string
		detail      model.MechDetail
	)

	// Armor values keyed by short location code (LA, RT, CT, ...)
	armor := make(map[string]*armorVals)

	var loadout []model.LoadoutEntry

	state := stateTopLevel
	currentLoc := ""

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		colon := strings.Index(line, ":")
		if colon < 0 {
			// Continuation line: inside a location section these are
			// critical-slot entries, anywhere else they are ignored.
			if state == stateInLocation && currentLoc != "" {
				addSlotEquipment(&loadout, currentLoc, line)
			}
			continue
		}

		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		val := strings.TrimSpace(line[colon+1:])

		// A key with an empty value is a section header. Known location
		// headers open a location section; anything else drops back to
		// top level.
		if val == "" {
			currentLoc = mtfLocationName(key)
			if currentLoc != "" {
				state = stateInLocation
			} else {
				state = stateTopLevel
			}
			continue
		}

		state = stateTopLevel
		currentLoc = ""

		switch key {
		case "chassis":
			chassis = val
		case "model":
			mdl = val
		case "mul id":
			if n, err := strconv.Atoi(val); err == nil {
				mulID = &n
			}
		case "config":
			detail.Config = val
			detail.IsOmniMech = strings.Contains(strings.ToLower(val), "omnimech")
		case "techbase", "tech base":
			techBase = model.TechBaseFromString(val)
		case "era":
			if n, err := strconv.Atoi(val); err == nil {
				introYear = &n
			}
		case "source":
			source = val
		case "rules level":
			if n, err := strconv.Atoi(val); err == nil {
				rulesLevel = model.RulesLevelFromInt(n)
			}
		case "mass":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				tonnage = &f
			}
		case "engine":
			detail.EngineRating, detail.EngineType = splitNumericPrefix(val)
		case "walk mp":
			if n, err := strconv.Atoi(val); err == nil {
				detail.WalkMP = &n
			}
		case "jump mp":
			if n, err := strconv.Atoi(val); err == nil {
				detail.JumpMP = &n
			}
		case "heat sinks":
			detail.HeatSinkCount, detail.HeatSinkType = splitNumericPrefix(val)
		case "structure":
			detail.StructureType = val
		case "armor":
			detail.ArmorType = val
		case "gyro":
			detail.GyroType = val
		case "cockpit":
			detail.CockpitType = val
		case "myomer":
			detail.MyomerType = val
		case "quirk":
			quirks = append(quirks, ToSlug(val))
		case "overview":
			description = strings.Trim(val, `"`)
		}

		// Armor value lines like "LA armor:34". The rear-torso codes
		// redirect into the matching torso's rear slot instead of
		// creating a location of their own.
		if rest, ok := strings.CutSuffix(key, " armor"); ok {
			code := strings.ToUpper(strings.TrimSpace(rest))
			n, err := strconv.Atoi(val)
			if err == nil {
				switch code {
				case "RTL":
					armorEntry(armor, "LT").rear = &n
				case "RTR":
					armorEntry(armor, "RT").rear = &n
				case "RTC":
					armorEntry(armor, "CT").rear = &n
				default:
					armorEntry(armor, code).front = &n
				}
			}
		}
	}

	// Second pass for the weapon block. Weapon lines follow "Weapons:N"
	// with no key of their own and use a comma grammar that cannot be
	// told apart from location continuation lines in the first pass.
	readingWeapons := false
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "weapons:") {
			readingWeapons = true
			continue
		}
		if !readingWeapons {
			continue
		}
		if !strings.Contains(line, ",") {
			// Next key:value pair or location header ends the block
			readingWeapons = false
			continue
		}
		parseWeaponLine(line, &loadout)
	}

	if chassis == "" || tonnage == nil {
		return nil
	}

	return &model.ParsedUnit{
		Chassis:     chassis,
		Model:       mdl,
		MulID:       mulID,
		UnitType:    model.UnitTypeMek,
		TechBase:    techBase,
		RulesLevel:  rulesLevel,
		IntroYear:   introYear,
		Source:      source,
		Tonnage:     *tonnage,
		Locations:   buildMekLocations(armor),
		Loadout:     DedupLoadout(loadout),
		Quirks:      quirks,
		Description: description,
		MechDetail:  &detail,
	}
}

// addSlotEquipment records one critical-slot line from a location section
func addSlotEquipment(loadout *[]model.LoadoutEntry, loc, line string) {
	rear := strings.HasSuffix(line, "(R)")
	equip := strings.TrimSpace(strings.TrimSuffix(line, "(R)"))
	if equip == "" || equip == "-Empty-" || isStructuralComponent(equip) {
		return
	}
	for i := range *loadout {
		e := &(*loadout)[i]
		if e.Equipment == equip && e.Location == loc && e.Rear == rear {
			e.Quantity++
			return
		}
	}
	*loadout = append(*loadout, model.LoadoutEntry{
		Equipment: equip,
		Location:  loc,
		Quantity:  1,
		Rear:      rear,
	})
}

// parseWeaponLine parses "[qty] name, location[, extra]" weapon lines
func parseWeaponLine(line string, loadout *[]model.LoadoutEntry) {
	parts := strings.SplitN(line, ",", 3)
	if len(parts) < 2 {
		return
	}

	qty, name := splitQuantityPrefix(strings.TrimSpace(parts[0]))
	if name == "" || name == "-Empty-" {
		return
	}

	rawLoc := strings.TrimSpace(parts[1])
	rear := strings.HasSuffix(rawLoc, "(R)")
	loc := mtfLocationName(strings.ToLower(strings.TrimSpace(strings.TrimSuffix(rawLoc, "(R)"))))

	for i := range *loadout {
		e := &(*loadout)[i]
		if e.Equipment == name && e.Location == loc && e.Rear == rear {
			e.Quantity += qty
			return
		}
	}
	*loadout = append(*loadout, model.LoadoutEntry{
		Equipment: name,
		Location:  loc,
		Quantity:  qty,
		Rear:      rear,
	})
}

// splitQuantityPrefix splits a leading count off an equipment name.
// The split only happens when the whole first token parses as an
// integer; "2 LRM 20" is two LRM 20s, "AC/5 Ammo" is one item.
func splitQuantityPrefix(s string) (int, string) {
	first, rest, found := strings.Cut(s, " ")
	if !found {
		return 1, s
	}
	if n, err := strconv.Atoi(first); err == nil && n > 0 {
		return n, strings.TrimSpace(rest)
	}
	return 1, s
}

// splitNumericPrefix splits fields like "300 Fusion Engine" or
// "10 Double" into a leading number and the remaining type name.
// The split only happens when the first token is numeric.
func splitNumericPrefix(s string) (*int, string) {
	first, rest, found := strings.Cut(strings.TrimSpace(s), " ")
	if !found {
		return nil, s
	}
	if n, err := strconv.Atoi(first); err == nil {
		return &n, strings.TrimSpace(rest)
	}
	return nil, s
}

func armorEntry(m map[string]*armorVals, code string) *armorVals {
	if v, ok := m[code]; ok {
		return v
	}
	v := &armorVals{}
	m[code] = v
	return v
}

// mekLocationOrder fixes the emit order of location rows
var mekLocationOrder = []struct {
	code string
	name string
}{
	{"LA", "left_arm"},
	{"RA", "right_arm"},
	{"LT", "left_torso"},
	{"RT", "right_torso"},
	{"CT", "center_torso"},
	{"HD", "head"},
	{"LL", "left_leg"},
	{"RL", "right_leg"},
}

func buildMekLocations(armor map[string]*armorVals) []model.Location {
	var locs []model.Location
	for _, m := range mekLocationOrder {
		v, ok := armor[m.code]
		if !ok {
			continue
		}
		locs = append(locs, model.Location{
			Name:      m.name,
			Armor:     v.front,
			RearArmor: v.rear,
		})
	}
	return locs
}

// mtfLocationName maps a location header or short code to its canonical
// name. Returns "" for anything unrecognized.
func mtfLocationName(key string) string {
	switch key {
	case "left arm", "la":
		return "left_arm"
	case "right arm", "ra":
		return "right_arm"
	case "left torso", "lt":
		return "left_torso"
	case "right torso", "rt":
		return "right_torso"
	case "center torso", "ct":
		return "center_torso"
	case "head", "hd":
		return "head"
	case "left leg", "ll":
		return "left_leg"
	case "right leg", "rl":
		return "right_leg"
	default:
		return ""
	}
}

// isStructuralComponent filters actuators, engines and other fixed
// internals out of location slot listings
func isStructuralComponent(s string) bool {
	switch s {
	case "Shoulder", "Upper Arm Actuator", "Lower Arm Actuator", "Hand Actuator",
		"Hip", "Upper Leg Actuator", "Lower Leg Actuator", "Foot Actuator",
		"Life Support", "Sensors", "Cockpit",
		"Gyro", "Compact Gyro", "Heavy Duty Gyro", "XL Gyro",
		"-Empty-":
		return true
	}
	return strings.Contains(s, "Engine") ||
		strings.Contains(s, "Endo Steel") ||
		strings.Contains(s, "Ferro-Fibrous") ||
		strings.Contains(s, "Reactive Armor") ||
		strings.Contains(s, "Stealth Armor") ||
		strings.Contains(s, "CASE")
}

// DedupLoadout collapses duplicate (equipment, location, rear) entries
// into one entry with a summed quantity. Running it on its own output
// is a no-op.
func DedupLoadout(entries []model.LoadoutEntry) []model.LoadoutEntry {
	var out []model.LoadoutEntry
	for _, entry := range entries {
		merged := false
		for i := range out {
			e := &out[i]
			if e.Equipment == entry.Equipment && e.Location == entry.Location && e.Rear == entry.Rear {
				e.Quantity += entry.Quantity
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, entry)
		}
	}
	return out
}
