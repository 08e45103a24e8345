package parse

import (
	"strconv"
	"strings"

	"github.com/mechdex/mechdex/internal/model"
)

// ParseBLK parses a BLK (tag-delimited) unit file. BLK covers vehicles,
// fighters and other non-mech units; defaultType supplies the unit type
// when the file's own UnitType tag is missing or unrecognized.
//
// BLK armor blocks use a positional layout this importer does not read,
// so parsed units carry no location data. That is a deliberate coverage
// gap, not an oversight: location rows for BLK units stay absent rather
// than zero-filled.
func ParseBLK(content string, defaultType model.UnitType) *model.ParsedUnit {
	tags := make(map[string]string)

	// (location tag prefix, equipment line) in file order
	type locEquip struct {
		loc  string
		name string
	}
	var equipment []locEquip

	currentTag := ""
	inTag := false
	var currentValue strings.Builder

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "</"):
			if !inTag {
				continue
			}
			v := strings.TrimSpace(currentValue.String())
			lower := strings.ToLower(currentTag)
			if suffix := "equipment"; strings.HasSuffix(lower, suffix) {
				// Per-location equipment list: each line is one item
				loc := strings.TrimSpace(strings.TrimSuffix(lower, suffix))
				for _, eqLine := range strings.Split(v, "\n") {
					if eq := strings.TrimSpace(eqLine); eq != "" {
						equipment = append(equipment, locEquip{loc: loc, name: eq})
					}
				}
			} else {
				tags[currentTag] = v
			}
			inTag = false
			currentTag = ""
		case strings.HasPrefix(line, "<") && strings.HasSuffix(line, ">"):
			currentTag = line[1 : len(line)-1]
			currentValue.Reset()
			inTag = true
		case inTag:
			if currentValue.Len() > 0 {
				currentValue.WriteByte('\n')
			}
			currentValue.WriteString(line)
		}
	}

	chassis := strings.TrimSpace(tags["Name"])
	tonnageStr := strings.TrimSpace(tags["tonnage"])
	if chassis == "" || tonnageStr == "" {
		return nil
	}
	tonnage, err := strconv.ParseFloat(tonnageStr, 64)
	if err != nil {
		return nil
	}

	var mulID *int
	for _, k := range []string{"mul id:", "mul id"} {
		if v, ok := tags[k]; ok {
			if n, convErr := strconv.Atoi(strings.TrimSpace(v)); convErr == nil {
				mulID = &n
				break
			}
		}
	}

	var introYear *int
	if n, convErr := strconv.Atoi(strings.TrimSpace(tags["year"])); convErr == nil {
		introYear = &n
	}

	unitType := defaultType
	switch strings.ToLower(strings.TrimSpace(tags["UnitType"])) {
	case "tank", "vtol", "naval", "wheeled vehicle", "tracked vehicle":
		unitType = model.UnitTypeVehicle
	case "aero", "aerospacefighter", "conv_fighter", "conventional fighter":
		unitType = model.UnitTypeFighter
	}

	typeStr := strings.TrimSpace(tags["type"])

	var loadout []model.LoadoutEntry
	for _, le := range equipment {
		loadout = append(loadout, model.LoadoutEntry{
			Equipment: le.name,
			Location:  blkLocationName(le.loc),
			Quantity:  1,
		})
	}

	return &model.ParsedUnit{
		Chassis:     chassis,
		Model:       strings.TrimSpace(tags["Model"]),
		MulID:       mulID,
		UnitType:    unitType,
		TechBase:    model.TechBaseFromString(typeStr),
		RulesLevel:  model.RulesLevelFromTypeString(typeStr),
		IntroYear:   introYear,
		Source:      strings.TrimSpace(tags["source"]),
		Tonnage:     tonnage,
		Loadout:     DedupLoadout(loadout),
		Description: strings.Trim(strings.TrimSpace(tags["overview"]), `"`),
	}
}

// blkLocationName maps a BLK equipment tag prefix to a canonical
// location name. Returns "" for anything unrecognized.
func blkLocationName(loc string) string {
	switch loc {
	case "front":
		return "front"
	case "rear":
		return "rear"
	case "right":
		return "right_side"
	case "left":
		return "left_side"
	case "turret":
		return "turret"
	case "body":
		return "body"
	case "left arm":
		return "left_arm"
	case "right arm":
		return "right_arm"
	default:
		return ""
	}
}
