package model

import "strings"

// UnitType classifies a unit design family
type UnitType string

const (
	UnitTypeMek     UnitType = "mek"
	UnitTypeVehicle UnitType = "vehicle"
	UnitTypeFighter UnitType = "fighter"
	UnitTypeOther   UnitType = "other"
)

// TechBase identifies the technology lineage of a unit or equipment
type TechBase string

const (
	TechBaseInnerSphere TechBase = "inner_sphere"
	TechBaseClan        TechBase = "clan"
	TechBaseMixed       TechBase = "mixed"
	TechBasePrimitive   TechBase = "primitive"
)

// TechBaseFromString parses a free-form tech base string like
// "Clan", "Inner Sphere", "Mixed (IS Chassis)"
func TechBaseFromString(s string) TechBase {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "clan") && !strings.Contains(lower, "inner"):
		return TechBaseClan
	case strings.Contains(lower, "mixed"):
		return TechBaseMixed
	case strings.Contains(lower, "primitive"):
		return TechBasePrimitive
	default:
		return TechBaseInnerSphere
	}
}

// RulesLevel is the tournament legality tier of a unit
type RulesLevel string

const (
	RulesIntroductory RulesLevel = "introductory"
	RulesStandard     RulesLevel = "standard"
	RulesAdvanced     RulesLevel = "advanced"
	RulesExperimental RulesLevel = "experimental"
	RulesUnofficial   RulesLevel = "unofficial"
)

// RulesLevelFromInt parses the integer used in MTF "rules level:N" lines
func RulesLevelFromInt(n int) RulesLevel {
	switch n {
	case 0:
		return RulesIntroductory
	case 1:
		return RulesStandard
	case 2:
		return RulesAdvanced
	case 3:
		return RulesExperimental
	case 4, 5:
		return RulesUnofficial
	default:
		return RulesStandard
	}
}

// RulesLevelFromTypeString parses the BLK <type> string like "IS Level 2"
func RulesLevelFromTypeString(s string) RulesLevel {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "level 1"):
		return RulesStandard
	case strings.Contains(lower, "level 2"):
		return RulesAdvanced
	case strings.Contains(lower, "level 3"):
		return RulesExperimental
	case strings.Contains(lower, "unofficial"):
		return RulesUnofficial
	default:
		return RulesStandard
	}
}

// ParsedUnit is the canonical output of both unit file parsers
type ParsedUnit struct {
	Chassis     string
	Model       string
	MulID       *int
	UnitType    UnitType
	TechBase    TechBase
	RulesLevel  RulesLevel
	IntroYear   *int
	Source      string
	Tonnage     float64
	Locations   []Location
	Loadout     []LoadoutEntry
	Quirks      []string
	Description string
	MechDetail  *MechDetail
}

// FullName joins chassis and model for display and slug derivation
func (u *ParsedUnit) FullName() string {
	if u.Model == "" {
		return u.Chassis
	}
	return u.Chassis + " " + u.Model
}

// Location holds per-body-region armor and structure values.
// A region absent from the source file has no Location entry at all.
type Location struct {
	Name      string
	Armor     *int
	RearArmor *int
	Structure *int
}

// LoadoutEntry is one equipment item mounted on a unit.
// Repeated mentions of the same (equipment, location, rear) triple
// collapse into a single entry with a summed quantity.
type LoadoutEntry struct {
	Equipment string
	Location  string
	Quantity  int
	Rear      bool
}

// MechDetail carries structural data specific to legged units
type MechDetail struct {
	Config        string
	IsOmniMech    bool
	EngineRating  *int
	EngineType    string
	WalkMP        *int
	JumpMP        *int
	HeatSinkCount *int
	HeatSinkType  string
	StructureType string
	ArmorType     string
	GyroType      string
	CockpitType   string
	MyomerType    string
}
