package model

import "strings"

// RegistryUnit is one unit summary from the Master Unit List QuickList JSON.
// Records are read once per run and never mutated.
type RegistryUnit struct {
	ID             int      `json:"Id"`
	Name           string   `json:"Name"`
	Class          string   `json:"Class"`
	Variant        string   `json:"Variant"`
	Tonnage        float64  `json:"Tonnage"`
	BattleValue    int      `json:"BattleValue"`
	Cost           int64    `json:"Cost"`
	Rules          string   `json:"Rules"`
	DateIntroduced string   `json:"DateIntroduced"`
	Technology     *TagName `json:"Technology"`
	Role           *TagName `json:"Role"`
	Type           *TagName `json:"Type"`
}

// TagName is the MUL's {Id, Name} tag shape
type TagName struct {
	ID   *int   `json:"Id"`
	Name string `json:"Name"`
}

// UnitRef points at a persisted unit row by id and its stored slug
type UnitRef struct {
	ID   int
	Slug string
}

// IntroYear extracts the introduction year from the free-form
// DateIntroduced string. Returns nil when no 4-digit run is present.
func (u *RegistryUnit) IntroYear() *int {
	s := strings.TrimSpace(u.DateIntroduced)
	for i := 0; i+4 <= len(s); i++ {
		if isDigit(s[i]) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
			year := int(s[i]-'0')*1000 + int(s[i+1]-'0')*100 + int(s[i+2]-'0')*10 + int(s[i+3]-'0')
			return &year
		}
	}
	return nil
}

// RoleName returns the trimmed role tag name, or "" when absent
func (u *RegistryUnit) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return strings.TrimSpace(u.Role.Name)
}

// BV returns the battle value, treating the MUL's 0 sentinel as unknown
func (u *RegistryUnit) BV() *int {
	if u.BattleValue > 0 {
		v := u.BattleValue
		return &v
	}
	return nil
}

// CostValue returns the C-bill cost, treating 0 as unknown
func (u *RegistryUnit) CostValue() *int64 {
	if u.Cost > 0 {
		v := u.Cost
		return &v
	}
	return nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// AvailabilityRecord is one (era, faction) tuple extracted from a unit
// detail page. Availability on the MUL is binary: if listed, the unit
// was fielded by that faction during that era.
type AvailabilityRecord struct {
	EraName     string
	FactionName string
}
