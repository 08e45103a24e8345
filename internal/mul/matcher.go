package mul

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mechdex/mechdex/internal/model"
	"github.com/mechdex/mechdex/internal/parse"
)

// MatchResult identifies the local unit a registry entry resolved to
type MatchResult struct {
	UnitID   int
	Slug     string
	Strategy string
}

// UnmatchedUnit is a registry entry no strategy could resolve; these
// are reported as CSV for manual curation.
type UnmatchedUnit struct {
	MulID        int
	Name         string
	ComputedSlug string
	Tonnage      float64
}

type strategy struct {
	name string
	fn   func(u model.RegistryUnit) (MatchResult, bool)
}

// Matcher resolves registry units to local units by trying a fixed
// sequence of identity strategies, most precise first. Adding a
// strategy means appending to the list in NewMatcher; the cascade
// order is the contract.
type Matcher struct {
	bySlug     map[string]int
	byName     map[string]model.UnitRef
	overrides  map[int]string
	strategies []strategy
}

// NewMatcher builds a matcher over the local unit indexes. bySlug maps
// unit slug to unit ID; byName maps lowercased full name to the unit's
// id and stored slug; overrides maps MUL ID directly to a local slug
// and always wins.
func NewMatcher(bySlug map[string]int, byName map[string]model.UnitRef, overrides map[int]string) *Matcher {
	m := &Matcher{
		bySlug:    bySlug,
		byName:    byName,
		overrides: overrides,
	}
	m.strategies = []strategy{
		{"override", m.matchOverride},
		{"exact_slug", m.matchExactSlug},
		{"dual_name", m.matchDualName},
		{"normalized_slug", m.matchNormalizedSlug},
		{"name_insensitive", m.matchNameInsensitive},
	}
	return m
}

// Match tries each strategy in order and returns the first hit
func (m *Matcher) Match(u model.RegistryUnit) (MatchResult, bool) {
	for _, s := range m.strategies {
		if res, ok := s.fn(u); ok {
			res.Strategy = s.name
			return res, true
		}
	}
	return MatchResult{}, false
}

func (m *Matcher) lookupSlug(slug string) (MatchResult, bool) {
	if slug == "" {
		return MatchResult{}, false
	}
	if id, ok := m.bySlug[slug]; ok {
		return MatchResult{UnitID: id, Slug: slug}, true
	}
	return MatchResult{}, false
}

func (m *Matcher) matchOverride(u model.RegistryUnit) (MatchResult, bool) {
	slug, ok := m.overrides[u.ID]
	if !ok {
		return MatchResult{}, false
	}
	return m.lookupSlug(slug)
}

func (m *Matcher) matchExactSlug(u model.RegistryUnit) (MatchResult, bool) {
	return m.lookupSlug(parse.ToSlug(u.Name))
}

func (m *Matcher) matchDualName(u model.RegistryUnit) (MatchResult, bool) {
	for _, alt := range DualNameAlternatives(u.Name) {
		if res, ok := m.lookupSlug(parse.ToSlug(alt)); ok {
			return res, true
		}
	}
	return MatchResult{}, false
}

func (m *Matcher) matchNormalizedSlug(u model.RegistryUnit) (MatchResult, bool) {
	return m.lookupSlug(parse.ToSlug(normalizeName(u.Name)))
}

func (m *Matcher) matchNameInsensitive(u model.RegistryUnit) (MatchResult, bool) {
	candidates := []string{u.Name, normalizeName(u.Name)}
	candidates = append(candidates, DualNameAlternatives(u.Name)...)

	for _, cand := range candidates {
		key := strings.ToLower(strings.TrimSpace(cand))
		if key == "" {
			continue
		}
		if ref, ok := m.byName[key]; ok {
			return MatchResult{UnitID: ref.ID, Slug: ref.Slug}, true
		}
	}
	return MatchResult{}, false
}

// DualNameAlternatives expands a dual-named unit into both readings.
// The registry writes clan units as "Reported (Official) Variant",
// e.g. "Dasher (Fire Moth) A" yields "Dasher A" and "Fire Moth A".
// Names with a trailing parenthetical and nothing after it are left
// alone; those parens are annotations, not alternate names.
func DualNameAlternatives(name string) []string {
	open := strings.Index(name, "(")
	if open < 0 {
		return nil
	}
	closing := strings.Index(name[open:], ")")
	if closing < 0 {
		return nil
	}
	closing += open

	outer := strings.TrimSpace(name[:open])
	inner := strings.TrimSpace(name[open+1 : closing])
	suffix := strings.TrimSpace(name[closing+1:])
	if outer == "" || inner == "" || suffix == "" {
		return nil
	}

	return []string{
		outer + " " + suffix,
		inner + " " + suffix,
	}
}

// ExtractClanName returns the parenthesized alternate name from a
// dual-named unit ("Dasher (Fire Moth) A" -> "Fire Moth"), or "" when
// the name has no such alternate.
func ExtractClanName(name string) string {
	alts := DualNameAlternatives(name)
	if alts == nil {
		return ""
	}
	open := strings.Index(name, "(")
	closing := strings.Index(name[open:], ")") + open
	return strings.TrimSpace(name[open+1 : closing])
}

// normalizeName strips a trailing parenthesized group and collapses
// runs of whitespace, e.g. "Atlas AS7-D (Danielle)" -> "Atlas AS7-D".
func normalizeName(name string) string {
	s := strings.TrimSpace(name)
	if strings.HasSuffix(s, ")") {
		if idx := strings.LastIndex(s, "("); idx > 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// LoadOverrides reads a JSON file mapping MUL IDs to local unit slugs.
// A missing file is treated as an empty override set.
func LoadOverrides(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int]string{}, nil
		}
		return nil, fmt.Errorf("failed to read overrides file %s: %w", path, err)
	}

	overrides := make(map[int]string)
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse overrides file %s: %w", path, err)
	}
	return overrides, nil
}

// WriteUnmatchedCSV writes the unmatched report for manual review
func WriteUnmatchedCSV(path string, units []UnmatchedUnit) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create unmatched report %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"mul_id", "mul_name", "computed_slug", "tonnage"}); err != nil {
		return fmt.Errorf("failed to write unmatched report header: %w", err)
	}
	for _, u := range units {
		record := []string{
			strconv.Itoa(u.MulID),
			u.Name,
			u.ComputedSlug,
			strconv.FormatFloat(u.Tonnage, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write unmatched report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush unmatched report: %w", err)
	}
	return nil
}
