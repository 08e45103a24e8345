package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mechdex/mechdex/internal/model"
)

// RegistryStore handles database operations for reconciling Master
// Unit List data against locally imported units.
type RegistryStore struct {
	db *sql.DB
}

// NewRegistryStore creates a new RegistryStore
func NewRegistryStore(db *sql.DB) *RegistryStore {
	return &RegistryStore{db: db}
}

// LoadUnitIndexes loads all units into lookup maps for matching: slug
// to id, and lowercased full name to the unit's id and stored slug.
// The name index keeps the stored slug so name-based matches report
// the slug actually in the database, not one recomputed from the name.
func (s *RegistryStore) LoadUnitIndexes(ctx context.Context) (bySlug map[string]int, byName map[string]model.UnitRef, err error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, slug, lower(full_name) FROM units")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load units: %w", err)
	}
	defer rows.Close()

	bySlug = make(map[string]int)
	byName = make(map[string]model.UnitRef)
	for rows.Next() {
		var id int
		var slug, name string
		if err := rows.Scan(&id, &slug, &name); err != nil {
			return nil, nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		bySlug[slug] = id
		byName[name] = model.UnitRef{ID: id, Slug: slug}
	}
	return bySlug, byName, rows.Err()
}

// LoadEraMap loads the era slug to id map
func (s *RegistryStore) LoadEraMap(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, slug FROM eras")
	if err != nil {
		return nil, fmt.Errorf("failed to load eras: %w", err)
	}
	defer rows.Close()

	m := make(map[string]int)
	for rows.Next() {
		var id int
		var slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, fmt.Errorf("failed to scan era: %w", err)
		}
		m[slug] = id
	}
	return m, rows.Err()
}

// LoadFactionMap loads factions keyed by both display name and slug,
// so callers can resolve either form.
func (s *RegistryStore) LoadFactionMap(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, slug, name FROM factions")
	if err != nil {
		return nil, fmt.Errorf("failed to load factions: %w", err)
	}
	defer rows.Close()

	m := make(map[string]int)
	for rows.Next() {
		var id int
		var slug, name string
		if err := rows.Scan(&id, &slug, &name); err != nil {
			return nil, fmt.Errorf("failed to scan faction: %w", err)
		}
		m[slug] = id
		m[name] = id
	}
	return m, rows.Err()
}

// FieldChanges reports which unit fields a registry merge actually changed
type FieldChanges struct {
	BVChanged        bool
	CostChanged      bool
	IntroYearChanged bool
	RoleAssigned     bool
}

// MergeRegistryFields folds registry-sourced fields into a unit row.
// Existing local values win: each field only fills in where the local
// column is NULL, and the registry never erases local data. The MUL ID
// link and import timestamp are always refreshed.
func (s *RegistryStore) MergeRegistryFields(ctx context.Context, unitID, mulID int, bv *int, cost *int64, introYear *int, role, clanName string) (FieldChanges, error) {
	var changes FieldChanges

	var curBV, curIntro sql.NullInt64
	var curCost sql.NullInt64
	var curRole sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT bv, cost, intro_year, role FROM units WHERE id = $1", unitID).
		Scan(&curBV, &curCost, &curIntro, &curRole)
	if err != nil {
		return changes, fmt.Errorf("failed to read unit %d before merge: %w", unitID, err)
	}

	changes.BVChanged = bv != nil && (!curBV.Valid || int64(*bv) != curBV.Int64)
	changes.CostChanged = cost != nil && (!curCost.Valid || *cost != curCost.Int64)
	changes.IntroYearChanged = introYear != nil && (!curIntro.Valid || int64(*introYear) != curIntro.Int64)
	changes.RoleAssigned = role != "" && (!curRole.Valid || role != curRole.String)

	query := `
		UPDATE units SET
			mul_id = $1,
			bv = COALESCE($2, bv),
			cost = COALESCE($3, cost),
			intro_year = COALESCE($4, intro_year),
			role = COALESCE($5, role),
			bv_source = CASE WHEN $2 IS NOT NULL THEN 'mul' ELSE bv_source END,
			intro_year_source = CASE WHEN $4 IS NOT NULL THEN 'mul' ELSE intro_year_source END,
			clan_name = COALESCE($6, clan_name),
			last_mul_import_at = now()
		WHERE id = $7
	`
	_, err = s.db.ExecContext(ctx, query, mulID, bv, cost, introYear, nullIfEmpty(role), nullIfEmpty(clanName), unitID)
	if err != nil {
		return changes, fmt.Errorf("failed to merge registry fields for unit %d: %w", unitID, err)
	}
	return changes, nil
}

// EnsureFaction inserts a faction if absent and returns its id
func (s *RegistryStore) EnsureFaction(ctx context.Context, slug, name, factionType string, isClan bool) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO factions (slug, name, faction_type, is_clan)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug) DO NOTHING
		RETURNING id
	`, slug, name, factionType, isClan).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to insert faction %s: %w", slug, err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT id FROM factions WHERE slug = $1", slug).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch faction %s: %w", slug, err)
	}
	return id, nil
}

// HasAvailability reports whether a unit already has availability rows
func (s *RegistryStore) HasAvailability(ctx context.Context, unitID int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM unit_availability WHERE unit_id = $1", unitID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count availability for unit %d: %w", unitID, err)
	}
	return count > 0, nil
}

// AvailabilityRow pairs resolved faction and era IDs for one record
type AvailabilityRow struct {
	FactionID int
	EraID     int
}

// ReplaceAvailability deletes the unit's availability rows and inserts
// fresh ones in a single transaction. Returns the number inserted.
func (s *RegistryStore) ReplaceAvailability(ctx context.Context, unitID int, availRows []AvailabilityRow) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM unit_availability WHERE unit_id = $1", unitID); err != nil {
		return 0, fmt.Errorf("failed to delete availability for unit %d: %w", unitID, err)
	}

	query := `
		INSERT INTO unit_availability (unit_id, faction_id, era_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (unit_id, faction_id, era_id) DO NOTHING
	`
	count := 0
	for _, row := range availRows {
		if _, err := tx.ExecContext(ctx, query, unitID, row.FactionID, row.EraID); err != nil {
			return 0, fmt.Errorf("failed to insert availability for unit %d: %w", unitID, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}
