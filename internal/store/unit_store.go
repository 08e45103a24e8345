package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mechdex/mechdex/internal/model"
	"github.com/mechdex/mechdex/internal/parse"
)

// UnitStore handles database operations for parsed units and their
// child rows (locations, loadout, quirks, mech detail).
type UnitStore struct {
	db *sql.DB
}

// NewUnitStore creates a new UnitStore
func NewUnitStore(db *sql.DB) *UnitStore {
	return &UnitStore{db: db}
}

// UpsertEquipment inserts or updates an equipment row by slug and
// returns its id.
func (s *UnitStore) UpsertEquipment(ctx context.Context, slug, name, category string, techBase model.TechBase, rulesLevel model.RulesLevel) (int, error) {
	query := `
		INSERT INTO equipment (slug, name, category, tech_base, rules_level)
		VALUES ($1, $2, $3::equipment_category_enum, $4::tech_base_enum, $5::rules_level_enum)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			tech_base = EXCLUDED.tech_base,
			rules_level = EXCLUDED.rules_level
		RETURNING id
	`

	var id int
	err := s.db.QueryRowContext(ctx, query, slug, name, category, string(techBase), string(rulesLevel)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert equipment %s: %w", slug, err)
	}
	return id, nil
}

// UpsertChassis inserts or updates the chassis row for a unit and
// returns its id. The chassis slug carries the unit type as a suffix so
// different unit types sharing a name (a "Vulcan" mech and a "Vulcan"
// fighter) stay distinct.
func (s *UnitStore) UpsertChassis(ctx context.Context, unit *model.ParsedUnit) (int, error) {
	slug := parse.ToSlug(unit.Chassis) + "-" + string(unit.UnitType)

	query := `
		INSERT INTO unit_chassis (slug, name, unit_type, tech_base, tonnage, intro_year, description)
		VALUES ($1, $2, $3, $4::tech_base_enum, $5, $6, $7)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			unit_type = EXCLUDED.unit_type,
			tech_base = EXCLUDED.tech_base,
			tonnage = EXCLUDED.tonnage,
			intro_year = EXCLUDED.intro_year,
			description = EXCLUDED.description
		RETURNING id
	`

	var id int
	err := s.db.QueryRowContext(ctx, query,
		slug,
		unit.Chassis,
		string(unit.UnitType),
		string(unit.TechBase),
		unit.Tonnage,
		unit.IntroYear,
		nullIfEmpty(unit.Description),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert chassis %s: %w", slug, err)
	}
	return id, nil
}

// UpsertUnit inserts or updates the unit variant row and returns its id
func (s *UnitStore) UpsertUnit(ctx context.Context, unit *model.ParsedUnit, chassisID int) (int, error) {
	fullName := unit.FullName()
	slug := parse.ToSlug(fullName)

	query := `
		INSERT INTO units (
			slug, chassis_id, variant, full_name,
			tech_base, rules_level,
			tonnage, intro_year, source_book, description
		)
		VALUES ($1, $2, $3, $4, $5::tech_base_enum, $6::rules_level_enum, $7, $8, $9, $10)
		ON CONFLICT (slug) DO UPDATE SET
			chassis_id = EXCLUDED.chassis_id,
			variant = EXCLUDED.variant,
			full_name = EXCLUDED.full_name,
			tech_base = EXCLUDED.tech_base,
			rules_level = EXCLUDED.rules_level,
			tonnage = EXCLUDED.tonnage,
			intro_year = EXCLUDED.intro_year,
			source_book = EXCLUDED.source_book,
			description = EXCLUDED.description
		RETURNING id
	`

	var id int
	err := s.db.QueryRowContext(ctx, query,
		slug,
		chassisID,
		unit.Model,
		fullName,
		string(unit.TechBase),
		string(unit.RulesLevel),
		unit.Tonnage,
		unit.IntroYear,
		nullIfEmpty(unit.Source),
		nullIfEmpty(unit.Description),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert unit %s: %w", slug, err)
	}
	return id, nil
}

// ReplaceLocations deletes the unit's location rows and inserts fresh
// ones in a single transaction.
func (s *UnitStore) ReplaceLocations(ctx context.Context, unitID int, unit *model.ParsedUnit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM unit_locations WHERE unit_id = $1", unitID); err != nil {
		return fmt.Errorf("failed to delete locations for unit %d: %w", unitID, err)
	}

	query := `
		INSERT INTO unit_locations (unit_id, location, armor_points, rear_armor, structure_points)
		VALUES ($1, $2::location_name_enum, $3, $4, $5)
	`
	for _, loc := range unit.Locations {
		if _, err := tx.ExecContext(ctx, query, unitID, loc.Name, loc.Armor, loc.RearArmor, loc.Structure); err != nil {
			return fmt.Errorf("failed to insert location %s for unit %d: %w", loc.Name, unitID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceLoadout deletes the unit's loadout rows and inserts fresh
// ones in a single transaction, so a failure mid-insert never leaves a
// unit with a partial loadout. equipmentCache maps equipment slug to id
// and is extended in place across calls so each equipment row is
// upserted once per run. Equipment rows are shared reference data and
// are resolved outside the transaction; they stay valid even when the
// loadout replacement rolls back.
func (s *UnitStore) ReplaceLoadout(ctx context.Context, unitID int, unit *model.ParsedUnit, equipmentCache map[string]int) error {
	eqIDs := make([]int, len(unit.Loadout))
	for i, entry := range unit.Loadout {
		eqSlug := parse.ToSlug(entry.Equipment)
		eqID, ok := equipmentCache[eqSlug]
		if !ok {
			category := parse.CategorizeEquipment(entry.Equipment)
			techBase := parse.EquipmentTechBase(entry.Equipment)

			var err error
			eqID, err = s.UpsertEquipment(ctx, eqSlug, entry.Equipment, category, techBase, unit.RulesLevel)
			if err != nil {
				return err
			}
			equipmentCache[eqSlug] = eqID
		}
		eqIDs[i] = eqID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM unit_loadout WHERE unit_id = $1", unitID); err != nil {
		return fmt.Errorf("failed to delete loadout for unit %d: %w", unitID, err)
	}

	query := `
		INSERT INTO unit_loadout (unit_id, equipment_id, location, quantity, is_rear_facing)
		VALUES ($1, $2, $3::location_name_enum, $4, $5)
	`
	for i, entry := range unit.Loadout {
		if _, err := tx.ExecContext(ctx, query, unitID, eqIDs[i], nullIfEmpty(entry.Location), entry.Quantity, entry.Rear); err != nil {
			return fmt.Errorf("failed to insert loadout entry %s for unit %d: %w", entry.Equipment, unitID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReplaceQuirks deletes the unit's quirk links and inserts fresh ones
// in a single transaction, creating quirk rows on first sight. Like
// equipment, quirk rows themselves are shared reference data resolved
// outside the transaction.
func (s *UnitStore) ReplaceQuirks(ctx context.Context, unitID int, quirks []string) error {
	quirkIDs := make([]int, len(quirks))
	for i, slug := range quirks {
		id, err := s.ensureQuirk(ctx, slug)
		if err != nil {
			return err
		}
		quirkIDs[i] = id
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM unit_quirks WHERE unit_id = $1", unitID); err != nil {
		return fmt.Errorf("failed to delete quirks for unit %d: %w", unitID, err)
	}

	for i, slug := range quirks {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO unit_quirks (unit_id, quirk_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			unitID, quirkIDs[i])
		if err != nil {
			return fmt.Errorf("failed to link quirk %s to unit %d: %w", slug, unitID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ensureQuirk inserts a quirk row if absent and returns its id. Unit
// files carry only the quirk slug, so the slug doubles as the name.
func (s *UnitStore) ensureQuirk(ctx context.Context, slug string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO quirks (slug, name) VALUES ($1, $2) ON CONFLICT (slug) DO NOTHING RETURNING id",
		slug, slug).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to insert quirk %s: %w", slug, err)
	}

	// Row already existed
	err = s.db.QueryRowContext(ctx, "SELECT id FROM quirks WHERE slug = $1", slug).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch quirk %s: %w", slug, err)
	}
	return id, nil
}

// UpsertMechDetail inserts or updates mech structural data for a unit.
// Missing gyro/cockpit/myomer fields default to their standard types,
// matching how unit files omit standard components.
func (s *UnitStore) UpsertMechDetail(ctx context.Context, unitID int, detail *model.MechDetail) error {
	gyro := detail.GyroType
	if gyro == "" {
		gyro = "Standard Gyro"
	}
	cockpit := detail.CockpitType
	if cockpit == "" {
		cockpit = "Standard Cockpit"
	}
	myomer := detail.MyomerType
	if myomer == "" {
		myomer = "Standard"
	}

	query := `
		INSERT INTO unit_mech_data (
			unit_id, config, is_omnimech, engine_rating, engine_type,
			walk_mp, jump_mp, heat_sink_count, heat_sink_type,
			structure_type, armor_type, gyro_type, cockpit_type, myomer_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (unit_id) DO UPDATE SET
			config = EXCLUDED.config,
			is_omnimech = EXCLUDED.is_omnimech,
			engine_rating = EXCLUDED.engine_rating,
			engine_type = EXCLUDED.engine_type,
			walk_mp = EXCLUDED.walk_mp,
			jump_mp = EXCLUDED.jump_mp,
			heat_sink_count = EXCLUDED.heat_sink_count,
			heat_sink_type = EXCLUDED.heat_sink_type,
			structure_type = EXCLUDED.structure_type,
			armor_type = EXCLUDED.armor_type,
			gyro_type = EXCLUDED.gyro_type,
			cockpit_type = EXCLUDED.cockpit_type,
			myomer_type = EXCLUDED.myomer_type
	`

	_, err := s.db.ExecContext(ctx, query,
		unitID,
		nullIfEmpty(detail.Config),
		detail.IsOmniMech,
		detail.EngineRating,
		nullIfEmpty(detail.EngineType),
		detail.WalkMP,
		detail.JumpMP,
		detail.HeatSinkCount,
		nullIfEmpty(detail.HeatSinkType),
		nullIfEmpty(detail.StructureType),
		nullIfEmpty(detail.ArmorType),
		gyro,
		cockpit,
		myomer,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mech data for unit %d: %w", unitID, err)
	}
	return nil
}

// RefreshObservedLocations recomputes the observed_locations array on
// equipment rows from current loadout data. Returns rows updated.
func (s *UnitStore) RefreshObservedLocations(ctx context.Context) (int64, error) {
	query := `
		UPDATE equipment e SET observed_locations = sub.locs
		FROM (
			SELECT ul.equipment_id,
			       array_agg(DISTINCT ul.location::text ORDER BY ul.location::text) AS locs
			FROM unit_loadout ul
			WHERE ul.location IS NOT NULL
			GROUP BY ul.equipment_id
		) sub
		WHERE e.id = sub.equipment_id
	`

	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh observed locations: %w", err)
	}
	return result.RowsAffected()
}

// nullIfEmpty maps "" to SQL NULL for optional text columns
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
