package store

import (
	"context"
	"database/sql"
	"fmt"
)

// EquipmentStats is one entry of the curated equipment stats file
type EquipmentStats struct {
	Slug        string   `json:"slug"`
	Tonnage     *float64 `json:"tonnage"`
	Crits       *int     `json:"crits"`
	Damage      *string  `json:"damage"`
	Heat        *int     `json:"heat"`
	RangeMin    *int     `json:"range_min"`
	RangeShort  *int     `json:"range_short"`
	RangeMedium *int     `json:"range_medium"`
	RangeLong   *int     `json:"range_long"`
	BV          *int     `json:"bv"`
}

// statsSlugAliases bridges the curated file's human-readable slugs to
// the slugs derived from MegaMek internal names. MegaMek writes
// "CLERLargeLaser" which slugifies to "clerlargelaser"; the stats file
// says "clan-er-large-laser".
var statsSlugAliases = map[string]string{
	// Clan energy weapons
	"clan-er-large-laser":     "clerlargelaser",
	"clan-er-medium-laser":    "clermediumlaser",
	"clan-er-small-laser":     "clersmalllaser",
	"clan-er-ppc":             "clerppc",
	"clan-large-pulse-laser":  "cllargepulselaser",
	"clan-medium-pulse-laser": "clmediumpulselaser",
	"clan-small-pulse-laser":  "clsmallpulselaser",
	"clan-er-flamer":          "clerflamer",
	"clan-plasma-cannon":      "clplasmacannon",
	// IS pulse lasers
	"pulse-large-laser":  "islargepulselaser",
	"pulse-medium-laser": "ismediumpulselaser",
	"pulse-small-laser":  "issmallpulselaser",
	// IS ballistic weapons
	"ultra-autocannon-2":  "isultraac2",
	"ultra-autocannon-5":  "isultraac5",
	"ultra-autocannon-10": "isultraac10",
	"ultra-autocannon-20": "isultraac20",
	"rotary-autocannon-5": "isrotaryac5",
	"light-autocannon-5":  "light-ac-5",
	// Clan ballistic weapons
	"clan-ultra-autocannon-2":  "clultraac2",
	"clan-ultra-autocannon-5":  "clultraac5",
	"clan-ultra-autocannon-10": "clultraac10",
	"clan-ultra-autocannon-20": "clultraac20",
	"clan-lb-2-x-ac":           "cllbxac2",
	"clan-lb-5-x-ac":           "cllbxac5",
	"clan-lb-10-x-ac":          "cllbxac10",
	"clan-lb-20-x-ac":          "cllbxac20",
	"clan-gauss-rifle":         "clgaussrifle",
	// Clan missile weapons
	"clan-srm-2":        "clsrm2",
	"clan-srm-4":        "clsrm4",
	"clan-srm-6":        "clsrm6",
	"clan-lrm-5":        "cllrm5",
	"clan-lrm-10":       "cllrm10",
	"clan-lrm-15":       "cllrm15",
	"clan-lrm-20":       "cllrm20",
	"clan-streak-srm-2": "clstreaksrm2",
	"clan-streak-srm-4": "clstreaksrm4",
	"clan-streak-srm-6": "clstreaksrm6",
	"clan-arrow-iv":     "clarrowiv",
	// IS missile
	"narc-missile-beacon": "narc",
	// Electronics and equipment
	"guardian-ecm-suite":       "isguardianecmsuite",
	"clan-ecm-suite":           "clecmsuite",
	"beagle-active-probe":      "beagleactiveprobe",
	"clan-active-probe":        "clactiveprobe",
	"clan-anti-missile-system": "clantimissilesystem",
	"targeting-computer":       "istargeting-computer",
	"artemis-iv-fcs":           "isartemisiv",
	"c3-master-computer":       "isc3mastercomputer",
	"c3-slave-unit":            "isc3slaveunit",
}

// StatsResult summarizes one equipment stats application run
type StatsResult struct {
	Updated   int
	AliasHits int
	NotFound  int
	Unchanged int
}

// EquipmentStore applies curated stats to imported equipment rows
type EquipmentStore struct {
	db *sql.DB
}

// NewEquipmentStore creates a new EquipmentStore
func NewEquipmentStore(db *sql.DB) *EquipmentStore {
	return &EquipmentStore{db: db}
}

// findBySlug resolves a stats slug to an equipment row id, trying the
// exact slug first and the alias bridge second. aliasHit reports which
// path matched; found is false when neither did.
func (s *EquipmentStore) findBySlug(ctx context.Context, slug string) (id int, aliasHit, found bool, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT id FROM equipment WHERE slug = $1", slug).Scan(&id)
	if err == nil {
		return id, false, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, false, fmt.Errorf("failed to look up equipment %s: %w", slug, err)
	}

	alt, ok := statsSlugAliases[slug]
	if !ok {
		return 0, false, false, nil
	}
	err = s.db.QueryRowContext(ctx, "SELECT id FROM equipment WHERE slug = $1", alt).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to look up equipment alias %s: %w", alt, err)
	}
	return id, true, true, nil
}

// ApplyStats folds curated stats entries into equipment rows. In the
// default mode only NULL columns are filled; force overwrites every
// stats column on the matched rows.
func (s *EquipmentStore) ApplyStats(ctx context.Context, entries []EquipmentStats, force bool) (StatsResult, error) {
	var res StatsResult

	forceQuery := `
		UPDATE equipment SET
			tonnage = $2,
			crits = $3,
			damage = $4,
			heat = $5,
			range_min = $6,
			range_short = $7,
			range_medium = $8,
			range_long = $9,
			bv = $10,
			stats_source = 'seed',
			stats_updated_at = now()
		WHERE id = $1
	`
	fillQuery := `
		UPDATE equipment SET
			tonnage = COALESCE(tonnage, $2),
			crits = COALESCE(crits, $3),
			damage = COALESCE(damage, $4),
			heat = COALESCE(heat, $5),
			range_min = COALESCE(range_min, $6),
			range_short = COALESCE(range_short, $7),
			range_medium = COALESCE(range_medium, $8),
			range_long = COALESCE(range_long, $9),
			bv = COALESCE(bv, $10),
			stats_source = COALESCE(stats_source, 'seed'),
			stats_updated_at = COALESCE(stats_updated_at, now())
		WHERE id = $1
		  AND (tonnage IS NULL OR crits IS NULL OR damage IS NULL
		       OR heat IS NULL OR range_min IS NULL OR range_short IS NULL
		       OR range_medium IS NULL OR range_long IS NULL OR bv IS NULL)
	`

	query := fillQuery
	if force {
		query = forceQuery
	}

	for _, entry := range entries {
		id, aliasHit, found, err := s.findBySlug(ctx, entry.Slug)
		if err != nil {
			return res, err
		}
		if !found {
			res.NotFound++
			continue
		}
		if aliasHit {
			res.AliasHits++
		}

		result, err := s.db.ExecContext(ctx, query,
			id,
			entry.Tonnage,
			entry.Crits,
			entry.Damage,
			entry.Heat,
			entry.RangeMin,
			entry.RangeShort,
			entry.RangeMedium,
			entry.RangeLong,
			entry.BV,
		)
		if err != nil {
			return res, fmt.Errorf("failed to apply stats for %s: %w", entry.Slug, err)
		}

		if n, err := result.RowsAffected(); err == nil && n > 0 {
			res.Updated++
		} else {
			res.Unchanged++
		}
	}

	return res, nil
}
