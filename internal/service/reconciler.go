package service

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mechdex/mechdex/internal/model"
	"github.com/mechdex/mechdex/internal/mul"
	"github.com/mechdex/mechdex/internal/parse"
	"github.com/mechdex/mechdex/internal/store"
)

// ReconcileOptions configures one reconcile run
type ReconcileOptions struct {
	DataDir          string
	SkipAvailability bool
	Force            bool
	OverridesPath    string
}

// ReconcileStats tracks one reconcile run
type ReconcileStats struct {
	TotalRegistry     int
	Matched           int
	Unmatched         int
	BVChanged         int
	CostChanged       int
	RoleAssigned      int
	IntroYearChanged  int
	AvailabilityUnits int
	AvailabilityRows  int
	NewFactions       int
}

// Reconciler matches locally fetched registry data against imported
// units and merges registry fields and availability into the database.
type Reconciler struct {
	registry *store.RegistryStore
	logger   *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(db *sql.DB, logger *zap.Logger) *Reconciler {
	return &Reconciler{registry: store.NewRegistryStore(db), logger: logger}
}

// Run executes the reconcile pipeline: load local state, match and
// merge QuickList data, report unmatched units, then import
// availability from cached detail pages.
func (r *Reconciler) Run(ctx context.Context, opts ReconcileOptions) (*ReconcileStats, error) {
	stats := &ReconcileStats{}

	bySlug, byName, err := r.registry.LoadUnitIndexes(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info("loaded local units for matching", zap.Int("by_slug", len(bySlug)))

	eraSlugToID, err := r.registry.LoadEraMap(ctx)
	if err != nil {
		return nil, err
	}
	factionNameToID, err := r.registry.LoadFactionMap(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info("loaded era/faction maps",
		zap.Int("eras", len(eraSlugToID)),
		zap.Int("factions", len(factionNameToID)))

	overrides := map[int]string{}
	if opts.OverridesPath != "" {
		overrides, err = mul.LoadOverrides(opts.OverridesPath)
		if err != nil {
			return nil, err
		}
		r.logger.Info("loaded override mappings", zap.Int("count", len(overrides)))
	}

	matcher := mul.NewMatcher(bySlug, byName, overrides)

	registryUnits, err := loadQuickLists(opts.DataDir, r.logger)
	if err != nil {
		return nil, err
	}
	stats.TotalRegistry = len(registryUnits)
	r.logger.Info("total unique registry units to process", zap.Int("count", stats.TotalRegistry))

	var unmatched []mul.UnmatchedUnit
	mulIDToUnitID := make(map[int]int)

	for _, u := range registryUnits {
		res, ok := matcher.Match(u)
		if !ok {
			stats.Unmatched++
			unmatched = append(unmatched, mul.UnmatchedUnit{
				MulID:        u.ID,
				Name:         u.Name,
				ComputedSlug: parse.ToSlug(u.Name),
				Tonnage:      u.Tonnage,
			})
			continue
		}

		stats.Matched++
		mulIDToUnitID[u.ID] = res.UnitID

		changes, err := r.registry.MergeRegistryFields(ctx,
			res.UnitID, u.ID,
			u.BV(), u.CostValue(), u.IntroYear(),
			u.RoleName(), mul.ExtractClanName(u.Name))
		if err != nil {
			return stats, err
		}
		if changes.BVChanged {
			stats.BVChanged++
		}
		if changes.CostChanged {
			stats.CostChanged++
		}
		if changes.IntroYearChanged {
			stats.IntroYearChanged++
		}
		if changes.RoleAssigned {
			stats.RoleAssigned++
		}
	}

	r.logger.Info("registry merge complete",
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
		zap.Int("bv_changed", stats.BVChanged),
		zap.Int("cost_changed", stats.CostChanged),
		zap.Int("role_assigned", stats.RoleAssigned),
		zap.Int("intro_year_changed", stats.IntroYearChanged))

	if len(unmatched) > 0 {
		csvPath := filepath.Join(opts.DataDir, "unmatched_mul_units.csv")
		if err := mul.WriteUnmatchedCSV(csvPath, unmatched); err != nil {
			return stats, err
		}
		r.logger.Info("wrote unmatched units CSV",
			zap.String("path", csvPath), zap.Int("count", len(unmatched)))
	}

	if opts.SkipAvailability {
		r.logger.Info("skipping availability import")
		return stats, nil
	}

	if err := r.importAvailability(ctx, opts, mulIDToUnitID, eraSlugToID, factionNameToID, stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// importAvailability reads cached detail pages and replaces each
// matched unit's availability rows. Units that already have rows are
// left alone unless force is set.
func (r *Reconciler) importAvailability(
	ctx context.Context,
	opts ReconcileOptions,
	mulIDToUnitID map[int]int,
	eraSlugToID map[string]int,
	factionNameToID map[string]int,
	stats *ReconcileStats,
) error {
	eraMap := mul.EraMappings()
	factionMap := mul.FactionMappings()
	detailsDir := filepath.Join(opts.DataDir, "details")

	for mulID, unitID := range mulIDToUnitID {
		detailPath := filepath.Join(detailsDir, fmt.Sprintf("%d.html", mulID))
		html, err := os.ReadFile(detailPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", detailPath, err)
		}

		if !opts.Force {
			has, err := r.registry.HasAvailability(ctx, unitID)
			if err != nil {
				return err
			}
			if has {
				continue
			}
		}

		records, recognized := mul.ParseAvailability(string(html))
		if !recognized {
			r.logger.Warn("unrecognizable detail page, skipping",
				zap.Int("mul_id", mulID), zap.String("path", detailPath))
			continue
		}
		if len(records) == 0 {
			continue
		}

		var availRows []store.AvailabilityRow
		for _, rec := range records {
			eraSlug, ok := eraMap[rec.EraName]
			if !ok {
				r.logger.Warn("unmapped era, skipping record",
					zap.String("era", rec.EraName), zap.Int("mul_id", mulID))
				continue
			}
			eraID, ok := eraSlugToID[eraSlug]
			if !ok {
				r.logger.Warn("era not in database, skipping record", zap.String("era_slug", eraSlug))
				continue
			}

			factionID, ok := r.resolveFaction(ctx, rec, factionMap, factionNameToID, stats)
			if !ok {
				continue
			}

			availRows = append(availRows, store.AvailabilityRow{FactionID: factionID, EraID: eraID})
		}

		if len(availRows) == 0 {
			continue
		}
		availRows = dedupeAvailability(availRows)

		inserted, err := r.registry.ReplaceAvailability(ctx, unitID, availRows)
		if err != nil {
			return err
		}
		stats.AvailabilityUnits++
		stats.AvailabilityRows += inserted
	}

	r.logger.Info("availability import complete",
		zap.Int("units", stats.AvailabilityUnits),
		zap.Int("rows", stats.AvailabilityRows),
		zap.Int("new_factions", stats.NewFactions))
	return nil
}

// resolveFaction maps a scraped faction name to a faction id, creating
// a new faction row when the name is entirely unknown.
func (r *Reconciler) resolveFaction(
	ctx context.Context,
	rec model.AvailabilityRecord,
	factionMap map[string]string,
	factionNameToID map[string]int,
	stats *ReconcileStats,
) (int, bool) {
	if id, ok := factionNameToID[rec.FactionName]; ok {
		return id, true
	}

	if slug, ok := factionMap[rec.FactionName]; ok {
		if id, ok := factionNameToID[slug]; ok {
			factionNameToID[rec.FactionName] = id
			return id, true
		}
		r.logger.Warn("mapped faction not in database, skipping",
			zap.String("faction", rec.FactionName), zap.String("slug", slug))
		return 0, false
	}

	slug := parse.ToSlug(rec.FactionName)
	isClan := strings.HasPrefix(rec.FactionName, "Clan ")
	factionType := mul.InferFactionType(rec.FactionName)

	id, err := r.registry.EnsureFaction(ctx, slug, rec.FactionName, factionType, isClan)
	if err != nil {
		r.logger.Warn("failed to create faction, skipping",
			zap.String("faction", rec.FactionName), zap.Error(err))
		return 0, false
	}

	r.logger.Info("created new faction",
		zap.String("name", rec.FactionName),
		zap.String("slug", slug),
		zap.String("faction_type", factionType))
	stats.NewFactions++
	factionNameToID[rec.FactionName] = id
	return id, true
}

// loadQuickLists reads every quicklist-*.json file in dir and returns
// the units deduplicated by registry ID, first occurrence wins.
func loadQuickLists(dir string, logger *zap.Logger) ([]model.RegistryUnit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data dir %s: %w", dir, err)
	}

	var units []model.RegistryUnit
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "quicklist-") || !strings.HasSuffix(name, ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		parsed, err := mul.ParseQuickList(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		logger.Info("loaded QuickList", zap.String("file", name), zap.Int("count", len(parsed)))
		units = append(units, parsed...)
	}

	seen := make(map[int]struct{}, len(units))
	deduped := units[:0]
	for _, u := range units {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		deduped = append(deduped, u)
	}
	return deduped, nil
}

// dedupeAvailability sorts and removes duplicate (faction, era) pairs
func dedupeAvailability(rows []store.AvailabilityRow) []store.AvailabilityRow {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FactionID != rows[j].FactionID {
			return rows[i].FactionID < rows[j].FactionID
		}
		return rows[i].EraID < rows[j].EraID
	})

	out := rows[:0]
	var prev store.AvailabilityRow
	for i, row := range rows {
		if i > 0 && row == prev {
			continue
		}
		out = append(out, row)
		prev = row
	}
	return out
}
