// Package service orchestrates the import, fetch and reconcile
// pipelines on top of the parsers, the registry client and the stores.
package service

import (
	"archive/zip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mechdex/mechdex/internal/model"
	"github.com/mechdex/mechdex/internal/parse"
	"github.com/mechdex/mechdex/internal/store"
)

// ImportStats tracks archive import statistics
type ImportStats struct {
	TotalEntries int
	Parsed       int
	Imported     int
	Skipped      int
	Errors       int
}

// Importer walks a MegaMek unit archive and persists every parseable
// unit file.
type Importer struct {
	units     *store.UnitStore
	seeds     *store.SeedStore
	logger    *zap.Logger
	maxErrors int
}

// NewImporter creates a new Importer. maxErrors is the per-run import
// failure ceiling; the run aborts as soon as the error count reaches
// it, so maxErrors=1 stops on the first failure. 0 means unlimited.
func NewImporter(db *sql.DB, logger *zap.Logger, maxErrors int) *Importer {
	return &Importer{
		units:     store.NewUnitStore(db),
		seeds:     store.NewSeedStore(db),
		logger:    logger,
		maxErrors: maxErrors,
	}
}

// Run seeds reference data, then parses and imports every unit file in
// the archive. Individual file failures are logged and counted; the run
// aborts only when the error ceiling is reached.
func (imp *Importer) Run(ctx context.Context, zipPath, version string) (*ImportStats, error) {
	eraCount, err := imp.seeds.SeedEras(ctx)
	if err != nil {
		return nil, err
	}
	factionCount, err := imp.seeds.SeedFactions(ctx)
	if err != nil {
		return nil, err
	}
	if err := imp.seeds.SeedMetadata(ctx, version); err != nil {
		return nil, err
	}
	imp.logger.Info("reference data seeded",
		zap.Int("eras", eraCount),
		zap.Int("factions", factionCount),
		zap.String("version", version))

	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer archive.Close()

	stats := &ImportStats{TotalEntries: len(archive.File)}
	imp.logger.Info("archive opened", zap.Int("entries", stats.TotalEntries))

	equipmentCache := make(map[string]int)

	for _, entry := range archive.File {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		isMTF, defaultType, ok := classify(entry.Name)
		if !ok {
			stats.Skipped++
			continue
		}

		content, err := readEntry(entry)
		if err != nil {
			imp.logger.Warn("unreadable archive entry, skipping",
				zap.String("file", entry.Name), zap.Error(err))
			stats.Skipped++
			continue
		}
		if !utf8.ValidString(content) {
			imp.logger.Warn("non-UTF-8 content, skipping", zap.String("file", entry.Name))
			stats.Skipped++
			continue
		}

		var unit *model.ParsedUnit
		if isMTF {
			unit = parse.ParseMTF(content)
		} else {
			unit = parse.ParseBLK(content, defaultType)
		}
		if unit == nil {
			imp.logger.Warn("unparseable unit file, skipping", zap.String("file", entry.Name))
			stats.Skipped++
			continue
		}
		stats.Parsed++

		if err := imp.importUnit(ctx, unit, equipmentCache); err != nil {
			stats.Errors++
			imp.logger.Error("import failed",
				zap.String("file", entry.Name), zap.Error(err))
			if imp.maxErrors > 0 && stats.Errors >= imp.maxErrors {
				return stats, fmt.Errorf("reached max errors limit (%d), aborting", imp.maxErrors)
			}
			continue
		}
		stats.Imported++

		if stats.Parsed%500 == 0 {
			imp.logger.Info("import progress",
				zap.Int("parsed", stats.Parsed),
				zap.Int("imported", stats.Imported),
				zap.Int("errors", stats.Errors),
				zap.Int("skipped", stats.Skipped))
		}
	}

	refreshed, err := imp.units.RefreshObservedLocations(ctx)
	if err != nil {
		return stats, err
	}
	imp.logger.Info("observed locations refreshed", zap.Int64("equipment_rows", refreshed))

	imp.logger.Info("import complete",
		zap.Int("total_entries", stats.TotalEntries),
		zap.Int("parsed", stats.Parsed),
		zap.Int("imported", stats.Imported),
		zap.Int("errors", stats.Errors),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// importUnit persists one parsed unit and all its child rows
func (imp *Importer) importUnit(ctx context.Context, unit *model.ParsedUnit, equipmentCache map[string]int) error {
	chassisID, err := imp.units.UpsertChassis(ctx, unit)
	if err != nil {
		return err
	}
	unitID, err := imp.units.UpsertUnit(ctx, unit, chassisID)
	if err != nil {
		return err
	}

	if len(unit.Locations) > 0 {
		if err := imp.units.ReplaceLocations(ctx, unitID, unit); err != nil {
			return err
		}
	}
	if len(unit.Loadout) > 0 {
		if err := imp.units.ReplaceLoadout(ctx, unitID, unit, equipmentCache); err != nil {
			return err
		}
	}
	if len(unit.Quirks) > 0 {
		if err := imp.units.ReplaceQuirks(ctx, unitID, unit.Quirks); err != nil {
			return err
		}
	}
	if unit.MechDetail != nil {
		if err := imp.units.UpsertMechDetail(ctx, unitID, unit.MechDetail); err != nil {
			return err
		}
	}
	return nil
}

// classify decides how to handle one archive entry by extension.
// MTF files are always mechs; BLK files get a default unit type
// inferred from their parent directory name; everything else is skipped.
func classify(name string) (isMTF bool, defaultType model.UnitType, ok bool) {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "/") {
		return false, "", false
	}

	switch path.Ext(lower) {
	case ".mtf":
		return true, "", true
	case ".blk":
		dir := path.Base(path.Dir(lower))
		switch {
		case strings.Contains(dir, "vehicle") || strings.Contains(dir, "vee"):
			return false, model.UnitTypeVehicle, true
		case strings.Contains(dir, "fighter") || strings.Contains(dir, "aero"):
			return false, model.UnitTypeFighter, true
		default:
			return false, model.UnitTypeOther, true
		}
	default:
		return false, "", false
	}
}

func readEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
