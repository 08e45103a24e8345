package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mechdex/mechdex/internal/store"
)

var (
	seedEquipmentFile        string
	seedEquipmentDatabaseURL string
	seedEquipmentPoolSize    int
	seedEquipmentForce       bool
)

var seedEquipmentCmd = &cobra.Command{
	Use:   "seed-equipment",
	Short: "Apply curated equipment stats to imported equipment rows",
	Long: `Seed-equipment reads a curated JSON file of equipment statistics
(tonnage, criticals, damage, heat, ranges, battle value) and applies
them to equipment rows created by import. By default only missing
columns are filled; --force overwrites existing values.

Example:
  mechdex seed-equipment --file equipment_stats.json`,
	Run: runSeedEquipment,
}

func init() {
	rootCmd.AddCommand(seedEquipmentCmd)

	seedEquipmentCmd.Flags().StringVar(&seedEquipmentFile, "file", "", "Equipment stats JSON file (required)")
	seedEquipmentCmd.Flags().StringVar(&seedEquipmentDatabaseURL, "database-url", "", "PostgreSQL connection string (defaults to DATABASE_URL)")
	seedEquipmentCmd.Flags().IntVar(&seedEquipmentPoolSize, "pool-size", 5, "Maximum database connections")
	seedEquipmentCmd.Flags().BoolVar(&seedEquipmentForce, "force", false, "Overwrite stats columns that already have values")
	seedEquipmentCmd.MarkFlagRequired("file")
}

func runSeedEquipment(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Sync()

	dbURL, err := databaseURL(seedEquipmentDatabaseURL)
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	entries, err := loadEquipmentStats(seedEquipmentFile)
	if err != nil {
		logger.Fatal("failed to load equipment stats", zap.Error(err))
	}
	logger.Info("loaded equipment stats entries", zap.Int("count", len(entries)))

	db, err := store.NewDB(ctx, dbURL, seedEquipmentPoolSize)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	result, err := store.NewEquipmentStore(db).ApplyStats(ctx, entries, seedEquipmentForce)
	if err != nil {
		logger.Fatal("equipment seed failed", zap.Error(err))
	}

	logger.Info("equipment seed complete",
		zap.Int("updated", result.Updated),
		zap.Int("alias_hits", result.AliasHits),
		zap.Int("not_found", result.NotFound),
		zap.Int("unchanged", result.Unchanged))
}

func loadEquipmentStats(path string) ([]store.EquipmentStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []store.EquipmentStats
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse equipment stats JSON: %w", err)
	}
	return entries, nil
}
