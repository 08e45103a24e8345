package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mechdex/mechdex/internal/service"
	"github.com/mechdex/mechdex/internal/store"
)

var (
	reconcileDataDir     string
	reconcileDatabaseURL string
	reconcilePoolSize    int
	reconcileSkipAvail   bool
	reconcileForce       bool
	reconcileOverrides   string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile fetched Master Unit List data with imported units",
	Long: `Reconcile matches previously fetched QuickList entries against the
imported units, merges registry fields (battle value, cost, role,
introduction year) into matching rows, and imports era/faction
availability from cached detail pages.

Registry data never overwrites local values: merge fills in blanks
only. Units no strategy can match are written to
unmatched_mul_units.csv in the data directory for manual curation.

Examples:
  mechdex reconcile --data-dir ./mul-data
  mechdex reconcile --data-dir ./mul-data --overrides overrides.json --force`,
	Run: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&reconcileDataDir, "data-dir", "", "Directory holding fetched QuickList and detail files (required)")
	reconcileCmd.Flags().StringVar(&reconcileDatabaseURL, "database-url", "", "PostgreSQL connection string (defaults to DATABASE_URL)")
	reconcileCmd.Flags().IntVar(&reconcilePoolSize, "pool-size", 5, "Maximum database connections")
	reconcileCmd.Flags().BoolVar(&reconcileSkipAvail, "skip-availability", false, "Skip the availability import step")
	reconcileCmd.Flags().BoolVar(&reconcileForce, "force", false, "Replace availability even for units that already have rows")
	reconcileCmd.Flags().StringVar(&reconcileOverrides, "overrides", "", "JSON file mapping MUL IDs to unit slugs")
	reconcileCmd.MarkFlagRequired("data-dir")
}

func runReconcile(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Sync()

	dbURL, err := databaseURL(reconcileDatabaseURL)
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := store.NewDB(ctx, dbURL, reconcilePoolSize)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	reconciler := service.NewReconciler(db, logger)
	_, err = reconciler.Run(ctx, service.ReconcileOptions{
		DataDir:          reconcileDataDir,
		SkipAvailability: reconcileSkipAvail,
		Force:            reconcileForce,
		OverridesPath:    reconcileOverrides,
	})
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("reconcile cancelled")
			os.Exit(1)
		}
		logger.Fatal("reconcile failed", zap.Error(err))
	}
}
