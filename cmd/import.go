package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mechdex/mechdex/internal/service"
	"github.com/mechdex/mechdex/internal/store"
)

var (
	importZip         string
	importDatabaseURL string
	importVersion     string
	importPoolSize    int
	importMaxErrors   int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import MegaMek unit files from a release archive",
	Long: `Import parses every MTF and BLK unit file in a MegaMek release
archive and upserts the units into PostgreSQL. Reference data (eras,
factions, dataset metadata) is seeded first.

The import is idempotent: re-running it against the same archive
converges to the same database state.

Examples:
  mechdex import --zip unit_files.zip --version 0.50.1
  mechdex import --zip unit_files.zip --max-errors 50`,
	Run: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importZip, "zip", "", "Path to unit_files.zip from a MegaMek release (required)")
	importCmd.Flags().StringVar(&importDatabaseURL, "database-url", "", "PostgreSQL connection string (defaults to DATABASE_URL)")
	importCmd.Flags().StringVar(&importVersion, "version", "unknown", "MegaMek version recorded in dataset metadata")
	importCmd.Flags().IntVar(&importPoolSize, "pool-size", 5, "Maximum database connections")
	importCmd.Flags().IntVar(&importMaxErrors, "max-errors", 0, "Stop after this many import errors (0 = unlimited)")
	importCmd.MarkFlagRequired("zip")
}

func runImport(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Sync()

	dbURL, err := databaseURL(importDatabaseURL)
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := store.NewDB(ctx, dbURL, importPoolSize)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	importer := service.NewImporter(db, logger, importMaxErrors)
	stats, err := importer.Run(ctx, importZip, importVersion)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("import cancelled")
			os.Exit(1)
		}
		logger.Fatal("import failed", zap.Error(err))
	}

	if stats.Errors > 0 {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM
func signalContext(logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("received interrupt signal, shutting down")
		cancel()
	}()

	return ctx, cancel
}
