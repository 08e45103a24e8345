// Package cmd wires the mechdex subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var rootCmd = &cobra.Command{
	Use:   "mechdex",
	Short: "Import and reconcile BattleTech unit data",
	Long: `mechdex builds a PostgreSQL unit database from MegaMek data files
and reconciles it against the Master Unit List.

Typical workflow:
  mechdex import --zip unit_files.zip --version 0.50.1
  mechdex fetch --output-dir ./mul-data
  mechdex reconcile --data-dir ./mul-data
  mechdex seed-equipment --file equipment_stats.json`,
}

// Execute runs the root command
func Execute() {
	// A missing .env is fine; real deployments use the environment
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. LOG_LEVEL selects the minimum
// level (debug, info, warn, error); default is info.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zap.ParseAtomicLevel(lvl); err == nil {
			cfg.Level = parsed
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// databaseURL resolves the connection string from the flag value or
// the DATABASE_URL environment variable.
func databaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("database URL required: set --database-url or DATABASE_URL")
}
