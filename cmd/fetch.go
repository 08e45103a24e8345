package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mechdex/mechdex/internal/mul"
	"github.com/mechdex/mechdex/internal/service"
)

var (
	fetchOutputDir string
	fetchBaseURL   string
	fetchDelayMs   int
	fetchTypes     []int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch Master Unit List data to local files",
	Long: `Fetch downloads QuickList JSON per unit type and the detail page for
every listed unit into a local directory. Detail pages already on disk
are skipped, so an interrupted fetch resumes where it stopped.

Unit type IDs follow the MUL: 18 = BattleMech, 19 = Combat Vehicle,
20 = Aerospace Fighter.

Examples:
  mechdex fetch --output-dir ./mul-data
  mechdex fetch --output-dir ./mul-data --types 18 --delay-ms 2000`,
	Run: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchOutputDir, "output-dir", "", "Directory to write QuickList and detail files (required)")
	fetchCmd.Flags().StringVar(&fetchBaseURL, "base-url", mul.DefaultBaseURL, "Master Unit List base URL")
	fetchCmd.Flags().IntVar(&fetchDelayMs, "delay-ms", 1000, "Base delay between requests in milliseconds")
	fetchCmd.Flags().IntSliceVar(&fetchTypes, "types", []int{18, 19, 20}, "MUL unit type IDs to fetch")
	fetchCmd.MarkFlagRequired("output-dir")
}

func runFetch(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Sync()

	ctx, cancel := signalContext(logger)
	defer cancel()

	client := mul.NewClient(fetchBaseURL, time.Duration(fetchDelayMs)*time.Millisecond, logger)
	fetcher := service.NewFetcher(client, logger)

	if _, err := fetcher.Run(ctx, fetchOutputDir, fetchTypes); err != nil {
		if ctx.Err() != nil {
			logger.Warn("fetch cancelled")
			os.Exit(1)
		}
		logger.Fatal("fetch failed", zap.Error(err))
	}
}
