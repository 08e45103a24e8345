package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mechdex/mechdex/internal/mul"
)

// FetchStats tracks one registry fetch run
type FetchStats struct {
	QuickListCounts map[int]int
	TotalIDs        int
	DetailsFetched  int
	DetailsSkipped  int
}

// Fetcher downloads registry listings and detail pages to local files,
// so reconciliation can run offline and interrupted fetches resume
// where they left off.
type Fetcher struct {
	client *mul.Client
	logger *zap.Logger
}

// NewFetcher creates a new Fetcher
func NewFetcher(client *mul.Client, logger *zap.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

// Run fetches the QuickList for each unit type and then every unit's
// detail page, skipping pages already on disk. A manifest describing
// the run is written last.
func (f *Fetcher) Run(ctx context.Context, outputDir string, types []int) (*FetchStats, error) {
	detailsDir := filepath.Join(outputDir, "details")
	if err := os.MkdirAll(detailsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", detailsDir, err)
	}

	stats := &FetchStats{QuickListCounts: make(map[int]int)}

	// QuickList per unit type
	idSet := make(map[int]struct{})
	for _, typeID := range types {
		f.logger.Info("fetching QuickList", zap.Int("type_id", typeID))
		doc, err := f.client.FetchQuickList(ctx, typeID)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch QuickList for type %d: %w", typeID, err)
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("quicklist-%d.json", typeID))
		if err := os.WriteFile(filename, []byte(doc), 0o644); err != nil {
			return stats, fmt.Errorf("failed to write %s: %w", filename, err)
		}

		units, err := mul.ParseQuickList([]byte(doc))
		if err != nil {
			return stats, err
		}
		stats.QuickListCounts[typeID] = len(units)
		f.logger.Info("QuickList saved", zap.Int("type_id", typeID), zap.Int("count", len(units)))

		for _, u := range units {
			idSet[u.ID] = struct{}{}
		}
	}

	// Some units appear under multiple types
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	stats.TotalIDs = len(ids)
	f.logger.Info("unique registry IDs to fetch detail pages for", zap.Int("total", stats.TotalIDs))

	// Detail pages, resumable
	for idx, mulID := range ids {
		detailPath := filepath.Join(detailsDir, fmt.Sprintf("%d.html", mulID))
		if _, err := os.Stat(detailPath); err == nil {
			stats.DetailsSkipped++
			continue
		}

		html, err := f.client.FetchDetail(ctx, mulID)
		if err != nil {
			return stats, fmt.Errorf("failed to fetch detail page for registry ID %d: %w", mulID, err)
		}
		if err := os.WriteFile(detailPath, []byte(html), 0o644); err != nil {
			return stats, fmt.Errorf("failed to write %s: %w", detailPath, err)
		}
		stats.DetailsFetched++

		if (stats.DetailsFetched+stats.DetailsSkipped)%100 == 0 || idx == stats.TotalIDs-1 {
			f.logger.Info("detail page progress",
				zap.Int("fetched", stats.DetailsFetched),
				zap.Int("skipped", stats.DetailsSkipped),
				zap.Int("remaining", stats.TotalIDs-idx-1))
		}

		if err := f.client.SleepWithJitter(ctx); err != nil {
			return stats, err
		}
	}

	if err := f.writeManifest(outputDir, types, stats); err != nil {
		return stats, err
	}

	f.logger.Info("fetch complete",
		zap.Int("fetched", stats.DetailsFetched),
		zap.Int("skipped", stats.DetailsSkipped),
		zap.Int("total", stats.TotalIDs))
	return stats, nil
}

func (f *Fetcher) writeManifest(outputDir string, types []int, stats *FetchStats) error {
	counts := make(map[string]int, len(stats.QuickListCounts))
	for typeID, count := range stats.QuickListCounts {
		counts[strconv.Itoa(typeID)] = count
	}

	manifest := map[string]any{
		"fetched_at":            time.Now().UTC().Format(time.RFC3339),
		"base_url":              f.client.BaseURL(),
		"types":                 types,
		"quicklist_counts":      counts,
		"detail_pages_fetched":  stats.DetailsFetched,
		"detail_pages_skipped":  stats.DetailsSkipped,
		"total_mul_ids":         stats.TotalIDs,
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	manifestPath := filepath.Join(outputDir, "manifest.json")
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}
	f.logger.Info("manifest written", zap.String("path", manifestPath))
	return nil
}
