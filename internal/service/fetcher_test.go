package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mechdex/mechdex/internal/mul"
)

func fetchTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/Unit/QuickList":
			if r.URL.Query().Get("MinTons") == "0" {
				w.Write([]byte(`{"Units":[{"Id":7,"Name":"Wasp WSP-1A","Tonnage":20}]}`))
				return
			}
			w.Write([]byte(`{"Units":[]}`))
		case r.URL.Path == "/Unit/Details/7":
			w.Write([]byte("<html><h2>Wasp WSP-1A</h2></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestFetcherRun(t *testing.T) {
	srv := fetchTestServer(t)
	defer srv.Close()

	dir := t.TempDir()
	client := mul.NewClient(srv.URL, 0, zap.NewNop())
	fetcher := NewFetcher(client, zap.NewNop())

	stats, err := fetcher.Run(context.Background(), dir, []int{18})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.QuickListCounts[18])
	assert.Equal(t, 1, stats.TotalIDs)
	assert.Equal(t, 1, stats.DetailsFetched)
	assert.Equal(t, 0, stats.DetailsSkipped)

	// QuickList, detail page and manifest all land on disk
	ql, err := os.ReadFile(filepath.Join(dir, "quicklist-18.json"))
	require.NoError(t, err)
	units, err := mul.ParseQuickList(ql)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Wasp WSP-1A", units[0].Name)

	detail, err := os.ReadFile(filepath.Join(dir, "details", "7.html"))
	require.NoError(t, err)
	assert.Contains(t, string(detail), "Wasp WSP-1A")

	manifest, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `"total_mul_ids": 1`)
}

func TestFetcherRunResumesFromDisk(t *testing.T) {
	srv := fetchTestServer(t)
	defer srv.Close()

	dir := t.TempDir()
	client := mul.NewClient(srv.URL, 0, zap.NewNop())
	fetcher := NewFetcher(client, zap.NewNop())

	_, err := fetcher.Run(context.Background(), dir, []int{18})
	require.NoError(t, err)

	stats, err := fetcher.Run(context.Background(), dir, []int{18})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DetailsFetched)
	assert.Equal(t, 1, stats.DetailsSkipped)
}
