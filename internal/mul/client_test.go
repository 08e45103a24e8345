package mul

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastClient(baseURL string) *Client {
	c := NewClient(baseURL, 0, zap.NewNop())
	c.backoff = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	return c
}

func TestFetchDetailSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Unit/Details/144", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte("<html><h2>Atlas AS7-D</h2></html>"))
	}))
	defer srv.Close()

	body, err := fastClient(srv.URL).FetchDetail(context.Background(), 144)
	require.NoError(t, err)
	assert.Contains(t, body, "Atlas AS7-D")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := fastClient(srv.URL).FetchDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, 3, calls)
}

func TestFetchGivesUpAfterRetryCeiling(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).FetchDetail(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 retries")
	// initial attempt plus three retries
	assert.Equal(t, 4, calls)
}

func TestFetchHonorsRetryAfter(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := fastClient(srv.URL).FetchDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, 2, calls)
}

func TestFetchFailsFastOnClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := fastClient(srv.URL).FetchDetail(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Equal(t, 1, calls)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 10*time.Second, parseRetryAfter("10"))
	assert.Equal(t, maxRetryAfter, parseRetryAfter("300"))
	assert.Equal(t, defaultRetryAfter, parseRetryAfter(""))
	assert.Equal(t, defaultRetryAfter, parseRetryAfter("soon"))
}

func TestFetchQuickListMergesBuckets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Unit/QuickList", r.URL.Path)
		assert.Equal(t, "18", r.URL.Query().Get("Types"))
		if r.URL.Query().Get("MinTons") == "0" {
			w.Write([]byte(`{"Units":[{"Id":1,"Name":"Locust LCT-1V"}]}`))
			return
		}
		w.Write([]byte(`{"Units":[]}`))
	}))
	defer srv.Close()

	out, err := fastClient(srv.URL).FetchQuickList(context.Background(), 18)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, `"Units"`))

	units, err := ParseQuickList([]byte(out))
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Locust LCT-1V", units[0].Name)
}

func TestSleepWithJitterRespectsContext(t *testing.T) {
	c := NewClient(DefaultBaseURL, time.Hour, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.SleepWithJitter(ctx), context.Canceled)
}
