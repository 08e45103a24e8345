// Package mul talks to the Master Unit List: HTTP fetching, QuickList
// JSON decoding, detail-page scraping and unit identity matching.
package mul

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public MUL host
const DefaultBaseURL = "https://masterunitlist.azurewebsites.net"

const (
	// The MUL rejects unknown clients, so we present a browser UA
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	requestTimeout    = 30 * time.Second
	maxRetries        = 3
	defaultRetryAfter = 5 * time.Second
	maxRetryAfter     = 60 * time.Second
)

// tonnageBuckets keeps each QuickList response under the MUL server's
// maxJsonLength ceiling
var tonnageBuckets = [][2]int{
	{0, 25}, {26, 35}, {36, 45}, {46, 55}, {56, 65},
	{66, 75}, {76, 85}, {86, 100}, {101, 200}, {201, 999999},
}

// Client fetches QuickList listings and detail pages from the MUL
type Client struct {
	http    *http.Client
	baseURL string
	delay   time.Duration
	backoff []time.Duration
	logger  *zap.Logger

	// retry delay from the most recent 429 response
	lastRetryAfter time.Duration
}

// NewClient creates a MUL client. delay is the pause between successful
// requests; jitter of ±30% is applied on top.
func NewClient(baseURL string, delay time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: trimTrailingSlash(baseURL),
		delay:   delay,
		backoff: []time.Duration{2 * time.Second, 5 * time.Second, 15 * time.Second},
		logger:  logger,
	}
}

// BaseURL returns the configured registry host
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchQuickList fetches the QuickList JSON for one unit type,
// iterating the tonnage buckets and concatenating the results into a
// single wrapped document.
func (c *Client) FetchQuickList(ctx context.Context, typeID int) (string, error) {
	var all []json.RawMessage

	for _, bucket := range tonnageBuckets {
		minTons, maxTons := bucket[0], bucket[1]
		url := fmt.Sprintf("%s/Unit/QuickList?Types=%d&MinTons=%d&MaxTons=%d",
			c.baseURL, typeID, minTons, maxTons)

		body, err := c.fetchWithRetry(ctx, url)
		if err != nil {
			return "", err
		}

		units, err := decodeQuickListRaw(body)
		if err != nil {
			return "", fmt.Errorf("failed to parse QuickList JSON for type=%d tons=%d-%d: %w",
				typeID, minTons, maxTons, err)
		}

		c.logger.Info("fetched QuickList range",
			zap.Int("type_id", typeID),
			zap.Int("min_tons", minTons),
			zap.Int("max_tons", maxTons),
			zap.Int("count", len(units)))
		all = append(all, units...)

		if err := c.SleepWithJitter(ctx); err != nil {
			return "", err
		}
	}

	wrapper := struct {
		Units []json.RawMessage `json:"Units"`
	}{Units: all}
	out, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode QuickList wrapper: %w", err)
	}
	return string(out), nil
}

// FetchDetail fetches one unit detail page HTML by MUL ID
func (c *Client) FetchDetail(ctx context.Context, mulID int) (string, error) {
	url := fmt.Sprintf("%s/Unit/Details/%d", c.baseURL, mulID)
	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// SleepWithJitter pauses between requests for the configured delay
// ±30%, respecting context cancellation.
func (c *Client) SleepWithJitter(ctx context.Context) error {
	if c.delay == 0 {
		return nil
	}
	jitterRange := time.Duration(float64(c.delay) * 0.3)
	actual := c.delay - jitterRange
	if jitterRange > 0 {
		actual += time.Duration(rand.Int63n(int64(jitterRange) * 2))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(actual):
		return nil
	}
}

// fetchWithRetry performs an HTTP GET with the MUL retry policy:
// up to maxRetries retries; 429 honors Retry-After (capped), 5xx uses
// the fixed backoff schedule, anything else fails immediately.
func (c *Client) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		body, status, err := c.get(ctx, url)
		if err == nil && status >= 200 && status < 300 {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var wait time.Duration
		switch {
		case err != nil:
			if attempt >= maxRetries {
				return nil, fmt.Errorf("request to %s failed after %d retries: %w", url, maxRetries, err)
			}
			wait = c.backoff[min(attempt, len(c.backoff)-1)]
			c.logger.Warn("request error, retrying",
				zap.String("url", url), zap.Error(err),
				zap.Duration("wait", wait), zap.Int("attempt", attempt))
		case status == http.StatusTooManyRequests:
			if attempt >= maxRetries {
				return nil, fmt.Errorf("request to %s failed after %d retries: HTTP %d", url, maxRetries, status)
			}
			wait = c.lastRetryAfter
			c.logger.Warn("rate limited, waiting",
				zap.String("url", url), zap.Int("status", status),
				zap.Duration("wait", wait), zap.Int("attempt", attempt))
		case status >= 500:
			if attempt >= maxRetries {
				return nil, fmt.Errorf("request to %s failed after %d retries: HTTP %d", url, maxRetries, status)
			}
			wait = c.backoff[min(attempt, len(c.backoff)-1)]
			c.logger.Warn("server error, retrying",
				zap.String("url", url), zap.Int("status", status),
				zap.Duration("wait", wait), zap.Int("attempt", attempt))
		default:
			return nil, fmt.Errorf("request to %s failed: HTTP %d", url, status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// get performs a single request, returning the body and status code
func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.lastRetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// parseRetryAfter reads a server-provided retry delay in seconds,
// capped at maxRetryAfter; missing or unparseable values get the default.
func parseRetryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
