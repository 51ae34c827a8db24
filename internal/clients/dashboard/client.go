// Package dashboard is the HTTP client for the upstream dashboard API that
// supplies the daily time series, detected insights and source status.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aristath/wellness/internal/domain"
	"github.com/aristath/wellness/internal/metrics"
)

// ErrUpstream wraps every failure talking to the dashboard API.
var ErrUpstream = errors.New("dashboard upstream error")

// SourcesStatus is displayed as-is; the core never computes on it.
type SourcesStatus struct {
	Sources     map[string]any `json:"sources"`
	Coverage    map[string]any `json:"coverage"`
	LastSyncISO *string        `json:"last_sync_iso"`
}

// Client talks to the dashboard API. The last good response per endpoint and
// range is kept and served when the API fails.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	metrics *metrics.Metrics
	log     zerolog.Logger

	mu    sync.RWMutex
	stale map[string][]byte
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RatePerSecond bounds outgoing requests; 0 means 5/s.
	RatePerSecond float64
}

// NewClient creates a new dashboard API client
func NewClient(cfg Config, m *metrics.Metrics, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), int(cfg.RatePerSecond)*2+1),
		metrics: m,
		log:     log.With().Str("client", "dashboard").Logger(),
		stale:   make(map[string][]byte),
	}
}

// TimeSeries fetches the last rangeDays days of metrics.
func (c *Client) TimeSeries(ctx context.Context, rangeDays int) (domain.TimeSeries, error) {
	var body struct {
		Series domain.TimeSeries `json:"series"`
	}
	if err := c.get(ctx, "/dashboard/timeseries", rangeDays, &body); err != nil {
		return domain.TimeSeries{}, err
	}
	if err := body.Series.Validate(); err != nil {
		return domain.TimeSeries{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return body.Series, nil
}

// Insights fetches the insights detected over the last rangeDays days.
func (c *Client) Insights(ctx context.Context, rangeDays int) ([]domain.Insight, error) {
	var body struct {
		Insights []domain.Insight `json:"insights"`
	}
	if err := c.get(ctx, "/insights", rangeDays, &body); err != nil {
		return nil, err
	}
	return body.Insights, nil
}

// SourcesStatus fetches source connectivity and coverage.
func (c *Client) SourcesStatus(ctx context.Context, rangeDays int) (*SourcesStatus, error) {
	var status SourcesStatus
	if err := c.get(ctx, "/sources/status", rangeDays, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) get(ctx context.Context, endpoint string, rangeDays int, out any) error {
	q := url.Values{}
	q.Set("range_days", strconv.Itoa(rangeDays))
	reqURL := c.baseURL + endpoint + "?" + q.Encode()
	cacheKey := endpoint + "?" + q.Encode()

	raw, err := c.fetch(ctx, endpoint, reqURL)
	if err != nil {
		if cached, ok := c.staleBody(cacheKey); ok {
			c.log.Warn().Err(err).Str("endpoint", endpoint).Int("range_days", rangeDays).
				Msg("API failed, using stale cached response")
			raw = cached
		} else {
			return err
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: failed to parse %s response: %w", ErrUpstream, endpoint, err)
	}

	c.mu.Lock()
	c.stale[cacheKey] = raw
	c.mu.Unlock()
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: no upstream URL configured", ErrUpstream)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	start := time.Now()
	resp, err := c.client.Do(req)
	c.metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%w: request failed: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.metrics.UpstreamRequests.WithLabelValues(endpoint, statusClass(resp.StatusCode)).Inc()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstream, endpoint, resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s response: %w", ErrUpstream, endpoint, err)
	}
	c.log.Debug().Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("Fetched")
	return raw, nil
}

func (c *Client) staleBody(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, ok := c.stale[key]
	return raw, ok
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
