// Package client provides the HTTP client used to talk to the record API,
// with optional response caching and request pacing.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/pokemon-export/pkg/cache"
	"github.com/Sternrassler/pokemon-export/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokemon_export_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokemon_export_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokemon_export_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "pokemon-export/0.1.0"

// Config holds the client configuration.
type Config struct {
	// User-Agent header
	UserAgent string

	// Timeout is the per-request HTTP timeout (default 30s)
	Timeout time.Duration

	// Cache is an optional response cache; nil disables caching
	Cache cache.Store

	// CacheTTL is the fallback TTL when a response has no Expires header
	CacheTTL time.Duration

	// Limiter paces requests; nil disables pacing
	Limiter *ratelimit.Limiter
}

// DefaultConfig returns a configuration without caching or pacing.
func DefaultConfig() Config {
	return Config{
		UserAgent: DefaultUserAgent,
		Timeout:   30 * time.Second,
		CacheTTL:  cache.DefaultTTL,
	}
}

// Client performs GET requests against the record API.
type Client struct {
	httpClient *http.Client
	cache      cache.Store
	limiter    *ratelimit.Limiter
	config     Config
	logger     zerolog.Logger
}

// New creates a new API client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:   cfg.Cache,
		limiter: cfg.Limiter,
		config:  cfg,
		logger:  logger.With().Str("component", "api-client").Logger(),
	}, nil
}

// Get fetches rawURL and returns the response body.
// Any transport failure or non-2xx status is returned as *APIError.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, ErrEmptyURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	endpoint := u.Path

	cacheKey := cache.KeyFromURL(u)
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			c.logger.Debug().Str("url", rawURL).Msg("Serving response from cache")
			requestsTotal.WithLabelValues(endpoint, "cached").Inc()
			return entry.Data, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("url", rawURL).Msg("Cache get error")
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &APIError{URL: rawURL, ErrorClass: ErrorClassNetwork, Message: "request not sent", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", rawURL).Msg("Executing API request")

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &APIError{URL: rawURL, ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if !isSuccess(resp.StatusCode) {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &APIError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry := cache.NewEntry(body, resp.StatusCode, resp.Header, c.config.CacheTTL)
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("url", rawURL).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return body, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
