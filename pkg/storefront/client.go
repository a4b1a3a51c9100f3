// Package storefront provides the Storefront GraphQL transport: endpoint
// normalization, the products query, typed page decoding and an optional
// Redis page cache.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/storefront-catalog/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for storefront requests.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total storefront page requests by status",
	}, []string{"status"})

	catalogRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Storefront page request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total failed storefront page requests by error kind",
	}, []string{"kind"})
)

// Client issues products queries against one storefront.
type Client struct {
	httpClient *http.Client
	endpoint   Endpoint
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Domain is the raw shop domain; it is normalized by New.
	Domain string

	// Token is the Storefront API access token (REQUIRED).
	Token string

	// APIVersion selects the API path segment (default DefaultAPIVersion).
	APIVersion string

	// EndpointURL overrides the computed endpoint URL when set.
	EndpointURL string

	// Timeout bounds a single HTTP request. Zero means no timeout.
	Timeout time.Duration

	// Cache enables the Redis page cache when non-nil.
	Cache    *cache.Manager
	CacheTTL time.Duration
}

// DefaultConfig returns the default configuration for a shop.
func DefaultConfig(domain, token string) Config {
	return Config{
		Domain:     domain,
		Token:      token,
		APIVersion: DefaultAPIVersion,
		Timeout:    30 * time.Second,
		CacheTTL:   cache.DefaultTTL,
	}
}

// New creates a new storefront client.
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	endpoint := NewEndpoint(cfg.Domain, cfg.Token, cfg.APIVersion)
	if cfg.EndpointURL != "" {
		if _, err := url.Parse(cfg.EndpointURL); err != nil {
			return nil, fmt.Errorf("parse endpoint url: %w", err)
		}
		endpoint.URL = cfg.EndpointURL
	}

	logger := log.With().
		Str("component", "storefront").
		Str("shop", endpoint.Domain).
		Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint: endpoint,
		cache:    cfg.Cache,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Endpoint returns the endpoint configuration the client talks to.
func (c *Client) Endpoint() Endpoint {
	return c.endpoint
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// FetchPage requests the page of at most limit products following cursor.
// Failures are returned as *APIError.
func (c *Client) FetchPage(ctx context.Context, cursor string, limit int) (*Page, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	key := c.pageKey(cursor, limit)

	if page := c.cachedPage(ctx, key); page != nil {
		return page, nil
	}

	startTime := time.Now()
	defer func() {
		catalogRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	payload, err := json.Marshal(map[string]string{"query": ProductsQuery(cursor, limit)})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = c.endpoint.Headers()

	c.logger.Debug().
		Str("endpoint", c.endpoint.URL).
		Str("cursor", cursor).
		Int("limit", limit).
		Msg("Executing products query")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		catalogRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, c.fail(&APIError{
			Kind:    ErrorKindNetwork,
			Message: "request failed",
			Err:     err,
		})
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&APIError{
			Kind:       ErrorKindNetwork,
			StatusCode: resp.StatusCode,
			Message:    "read response body",
			Err:        err,
		})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail(&APIError{
			Kind:       ErrorKindHTTPStatus,
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			Body:       string(body),
		})
	}

	page, err := decodePage(body, resp.StatusCode)
	if err != nil {
		return nil, c.fail(err)
	}

	c.storePage(ctx, key, body)
	return page, nil
}

// fail records metrics for a failed request and returns err unchanged.
func (c *Client) fail(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		catalogErrorsTotal.WithLabelValues(string(apiErr.Kind)).Inc()
		c.logger.Debug().
			Str("error_kind", string(apiErr.Kind)).
			Int("status_code", apiErr.StatusCode).
			Msg("Products query failed")
	}
	return err
}

// PurgeCache drops every cached page of this endpoint. It is a no-op
// without a cache.
func (c *Client) PurgeCache(ctx context.Context) (int, error) {
	if c.cache == nil {
		return 0, nil
	}
	deleted, err := c.cache.Purge(ctx, c.cacheEndpoint())
	if err != nil {
		return deleted, fmt.Errorf("purge page cache: %w", err)
	}
	c.logger.Debug().Int("deleted", deleted).Msg("Purged cached pages")
	return deleted, nil
}

func (c *Client) cacheEndpoint() string {
	if u, err := url.Parse(c.endpoint.URL); err == nil {
		return u.Host + u.Path
	}
	return c.endpoint.URL
}

func (c *Client) pageKey(cursor string, limit int) cache.PageKey {
	return cache.PageKey{
		Endpoint: c.cacheEndpoint(),
		Limit:    limit,
		Cursor:   cursor,
	}
}

// cachedPage returns a page from the cache, or nil on miss or any cache failure.
func (c *Client) cachedPage(ctx context.Context, key cache.PageKey) *Page {
	if c.cache == nil {
		return nil
	}

	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
		}
		return nil
	}

	page, err := decodePage(entry.Data, http.StatusOK)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Discarding undecodable cached page")
		_ = c.cache.Delete(ctx, key)
		return nil
	}

	c.logger.Debug().Str("key", key.String()).Msg("Serving page from cache")
	return page
}

func (c *Client) storePage(ctx context.Context, key cache.PageKey, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, cache.NewEntry(body, c.config.CacheTTL)); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache page")
	}
}
