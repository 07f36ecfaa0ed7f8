// Package defillama reads protocol TVL from the public DefiLlama API.
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"bounty-recon/internal/domain"
	"bounty-recon/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.llama.fi"
	DefaultTimeout = 30 * time.Second
	ProtocolsPath  = "/protocols"

	userAgent       = "bounty-recon/1.0"
	maxErrorSnippet = 256
)

// HTTPClient is a read-only DefiLlama API client. It never retries.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// WithLogger sets the logger used for soft-failure warnings.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// WithMetrics records fetch duration and failures.
func WithMetrics(m *observability.Metrics) ClientOption {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// NewHTTPClient creates a new DefiLlama client.
func NewHTTPClient(opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProtocols performs one GET of the protocols listing.
func (c *HTTPClient) FetchProtocols(ctx context.Context) ([]Protocol, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+ProtocolsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippet))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var protocols []Protocol
	if err := json.NewDecoder(resp.Body).Decode(&protocols); err != nil {
		return nil, fmt.Errorf("decode protocols: %w", err)
	}
	return protocols, nil
}

// FetchTVL returns live TVL keyed by lowercase slug. Any failure is logged
// as a warning and degrades to an empty lookup.
func (c *HTTPClient) FetchTVL(ctx context.Context) domain.TVLLookup {
	start := time.Now()
	protocols, err := c.FetchProtocols(ctx)
	c.metrics.RecordFetch(time.Since(start).Seconds(), len(protocols), err)

	if err != nil {
		c.logger.Warn("failed to fetch TVL data", zap.String("url", c.baseURL+ProtocolsPath), zap.Error(err))
		return domain.TVLLookup{}
	}

	lookup := BuildLookup(protocols)
	c.logger.Debug("fetched TVL data", zap.Int("protocols", len(protocols)), zap.Int("slugs", len(lookup)))
	return lookup
}

// BuildLookup indexes protocols by lowercase slug. A later duplicate slug wins.
func BuildLookup(protocols []Protocol) domain.TVLLookup {
	lookup := make(domain.TVLLookup, len(protocols))
	for _, p := range protocols {
		lookup[strings.ToLower(p.Slug)] = p.TVLValue()
	}
	return lookup
}
