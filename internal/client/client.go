// Package client is the request gateway to the remote document
// service: authenticated JSON-over-HTTPS requests against a
// configurable base URL and API version prefix, with an injectable
// request cache and cursor pagination helpers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/altum-labs/docharvest/internal/core/domain"
	"github.com/altum-labs/docharvest/internal/logger"
	"github.com/altum-labs/docharvest/internal/metrics"
)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the page size requested from list endpoints.
	DefaultPageSize = 100

	// apiVersion is the version prefix appended to the base URL.
	apiVersion = "/v1"
)

// Client issues authenticated requests against the remote service.
// Credential and base URL are mutable; a change takes effect on the
// next call, in-flight requests are not affected.
type Client struct {
	mu       sync.RWMutex
	baseURL  string
	token    string
	pageSize int

	httpClient *http.Client
	cache      *requestCache
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithPageSize sets the page size requested from list endpoints.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRateLimit enables proactive request pacing at rps requests per
// second with the given burst. The default is unlimited; the chunked
// scheduler is the primary throttle.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPClient replaces the underlying HTTP client. The caller is
// then responsible for bearer auth injection.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a gateway for the given base URL and bearer token.
// An empty base URL or token fails with ErrInvalidConfiguration.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: base URL is empty", domain.ErrInvalidConfiguration)
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: credential is empty", domain.ErrInvalidConfiguration)
	}

	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		pageSize: DefaultPageSize,
		cache:    newRequestCache(),
		limiter:  rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: &oauth2.Transport{
				Source: tokenSource{c},
				Base:   http.DefaultTransport,
			},
			Timeout: DefaultTimeout,
		}
	}
	return c, nil
}

// tokenSource adapts the client's mutable credential to oauth2 so
// every outbound request picks up the current token.
type tokenSource struct {
	c *Client
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	if s.c.token == "" {
		return nil, fmt.Errorf("%w: credential is empty", domain.ErrInvalidConfiguration)
	}
	return &oauth2.Token{AccessToken: s.c.token, TokenType: "Bearer"}, nil
}

// SetToken replaces the bearer token. Setting an empty token fails
// with ErrInvalidConfiguration.
func (c *Client) SetToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: credential is empty", domain.ErrInvalidConfiguration)
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// SetBaseURL replaces the base URL. Setting an empty URL fails with
// ErrInvalidConfiguration.
func (c *Client) SetBaseURL(baseURL string) error {
	if strings.TrimSpace(baseURL) == "" {
		return fmt.Errorf("%w: base URL is empty", domain.ErrInvalidConfiguration)
	}
	c.mu.Lock()
	c.baseURL = strings.TrimRight(baseURL, "/")
	c.mu.Unlock()
	return nil
}

// Fetch issues a request against a relative endpoint path (combined
// with the base URL and version prefix) and returns the raw response
// body.
func (c *Client) Fetch(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	return c.request(ctx, method, c.resolveURL(endpoint), body)
}

// FetchURL issues a request against an absolute "ready" URL, as
// supplied by pagination cursors and cross-service references.
func (c *Client) FetchURL(ctx context.Context, method, url string, body any) ([]byte, error) {
	return c.request(ctx, method, url, body)
}

func (c *Client) resolveURL(endpoint string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL + apiVersion + endpoint
}

func (c *Client) request(ctx context.Context, method, url string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	if response, ok := c.cache.lookup(url, payload); ok {
		logger.Debug("client: cached %s", url)
		metrics.CacheHits.Inc()
		return response, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("client: %s %s", method, url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(method, metrics.OutcomeTransportError).Inc()
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(method, metrics.OutcomeTransportError).Inc()
		return nil, &TransportError{URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RequestsTotal.WithLabelValues(method, metrics.OutcomeHTTPError).Inc()
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: data, URL: url}
	}

	metrics.RequestsTotal.WithLabelValues(method, metrics.OutcomeSuccess).Inc()
	c.cache.store(url, payload, data)
	return data, nil
}
