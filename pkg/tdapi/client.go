// Package tdapi provides a Go client for the TD Ameritrade-style brokerage
// market data API.
//
// Only the read-only market data endpoints used to price option structures
// are covered: quotes and option chains.
package tdapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://api.tdameritrade.com"

// TokenProvider is an interface for obtaining authentication tokens.
// Implementations should handle token caching and refresh logic internally.
type TokenProvider interface {
	// Token returns a valid access token.
	Token() (string, error)
}

// Client handles HTTP requests to the market data API.
type Client struct {
	BaseURL       string
	TokenProvider TokenProvider
	HTTPClient    *http.Client
}

// NewClient creates a new API client with the given base URL and token provider.
func NewClient(baseURL string, tokenProvider TokenProvider) *Client {
	return &Client{
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		TokenProvider: tokenProvider,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Get performs a GET request to the specified path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path)
}

// GetWithParams performs a GET request to the specified path with query parameters.
func (c *Client) GetWithParams(ctx context.Context, path string, params map[string]string) (*http.Response, error) {
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path)
}

// do performs a single authenticated request. There is no retry: a 401 is
// reported to the caller like any other non-success status.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	if c.TokenProvider == nil {
		return nil, fmt.Errorf("no token provider configured")
	}

	token, err := c.TokenProvider.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	log.Tracef("%s %s", method, req.URL.String())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}
