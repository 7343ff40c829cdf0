// Package schwab provides a Go client for the Schwab trader and market-data
// APIs.
//
// Every method issues one authenticated GET request and decodes the JSON
// payload into typed structs. Tokens come from a TokenProvider, normally an
// *auth.Session.
package schwab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the production API host.
const DefaultBaseURL = "https://api.schwabapi.com"

// TokenProvider is an interface for obtaining access tokens.
type TokenProvider interface {
	// Token returns the current access token, materializing one if needed.
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenProvider that always returns the same token.
type StaticToken string

// Token implements TokenProvider.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Client handles HTTP requests to the Schwab API.
type Client struct {
	BaseURL       string
	TokenProvider TokenProvider
	HTTPClient    *http.Client
	Logger        *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.Logger = l
		}
	}
}

// NewClient creates a new API client with the given base URL and token provider.
func NewClient(baseURL string, tokenProvider TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		TokenProvider: tokenProvider,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientWithToken creates a new API client with a static token.
func NewClientWithToken(baseURL, token string, opts ...ClientOption) *Client {
	return NewClient(baseURL, StaticToken(token), opts...)
}

// Get performs a GET request to the specified path, which may already carry
// a query string. Parameters with empty values are left out.
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (*http.Response, error) {
	if query := encodeParams(params); query != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path = path + sep + query
	}

	if c.TokenProvider == nil {
		return nil, fmt.Errorf("no token provider configured")
	}
	token, err := c.TokenProvider.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// getJSON performs a GET and decodes a 2xx body into target.
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, target any) error {
	resp, err := c.Get(ctx, path, params)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return err
	}
	return DecodeJSON(resp, target)
}

func encodeParams(params map[string]string) string {
	query := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		query.Set(k, v)
	}
	return query.Encode()
}

// escapeSegment escapes s for use as a single path segment, encoding every
// reserved character including '/'.
func escapeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// joinSymbols comma-joins symbols in order. Each symbol is query-escaped on
// its own and the separators are left literal.
func joinSymbols(symbols []string) string {
	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = url.QueryEscape(s)
	}
	return strings.Join(escaped, ",")
}
