package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/dmitrijs2005/loginflow/internal/client/models"
)

// DefaultTimeout bounds a single request when no other timeout is given.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 1 << 20

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client. A nil Jar is filled
// in so that cookies set by the API are sent back on later calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc.Jar == nil {
			hc.Jar = c.httpClient.Jar
		}
		c.httpClient = hc
	}
}

// New creates an API client for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) *HTTPClient {
	// cookiejar.New never returns an error.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Login calls POST /api/v1/login/.
func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := c.do(ctx, http.MethodPost, LoginPath, creds, "", &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// GetMe calls GET /api/v1/get-me/ with a bearer token.
func (c *HTTPClient) GetMe(ctx context.Context, accessToken string) (*models.Profile, error) {
	var profile *models.Profile
	if err := c.do(ctx, http.MethodGet, ProfilePath, nil, accessToken, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Refresh calls POST /api/v1/token/refresh/.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := c.do(ctx, http.MethodPost, RefreshPath, refreshRequest{Refresh: refreshToken}, "", &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// do performs one JSON round trip. in is encoded as the body when non-nil;
// out receives the decoded 2xx body.
func (c *HTTPClient) do(ctx context.Context, method, path string, in any, bearer string, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return c.handleRequestError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ParseErrorBody(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: status %d: %w", ErrMalformedResponse, resp.StatusCode, err)
	}
	return nil
}

// handleRequestError converts transport and context errors to ErrUnavailable.
func (c *HTTPClient) handleRequestError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%w: request canceled", ErrUnavailable)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: request timed out", ErrUnavailable)
	}
	return fmt.Errorf("%w: cannot connect to %s: %w", ErrUnavailable, c.baseURL, err)
}
