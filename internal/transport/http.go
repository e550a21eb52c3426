// Package transport implements api.Transport over the Notion HTTP API.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/agentic-research/notional/api"
)

const (
	DefaultBaseURL    = "https://api.notion.com/v1"
	DefaultAPIVersion = "2022-06-28"
	defaultTimeout    = 30 * time.Second
	maxErrorBody      = 64 << 10
)

// APIError is the error object the API returns with a non-2xx status.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

// Client calls the API with a bearer token.
type Client struct {
	baseURL string
	version string
	http    *http.Client
}

var _ api.Transport = (*Client)(nil)

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL string
	version string
	base    *http.Client
}

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIVersion sets the Notion-Version header.
func WithAPIVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// WithHTTPClient sets the client the authenticated client is layered on.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.base = c }
}

// New returns a client authenticating with token.
func New(token string, opts ...Option) *Client {
	o := options{
		baseURL: DefaultBaseURL,
		version: DefaultAPIVersion,
		base:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(&o)
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, o.base)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &Client{
		baseURL: o.baseURL,
		version: o.version,
		http:    oauth2.NewClient(ctx, src),
	}
}

// Request implements api.Transport.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), rd)
	if err != nil {
		return nil, &api.TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &api.TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		te := &api.TransportError{Method: method, Path: path, Status: resp.StatusCode, Body: raw}
		var ae APIError
		if json.Unmarshal(raw, &ae) == nil && ae.Code != "" {
			te.Err = &ae
		}
		return nil, te
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &api.TransportError{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("{}"), nil
	}
	return data, nil
}
