package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// HTTP methods used by the session.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPatch  = http.MethodPatch
	MethodDelete = http.MethodDelete
)

// Transport issues a single API call and returns the parsed response body.
// path is relative to the API root (e.g. "pages/<id>"); body, when non-nil,
// is encoded as JSON. Non-2xx responses are reported as *TransportError.
// Retries, rate limiting and cancellation belong to the implementation.
type Transport interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, method, path string, body any) (json.RawMessage, error)

func (f TransportFunc) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	return f(ctx, method, path, body)
}

// ListResponse is the envelope returned by every paginated list endpoint.
type ListResponse struct {
	Object     string            `json:"object,omitempty"`
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor Opt[string]       `json:"next_cursor,omitzero"`
}

// Cursor returns the continuation token, or "" when none was provided.
func (l *ListResponse) Cursor() string {
	return l.NextCursor.Value()
}
