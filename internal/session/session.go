// Package session binds a Transport to the typed object model. Every page
// it decodes is checked against the schema of its parent database, and
// every page and block it returns can load its children through it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/iterator"
)

// MaxPageSize is the largest batch the list endpoints return.
const MaxPageSize = 100

// Session issues API calls through a Transport and decodes the replies.
// It holds no mutable state and may be shared between goroutines; the
// objects it returns may not.
type Session struct {
	transport api.Transport
	log       *zap.Logger
	pageSize  int
	strict    bool
}

var _ block.ChildLoader = (*Session)(nil)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPageSize sets the batch size requested from list endpoints.
func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 && n <= MaxPageSize {
			s.pageSize = n
		}
	}
}

// WithStrictBlocks makes unknown block types fail instead of decoding to
// block.Unsupported.
func WithStrictBlocks() Option {
	return func(s *Session) { s.strict = true }
}

// New returns a session over t.
func New(t api.Transport, opts ...Option) *Session {
	s := &Session{transport: t, log: zap.NewNop(), pageSize: MaxPageSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// call issues one request. Transport errors are returned unchanged.
func (s *Session) call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	s.log.Debug("notion request", zap.String("method", method), zap.String("path", path))
	data, err := s.transport.Request(ctx, method, path, body)
	if err != nil {
		s.log.Debug("notion request failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return data, nil
}

func (s *Session) decodeFailed(object, id string, err error) error {
	s.log.Warn("decode failed", zap.String("object", object), zap.String("id", id), zap.Error(err))
	return err
}

func (s *Session) blockDecoder() block.Decoder {
	return block.Decoder{Loader: s, Observe: s.unknownBlock, Strict: s.strict}
}

func (s *Session) unknownBlock(err *api.UnknownBlockTypeError) {
	s.log.Warn("unsupported block type", zap.String("block", err.BlockID), zap.String("type", err.Type))
}

// list returns a fetch function for a GET list endpoint.
func (s *Session) list(path string) iterator.FetchFunc {
	return func(ctx context.Context, cursor string) (*api.ListResponse, error) {
		q := url.Values{"page_size": {strconv.Itoa(s.pageSize)}}
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		data, err := s.call(ctx, api.MethodGet, path+"?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		return decodeList(data)
	}
}

// decodeList reads a list envelope. results must be an array and has_more a
// boolean; a reply missing either is not a list.
func decodeList(data json.RawMessage) (*api.ListResponse, error) {
	var resp api.ListResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, api.Schemaf("list", "%v", err)
	}
	var present struct {
		HasMore *bool `json:"has_more"`
	}
	_ = json.Unmarshal(data, &present)
	switch {
	case resp.Results == nil:
		return nil, api.Schemaf("list", "missing results array")
	case present.HasMore == nil:
		return nil, api.Schemaf("list", "missing has_more")
	}
	return &resp, nil
}

func objectPath(collection, id string) (string, error) {
	norm, err := api.NormalizeID(id)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", collection, id, err)
	}
	return collection + "/" + norm, nil
}
