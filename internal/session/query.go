package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/iterator"
	"github.com/agentic-research/notional/internal/record"
	"github.com/agentic-research/notional/internal/schema"
)

// ErrNoResults is returned by Query.First when nothing matches.
var ErrNoResults = errors.New("query returned no results")

// Query is a database query under construction. Filters and sorts are
// passed to the API as given.
type Query struct {
	s          *Session
	databaseID string
	filter     any
	sorts      []any
	limit      int
}

// Query starts a query against a database.
func (s *Session) Query(databaseID string) *Query {
	return &Query{s: s, databaseID: databaseID}
}

// Filter sets the filter object, e.g. a map or a json.RawMessage.
func (q *Query) Filter(f any) *Query {
	if raw, ok := f.(json.RawMessage); ok && len(raw) == 0 {
		f = nil
	}
	q.filter = f
	return q
}

// Sort appends sort objects.
func (q *Query) Sort(sorts ...any) *Query {
	q.sorts = append(q.sorts, sorts...)
	return q
}

// Limit caps the number of pages returned.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Execute fetches the database schema and returns an iterator over the
// matching pages. No page is fetched until the iterator is advanced.
func (q *Query) Execute(ctx context.Context) (*iterator.Iterator[*record.Page], error) {
	path, err := objectPath("databases", q.databaseID)
	if err != nil {
		return nil, err
	}
	db, err := q.s.FetchDatabase(ctx, q.databaseID)
	if err != nil {
		return nil, err
	}
	size := q.s.pageSize
	if q.limit > 0 && q.limit < size {
		size = q.limit
	}
	fetch := func(ctx context.Context, cursor string) (*api.ListResponse, error) {
		body := map[string]any{"page_size": size}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		if q.filter != nil {
			body["filter"] = q.filter
		}
		if len(q.sorts) > 0 {
			body["sorts"] = q.sorts
		}
		data, err := q.s.call(ctx, api.MethodPost, path+"/query", body)
		if err != nil {
			return nil, err
		}
		return decodeList(data)
	}
	return iterator.New(fetch, q.s.pageDecoder(db.Schema)).Limit(q.limit), nil
}

// First returns the first matching page.
func (q *Query) First(ctx context.Context) (*record.Page, error) {
	it, err := q.Limit(1).Execute(ctx)
	if err != nil {
		return nil, err
	}
	if !it.Next(ctx) {
		if err := it.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNoResults
	}
	return it.Value(), nil
}

// QueryDatabase runs a query with an optional filter and sorts.
func (s *Session) QueryDatabase(ctx context.Context, databaseID string, filter any, sorts ...any) (*iterator.Iterator[*record.Page], error) {
	return s.Query(databaseID).Filter(filter).Sort(sorts...).Execute(ctx)
}

func (s *Session) pageDecoder(sch *schema.Schema) iterator.DecodeFunc[*record.Page] {
	return func(data json.RawMessage) (*record.Page, error) {
		p, err := record.DecodePage(data, sch)
		if err != nil {
			return nil, s.decodeFailed("page", "", err)
		}
		p.Bind(s)
		return p, nil
	}
}
