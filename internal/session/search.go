package session

import (
	"context"
	"encoding/json"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/iterator"
	"github.com/agentic-research/notional/internal/record"
)

// SearchResult is one hit of a search: exactly one of Page and Database is set.
type SearchResult struct {
	Page     *record.Page
	Database *record.Database
}

// Object returns "page" or "database".
func (r SearchResult) Object() string {
	if r.Database != nil {
		return "database"
	}
	return "page"
}

// ObjectFilter restricts a search to pages or to databases.
func ObjectFilter(object string) map[string]any {
	return map[string]any{"property": "object", "value": object}
}

// Search returns an iterator over the pages and databases shared with the
// integration whose title matches query. An empty query matches everything.
// Pages are not checked against their database's schema; fetch them again
// with FetchPage to edit them.
func (s *Session) Search(query string, filter any) *iterator.Iterator[SearchResult] {
	fetch := func(ctx context.Context, cursor string) (*api.ListResponse, error) {
		body := map[string]any{"page_size": s.pageSize}
		if query != "" {
			body["query"] = query
		}
		if filter != nil {
			body["filter"] = filter
		}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		data, err := s.call(ctx, api.MethodPost, "search", body)
		if err != nil {
			return nil, err
		}
		return decodeList(data)
	}
	return iterator.New(fetch, s.decodeSearchResult)
}

func (s *Session) decodeSearchResult(data json.RawMessage) (SearchResult, error) {
	var head struct {
		Object string `json:"object"`
		ID     string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return SearchResult{}, api.Schemaf("search", "%v", err)
	}
	switch head.Object {
	case "database":
		db, err := record.DecodeDatabase(data)
		if err != nil {
			return SearchResult{}, s.decodeFailed("database", head.ID, err)
		}
		return SearchResult{Database: db}, nil
	case "page":
		p, err := record.DecodePage(data, nil)
		if err != nil {
			return SearchResult{}, s.decodeFailed("page", head.ID, err)
		}
		p.Bind(s)
		return SearchResult{Page: p}, nil
	}
	return SearchResult{}, api.Schemaf("search", "unexpected object %q", head.Object)
}
