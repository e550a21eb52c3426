package session

import (
	"context"
	"slices"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/property"
	"github.com/agentic-research/notional/internal/record"
	"github.com/agentic-research/notional/internal/schema"
)

// FetchPage retrieves a page. Pages inside a database are decoded against
// that database's schema, which costs one extra request.
func (s *Session) FetchPage(ctx context.Context, id string) (*record.Page, error) {
	path, err := objectPath("pages", id)
	if err != nil {
		return nil, err
	}
	data, err := s.call(ctx, api.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return s.decodePage(ctx, data)
}

func (s *Session) decodePage(ctx context.Context, data []byte) (*record.Page, error) {
	p, err := record.DecodePage(data, nil)
	if err != nil {
		return nil, s.decodeFailed("page", "", err)
	}
	if dbID := p.DatabaseID(); dbID != "" {
		db, err := s.FetchDatabase(ctx, dbID)
		if err != nil {
			return nil, err
		}
		id := p.ID
		if p, err = record.DecodePage(data, db.Schema); err != nil {
			return nil, s.decodeFailed("page", id, err)
		}
	}
	p.Bind(s)
	return p, nil
}

// FetchDatabase retrieves a database and its schema.
func (s *Session) FetchDatabase(ctx context.Context, id string) (*record.Database, error) {
	path, err := objectPath("databases", id)
	if err != nil {
		return nil, err
	}
	data, err := s.call(ctx, api.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	db, err := record.DecodeDatabase(data)
	if err != nil {
		return nil, s.decodeFailed("database", id, err)
	}
	return db, nil
}

// CreatePage creates a page under parent with the given properties and
// body. Properties are validated against the parent database's schema
// before anything is sent.
func (s *Session) CreatePage(ctx context.Context, parent api.Parent, props map[string]property.Value, body ...*block.Block) (*record.Page, error) {
	var sch *schema.Schema
	if parent.Type == api.ParentDatabase {
		db, err := s.FetchDatabase(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		sch = db.Schema
	}
	p := record.NewPage(parent, sch)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := p.Set(name, props[name]); err != nil {
			return nil, err
		}
	}
	if len(body) > 0 {
		p.SetBody(body...)
	}
	return s.InsertPage(ctx, p)
}

// InsertPage creates p, a page built with record.NewPage, and returns the
// page the server stored.
func (s *Session) InsertPage(ctx context.Context, p *record.Page) (*record.Page, error) {
	payload, err := p.EncodeForCreate()
	if err != nil {
		return nil, err
	}
	data, err := s.call(ctx, api.MethodPost, "pages", payload)
	if err != nil {
		return nil, err
	}
	created, err := record.DecodePage(data, p.Schema())
	if err != nil {
		return nil, s.decodeFailed("page", "", err)
	}
	created.Bind(s)
	return created, nil
}

// UpdatePage assigns props to the page id and saves them. The page is read
// first so the new values are validated against its schema.
func (s *Session) UpdatePage(ctx context.Context, id string, props map[string]property.Value) (*record.Page, error) {
	p, err := s.FetchPage(ctx, id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := p.Set(name, props[name]); err != nil {
			return nil, err
		}
	}
	if err := s.SavePage(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SavePage sends the dirty properties of p. On success p takes the state
// the server returned and is clean; on failure p is unchanged. A clean
// page is not sent.
func (s *Session) SavePage(ctx context.Context, p *record.Page) error {
	if !p.IsDirty() {
		return nil
	}
	path, err := objectPath("pages", p.ID)
	if err != nil {
		return err
	}
	payload, err := p.EncodeForUpdate()
	if err != nil {
		return err
	}
	data, err := s.call(ctx, api.MethodPatch, path, payload)
	if err != nil {
		return err
	}
	fresh, err := record.DecodePage(data, p.Schema())
	if err != nil {
		return s.decodeFailed("page", p.ID, err)
	}
	fresh.Bind(s)
	p.Reset(fresh)
	return nil
}

// CreateDatabase creates a database inside the page parentPageID.
func (s *Session) CreateDatabase(ctx context.Context, parentPageID, title string, sch *schema.Schema) (*record.Database, error) {
	db := record.NewDatabase(parentPageID, title, sch)
	payload, err := db.EncodeForCreate()
	if err != nil {
		return nil, err
	}
	data, err := s.call(ctx, api.MethodPost, "databases", payload)
	if err != nil {
		return nil, err
	}
	created, err := record.DecodeDatabase(data)
	if err != nil {
		return nil, s.decodeFailed("database", "", err)
	}
	return created, nil
}
