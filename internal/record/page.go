// Package record models pages and databases. A Page tracks which of its
// properties were assigned since it was decoded so that updates only carry
// the properties the caller changed.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"maps"
	"slices"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/property"
	"github.com/agentic-research/notional/internal/schema"
)

// Page is a page and its property values.
type Page struct {
	ID             string
	Parent         api.Parent
	URL            string
	Icon           *api.Icon
	Cover          *api.File
	CreatedTime    api.Timestamp
	LastEditedTime api.Timestamp
	CreatedBy      *api.User
	LastEditedBy   *api.User
	Archived       bool

	names         []string
	props         map[string]property.Value
	dirty         map[string]bool
	archivedDirty bool
	schema        *schema.Schema
	members       map[string]json.RawMessage // source keys, nil for new pages

	body       []*block.Block
	bodyLoaded bool
	loader     block.ChildLoader
}

// NewPage returns an empty page to be created under parent. When s is
// non-nil, properties assigned with Set are validated against it.
func NewPage(parent api.Parent, s *schema.Schema) *Page {
	return &Page{
		Parent:     parent,
		props:      make(map[string]property.Value),
		dirty:      make(map[string]bool),
		schema:     s,
		bodyLoaded: true,
	}
}

type wirePage struct {
	Object         string          `json:"object"`
	ID             string          `json:"id"`
	Parent         *api.Parent     `json:"parent"`
	URL            string          `json:"url"`
	Icon           *api.Icon       `json:"icon"`
	Cover          *api.File       `json:"cover"`
	CreatedTime    api.Timestamp   `json:"created_time"`
	LastEditedTime api.Timestamp   `json:"last_edited_time"`
	CreatedBy      *api.User       `json:"created_by"`
	LastEditedBy   *api.User       `json:"last_edited_by"`
	Archived       bool            `json:"archived"`
	Properties     json.RawMessage `json:"properties"`
}

// DecodePage decodes a page. When s is non-nil the page must belong to the
// database s was taken from, and every property is validated against it.
func DecodePage(data []byte, s *schema.Schema) (*Page, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil || members == nil {
		return nil, api.Schemaf("page", "expected a JSON object")
	}
	var w wirePage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, asSchemaError("page", err)
	}
	if w.Object != "" && w.Object != "page" {
		return nil, api.Schemaf("page", "object is %q, not a page", w.Object)
	}

	p := NewPage(api.Parent{}, s)
	p.ID, p.URL, p.Icon, p.Cover = w.ID, w.URL, w.Icon, w.Cover
	p.CreatedTime, p.LastEditedTime = w.CreatedTime, w.LastEditedTime
	p.CreatedBy, p.LastEditedBy = w.CreatedBy, w.LastEditedBy
	p.Archived = w.Archived
	p.members = members
	p.bodyLoaded = false
	if w.Parent != nil {
		p.Parent = *w.Parent
	}
	if err := p.checkBinding(); err != nil {
		return nil, err
	}

	if len(w.Properties) == 0 || string(w.Properties) == "null" {
		return p, nil
	}
	keys, raw, err := api.OrderedObject(w.Properties)
	if err != nil {
		return nil, api.Schemaf("page", "properties: %v", err)
	}
	var kinds property.KindLookup
	if s != nil {
		kinds = s
	}
	for _, name := range keys {
		v, err := property.Decode(name, raw[name], kinds)
		if err != nil {
			return nil, err
		}
		if s != nil {
			if err := s.Validate(name, v); err != nil {
				return nil, err
			}
		}
		p.names = append(p.names, name)
		p.props[name] = v
	}
	return p, nil
}

func (p *Page) checkBinding() error {
	if p.schema == nil {
		return nil
	}
	if p.Parent.Type != api.ParentDatabase {
		return api.Schemaf("page", "page %s has a %s parent and cannot take a database schema", p.ID, p.Parent.Type)
	}
	if p.schema.DatabaseID != "" && !api.SameID(p.Parent.ID, p.schema.DatabaseID) {
		return api.Schemaf("page", "page %s belongs to database %s, not %s", p.ID, p.Parent.ID, p.schema.DatabaseID)
	}
	return nil
}

// Schema returns the schema the page is bound to, or nil.
func (p *Page) Schema() *schema.Schema { return p.schema }

// DatabaseID returns the id of the parent database, or "" for pages outside a database.
func (p *Page) DatabaseID() string {
	if p.Parent.Type != api.ParentDatabase {
		return ""
	}
	return p.Parent.ID
}

// Names lists the property names in the order the API returned them,
// followed by properties added since.
func (p *Page) Names() []string { return slices.Clone(p.names) }

// Properties iterates over the property values in Names order.
func (p *Page) Properties() iter.Seq2[string, property.Value] {
	return func(yield func(string, property.Value) bool) {
		for _, name := range p.names {
			if !yield(name, p.props[name]) {
				return
			}
		}
	}
}

// Get returns the named property value.
func (p *Page) Get(name string) (property.Value, error) {
	v, ok := p.props[name]
	if !ok {
		return nil, &api.UnknownPropertyError{Property: name}
	}
	return v, nil
}

// Set assigns a property value and marks it dirty. Pages bound to a schema
// validate v against it; other pages keep the kind a property was first read
// or set with. Values that pass are still refused when their kind is read-only.
func (p *Page) Set(name string, v property.Value) error {
	if v == nil {
		return errors.New("nil property value")
	}
	if p.schema != nil {
		if err := p.schema.Validate(name, v); err != nil {
			return err
		}
	} else if old, ok := p.props[name]; ok && old.Kind() != v.Kind() {
		return &api.KindMismatchError{Property: name, Declared: string(old.Kind()), Actual: string(v.Kind())}
	}
	if v.Kind().ReadOnly() {
		return &api.ReadOnlyPropertyError{Property: name, Kind: string(v.Kind())}
	}
	if _, ok := p.props[name]; !ok {
		p.names = append(p.names, name)
	}
	p.props[name] = v
	p.dirty[name] = true
	return nil
}

// Title returns the plain text of the title property.
func (p *Page) Title() string {
	for _, name := range p.names {
		if v := p.props[name]; v.Kind() == property.KindTitle {
			return v.String()
		}
	}
	return ""
}

// TitleProperty returns the name of the title property, or "".
func (p *Page) TitleProperty() string {
	if p.schema != nil {
		return p.schema.TitleProperty()
	}
	for _, name := range p.names {
		if p.props[name].Kind() == property.KindTitle {
			return name
		}
	}
	return ""
}

// Archive moves the page to the trash on the next update.
func (p *Page) Archive() {
	p.Archived = true
	p.archivedDirty = true
}

// Restore undoes Archive on the next update.
func (p *Page) Restore() {
	p.Archived = false
	p.archivedDirty = true
}

// Dirty lists the properties assigned since the page was decoded or last
// marked clean, in Names order.
func (p *Page) Dirty() []string {
	var out []string
	for _, name := range p.names {
		if p.dirty[name] {
			out = append(out, name)
		}
	}
	return out
}

// IsDirty reports whether an update would change anything.
func (p *Page) IsDirty() bool { return len(p.dirty) > 0 || p.archivedDirty }

// MarkClean forgets pending changes. Call it after a successful write.
func (p *Page) MarkClean() {
	clear(p.dirty)
	p.archivedDirty = false
}

// Reset replaces the page state with fresh, typically the server's reply to
// a write. The loaded body and the child loader are kept.
func (p *Page) Reset(fresh *Page) {
	body, loaded, loader := p.body, p.bodyLoaded, p.loader
	*p = *fresh
	p.dirty = make(map[string]bool)
	p.archivedDirty = false
	if loaded && !fresh.bodyLoaded {
		p.body, p.bodyLoaded = body, true
	}
	if p.loader == nil {
		p.loader = loader
	}
}

// EncodeForUpdate returns the body of an update request holding only the
// dirty properties. A clean page yields an empty property object.
func (p *Page) EncodeForUpdate() (json.RawMessage, error) {
	props := make(map[string]json.RawMessage, len(p.dirty))
	for name := range p.dirty {
		data, err := property.EncodeForWrite(name, p.props[name])
		if err != nil {
			return nil, err
		}
		props[name] = data
	}
	out := map[string]any{"properties": props}
	if p.archivedDirty {
		out["archived"] = p.Archived
	}
	return json.Marshal(out)
}

// EncodeForCreate returns the body of a create request holding every
// property. The body blocks, when loaded, are sent as children.
func (p *Page) EncodeForCreate() (json.RawMessage, error) {
	if p.Parent.IsZero() {
		return nil, api.Schemaf("page", "a new page needs a parent")
	}
	props := make(map[string]json.RawMessage, len(p.props))
	for name, v := range p.props {
		data, err := property.EncodeForWrite(name, v)
		if err != nil {
			return nil, err
		}
		props[name] = data
	}
	out := map[string]any{"parent": p.Parent, "properties": props}
	if p.Icon != nil {
		out["icon"] = p.Icon
	}
	if p.Cover != nil {
		out["cover"] = p.Cover
	}
	if body, ok := p.Body(); ok && len(body) > 0 {
		children, err := block.EncodeList(body)
		if err != nil {
			return nil, err
		}
		out["children"] = children
	}
	return json.Marshal(out)
}

// Encode returns the full JSON form of the page with current values.
func (p *Page) Encode() (json.RawMessage, error) {
	out := maps.Clone(p.members)
	if out == nil {
		out = map[string]json.RawMessage{"object": json.RawMessage(`"page"`)}
		out["parent"], _ = json.Marshal(p.Parent)
		if p.ID != "" {
			out["id"], _ = json.Marshal(p.ID)
		}
	}
	props := make(map[string]json.RawMessage, len(p.props))
	for name, v := range p.props {
		data, err := property.Encode(v)
		if err != nil {
			return nil, err
		}
		props[name] = data
	}
	var err error
	if out["properties"], err = json.Marshal(props); err != nil {
		return nil, err
	}
	if _, ok := out["archived"]; ok || p.Archived {
		out["archived"], _ = json.Marshal(p.Archived)
	}
	return json.Marshal(out)
}

// Bind attaches the loader used by LoadBody.
func (p *Page) Bind(loader block.ChildLoader) { p.loader = loader }

// Body returns the page body and whether it has been loaded. It never fetches.
func (p *Page) Body() ([]*block.Block, bool) { return p.body, p.bodyLoaded }

// SetBody sets the blocks of a page that is being built.
func (p *Page) SetBody(blocks ...*block.Block) {
	p.body, p.bodyLoaded = blocks, true
}

// LoadBody returns the top-level blocks of the page body, fetching them on
// first use. A failed fetch leaves the page unchanged.
func (p *Page) LoadBody(ctx context.Context) ([]*block.Block, error) {
	if p.bodyLoaded {
		return p.body, nil
	}
	if p.loader == nil {
		return nil, &api.NotBoundError{ObjectID: p.ID}
	}
	blocks, err := p.loader.LoadChildren(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.body, p.bodyLoaded = blocks, true
	return blocks, nil
}

func asSchemaError(object string, err error) error {
	var se *api.SchemaError
	if errors.As(err, &se) {
		return se
	}
	return api.Schemaf(object, "%v", err)
}
