package record

import (
	"encoding/json"
	"maps"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/richtext"
	"github.com/agentic-research/notional/internal/schema"
)

// Database is a database and its schema. It holds no pages; pages point at
// it through their parent.
type Database struct {
	ID             string
	Parent         api.Parent
	Title          richtext.Text
	Description    richtext.Text
	URL            string
	Icon           *api.Icon
	Cover          *api.File
	CreatedTime    api.Timestamp
	LastEditedTime api.Timestamp
	Archived       bool
	IsInline       bool
	Schema         *schema.Schema

	members map[string]json.RawMessage
}

// NewDatabase returns a database to be created inside the page parentPageID.
func NewDatabase(parentPageID, title string, s *schema.Schema) *Database {
	return &Database{
		Parent: api.PageParent(parentPageID),
		Title:  richtext.FromString(title),
		Schema: s,
	}
}

type wireDatabase struct {
	Object         string          `json:"object"`
	ID             string          `json:"id"`
	Parent         *api.Parent     `json:"parent"`
	Title          richtext.Text   `json:"title"`
	Description    richtext.Text   `json:"description"`
	URL            string          `json:"url"`
	Icon           *api.Icon       `json:"icon"`
	Cover          *api.File       `json:"cover"`
	CreatedTime    api.Timestamp   `json:"created_time"`
	LastEditedTime api.Timestamp   `json:"last_edited_time"`
	Archived       bool            `json:"archived"`
	IsInline       bool            `json:"is_inline"`
	Properties     json.RawMessage `json:"properties"`
}

// DecodeDatabase decodes a database and snapshots its schema.
func DecodeDatabase(data []byte) (*Database, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil || members == nil {
		return nil, api.Schemaf("database", "expected a JSON object")
	}
	var w wireDatabase
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, asSchemaError("database", err)
	}
	if w.Object != "" && w.Object != "database" {
		return nil, api.Schemaf("database", "object is %q, not a database", w.Object)
	}
	if len(w.Properties) == 0 {
		return nil, api.Schemaf("database", "database %s has no properties", w.ID)
	}
	s, err := schema.Decode(w.ID, w.Properties)
	if err != nil {
		return nil, err
	}
	d := &Database{
		ID:             w.ID,
		Title:          w.Title,
		Description:    w.Description,
		URL:            w.URL,
		Icon:           w.Icon,
		Cover:          w.Cover,
		CreatedTime:    w.CreatedTime,
		LastEditedTime: w.LastEditedTime,
		Archived:       w.Archived,
		IsInline:       w.IsInline,
		Schema:         s,
		members:        members,
	}
	if w.Parent != nil {
		d.Parent = *w.Parent
	}
	return d, nil
}

// Name returns the plain text of the database title.
func (d *Database) Name() string { return d.Title.PlainText() }

// Encode returns the full JSON form of the database.
func (d *Database) Encode() (json.RawMessage, error) {
	out := maps.Clone(d.members)
	if out == nil {
		out = map[string]json.RawMessage{"object": json.RawMessage(`"database"`)}
		out["parent"], _ = json.Marshal(d.Parent)
		if d.ID != "" {
			out["id"], _ = json.Marshal(d.ID)
		}
	}
	var err error
	if out["title"], err = d.Title.Serialize(); err != nil {
		return nil, err
	}
	if d.Schema != nil {
		if out["properties"], err = d.Schema.Encode(); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// EncodeForCreate returns the body of a create database request.
func (d *Database) EncodeForCreate() (json.RawMessage, error) {
	if d.Parent.Type != api.ParentPage {
		return nil, api.Schemaf("database", "a new database needs a page parent")
	}
	if d.Schema == nil {
		return nil, api.Schemaf("database", "a new database needs a schema")
	}
	props, err := d.Schema.EncodeForCreate()
	if err != nil {
		return nil, err
	}
	out := map[string]any{
		"parent":     d.Parent,
		"title":      d.Title,
		"properties": props,
	}
	if len(d.Description) > 0 {
		out["description"] = d.Description
	}
	if d.Icon != nil {
		out["icon"] = d.Icon
	}
	if d.IsInline {
		out["is_inline"] = true
	}
	return json.Marshal(out)
}
