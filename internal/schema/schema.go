// Package schema models the property catalogue a database declares. A
// decoded Schema is a read-only snapshot of the database at fetch time; it is
// never refreshed and must be refetched when the remote schema may have changed.
package schema

import (
	"encoding/json"
	"slices"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/property"
)

// Config holds the kind-specific settings of a schema property. Only the
// fields relevant to the property's kind are set.
type Config struct {
	Options    []property.SelectOption `json:"options,omitempty"`
	Format     string                  `json:"format,omitempty"`
	Expression string                  `json:"expression,omitempty"`

	// relation
	DatabaseID         string `json:"database_id,omitempty"`
	SyncedPropertyName string `json:"synced_property_name,omitempty"`
	SyncedPropertyID   string `json:"synced_property_id,omitempty"`

	// rollup
	RelationPropertyName string `json:"relation_property_name,omitempty"`
	RelationPropertyID   string `json:"relation_property_id,omitempty"`
	RollupPropertyName   string `json:"rollup_property_name,omitempty"`
	RollupPropertyID     string `json:"rollup_property_id,omitempty"`
	Function             string `json:"function,omitempty"`
}

// Property is one declared column of a database.
type Property struct {
	ID     string
	Name   string
	Kind   property.Kind
	Config Config

	raw json.RawMessage // source object, re-emitted as is
}

// HasOptions reports whether values of this property are limited to a
// declared option catalogue.
func (p *Property) HasOptions() bool {
	switch p.Kind {
	case property.KindSelect, property.KindMultiSelect, property.KindStatus:
		return true
	}
	return false
}

// OptionNames lists the declared option names in order.
func (p *Property) OptionNames() []string {
	names := make([]string, len(p.Config.Options))
	for i, o := range p.Config.Options {
		names[i] = o.Name
	}
	return names
}

// declares reports whether opt names or identifies a declared option.
func (p *Property) declares(opt property.SelectOption) bool {
	return slices.ContainsFunc(p.Config.Options, opt.Matches)
}

func optionLabel(o property.SelectOption) string {
	if o.Name != "" {
		return o.Name
	}
	return "id:" + o.ID
}

// HasOption reports whether name is a declared option.
func (p *Property) HasOption(name string) bool {
	return slices.ContainsFunc(p.Config.Options, func(o property.SelectOption) bool { return o.Name == name })
}

func decodeProperty(name string, data json.RawMessage) (*Property, error) {
	var w struct {
		ID   string        `json:"id"`
		Name string        `json:"name"`
		Type property.Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, api.Schemaf("schema", "property %q: %v", name, err)
	}
	if w.Type == "" {
		return nil, api.Schemaf("schema", "property %q: missing type discriminator", name)
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, api.Schemaf("schema", "property %q: %v", name, err)
	}
	p := &Property{ID: w.ID, Name: w.Name, Kind: w.Type, raw: data}
	if p.Name == "" {
		p.Name = name
	}
	if cfg, ok := members[string(w.Type)]; ok && w.Type.Known() {
		if err := json.Unmarshal(cfg, &p.Config); err != nil {
			return nil, api.Schemaf("schema", "property %q: %s configuration: %v", name, w.Type, err)
		}
	}
	return p, nil
}

// Encode returns the full JSON form of the property.
func (p *Property) Encode() (json.RawMessage, error) {
	if p.raw != nil {
		return p.raw, nil
	}
	cfg, err := json.Marshal(p.Config)
	if err != nil {
		return nil, err
	}
	out := map[string]json.RawMessage{string(p.Kind): cfg}
	out["type"], _ = json.Marshal(p.Kind)
	if p.Name != "" {
		out["name"], _ = json.Marshal(p.Name)
	}
	if p.ID != "" {
		out["id"], _ = json.Marshal(p.ID)
	}
	return json.Marshal(out)
}

// encodeForCreate returns the {kind: config} form accepted when creating a database.
func (p *Property) encodeForCreate() (json.RawMessage, error) {
	cfg, err := json.Marshal(p.Config)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{string(p.Kind): cfg})
}

// Schema maps property names to their declared kinds and configuration.
type Schema struct {
	DatabaseID string

	names   []string
	props   map[string]*Property
	decoded bool
}

// New returns an empty schema, for building a database to create.
func New() *Schema {
	return &Schema{props: make(map[string]*Property)}
}

// Add declares a property. It replaces an existing declaration of the same
// name and returns the schema for chaining. Add is for schemas built with
// New and panics on a decoded schema.
func (s *Schema) Add(name string, p *Property) *Schema {
	if s.decoded {
		panic("schema: Add on a decoded schema")
	}
	if _, ok := s.props[name]; !ok {
		s.names = append(s.names, name)
	}
	p.Name = name
	s.props[name] = p
	return s
}

// Decode parses the "properties" object of a database.
func Decode(databaseID string, data []byte) (*Schema, error) {
	keys, members, err := api.OrderedObject(data)
	if err != nil {
		return nil, api.Schemaf("schema", "properties: %v", err)
	}
	s := New()
	s.DatabaseID = databaseID
	s.decoded = true
	for _, name := range keys {
		p, err := decodeProperty(name, members[name])
		if err != nil {
			return nil, err
		}
		s.names = append(s.names, name)
		s.props[name] = p
	}
	return s, nil
}

// Encode returns the schema as a "properties" object.
func (s *Schema) Encode() (json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(s.props))
	for name, p := range s.props {
		data, err := p.Encode()
		if err != nil {
			return nil, err
		}
		out[name] = data
	}
	return json.Marshal(out)
}

// EncodeForCreate returns the "properties" object of a create database request.
// A database needs exactly one title property.
func (s *Schema) EncodeForCreate() (json.RawMessage, error) {
	titles := 0
	out := make(map[string]json.RawMessage, len(s.props))
	for name, p := range s.props {
		if p.Kind == property.KindTitle {
			titles++
		}
		data, err := p.encodeForCreate()
		if err != nil {
			return nil, err
		}
		out[name] = data
	}
	if titles != 1 {
		return nil, api.Schemaf("schema", "a database needs exactly one title property, found %d", titles)
	}
	return json.Marshal(out)
}

// KindOf returns the declared kind of name.
func (s *Schema) KindOf(name string) (property.Kind, bool) {
	p, ok := s.props[name]
	if !ok {
		return "", false
	}
	return p.Kind, true
}

// Property returns a copy of the declaration of name.
func (s *Schema) Property(name string) (*Property, bool) {
	p, ok := s.props[name]
	if !ok {
		return nil, false
	}
	c := *p
	c.Config.Options = slices.Clone(p.Config.Options)
	return &c, true
}

// Names lists the property names in the order the API returned them.
func (s *Schema) Names() []string { return slices.Clone(s.names) }

func (s *Schema) Len() int { return len(s.names) }

// TitleProperty returns the name of the title property, or "" if none is declared.
func (s *Schema) TitleProperty() string {
	for _, name := range s.names {
		if s.props[name].Kind == property.KindTitle {
			return name
		}
	}
	return ""
}

// Validate checks that v may be stored under name. Select, status and
// multi-select values must name declared options.
func (s *Schema) Validate(name string, v property.Value) error {
	p, ok := s.props[name]
	if !ok {
		return &api.UnknownPropertyError{Property: name}
	}
	if p.Kind != v.Kind() {
		return &api.KindMismatchError{Property: name, Declared: string(p.Kind), Actual: string(v.Kind())}
	}
	if !p.HasOptions() {
		return nil
	}
	if h, ok := v.(property.OptionHolder); ok {
		for _, opt := range h.Selected() {
			if !p.declares(opt) {
				return &api.ConstraintError{Property: name, Value: optionLabel(opt), Allowed: p.OptionNames()}
			}
		}
	}
	return nil
}
