package property

import (
	"encoding/json"
	"slices"
	"strings"
)

// SelectOption is a select, status or multi-select choice. Writes may name
// an option by Name or by ID.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

func (o SelectOption) key() string {
	if o.Name != "" {
		return o.Name
	}
	return "id:" + o.ID
}

// Matches reports whether o refers to the declared option d. Every field
// o sets must agree with d, and an empty o matches nothing.
func (o SelectOption) Matches(d SelectOption) bool {
	if o.ID == "" && o.Name == "" {
		return false
	}
	return (o.ID == "" || o.ID == d.ID) && (o.Name == "" || o.Name == d.Name)
}

// OptionHolder is implemented by values that reference schema options.
type OptionHolder interface {
	Value
	OptionNames() []string
	Selected() []SelectOption
}

// Select holds at most one option. A nil Option encodes as null.
type Select struct {
	base
	Option *SelectOption
}

func NewSelect(name string) *Select { return &Select{Option: &SelectOption{Name: name}} }

func (*Select) Kind() Kind { return KindSelect }

func (v *Select) String() string { return optionString(v.Option) }

func (v *Select) OptionNames() []string    { return optionNames(v.Option) }
func (v *Select) Selected() []SelectOption { return selected(v.Option) }

func (v *Select) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Option) }
func (v *Select) encodePayload() (json.RawMessage, error) { return marshal(v.Option) }
func (v *Select) equal(o Value) bool                      { return sameOption(v.Option, o.(*Select).Option) }

// Status is a workflow status property. It shares the select payload shape.
type Status struct {
	base
	Option *SelectOption
}

func NewStatus(name string) *Status { return &Status{Option: &SelectOption{Name: name}} }

func (*Status) Kind() Kind { return KindStatus }

func (v *Status) String() string { return optionString(v.Option) }

func (v *Status) OptionNames() []string    { return optionNames(v.Option) }
func (v *Status) Selected() []SelectOption { return selected(v.Option) }

func (v *Status) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Option) }
func (v *Status) encodePayload() (json.RawMessage, error) { return marshal(v.Option) }
func (v *Status) equal(o Value) bool                      { return sameOption(v.Option, o.(*Status).Option) }

// MultiSelect holds an ordered list of options.
type MultiSelect struct {
	base
	Options []SelectOption
}

func NewMultiSelect(names ...string) *MultiSelect {
	v := &MultiSelect{Options: []SelectOption{}}
	for _, n := range names {
		v.Add(n)
	}
	return v
}

func (*MultiSelect) Kind() Kind { return KindMultiSelect }

// Contains reports whether an option with the given name is selected.
func (v *MultiSelect) Contains(name string) bool {
	return slices.ContainsFunc(v.Options, func(o SelectOption) bool { return o.Name == name })
}

// Add appends the named option unless it is already selected.
func (v *MultiSelect) Add(name string) {
	if !v.Contains(name) {
		v.Options = append(v.Options, SelectOption{Name: name})
	}
}

// Remove deselects the named option and reports whether it was present.
func (v *MultiSelect) Remove(name string) bool {
	n := len(v.Options)
	v.Options = slices.DeleteFunc(v.Options, func(o SelectOption) bool { return o.Name == name })
	return len(v.Options) != n
}

func (v *MultiSelect) OptionNames() []string {
	names := make([]string, 0, len(v.Options))
	for _, o := range v.Options {
		names = append(names, o.Name)
	}
	return names
}

func (v *MultiSelect) Selected() []SelectOption { return slices.Clone(v.Options) }

func (v *MultiSelect) String() string { return strings.Join(v.OptionNames(), ", ") }

func (v *MultiSelect) decodePayload(data json.RawMessage) error {
	return json.Unmarshal(data, &v.Options)
}

func (v *MultiSelect) encodePayload() (json.RawMessage, error) {
	if v.Options == nil {
		return json.RawMessage("[]"), nil
	}
	return marshal(v.Options)
}

func (v *MultiSelect) equal(o Value) bool {
	other := o.(*MultiSelect)
	return sameMultiset(optionKeys(v.Options), optionKeys(other.Options))
}

func optionString(o *SelectOption) string {
	if o == nil {
		return ""
	}
	if o.Name != "" {
		return o.Name
	}
	return o.ID
}

func optionNames(o *SelectOption) []string {
	if o == nil || o.Name == "" {
		return nil
	}
	return []string{o.Name}
}

func selected(o *SelectOption) []SelectOption {
	if o == nil {
		return nil
	}
	return []SelectOption{*o}
}

func optionKeys(opts []SelectOption) []string {
	keys := make([]string, len(opts))
	for i, o := range opts {
		keys[i] = o.key()
	}
	return keys
}

func sameOption(a, b *SelectOption) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.key() == b.key()
}
