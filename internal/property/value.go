package property

import (
	"encoding/json"
	"errors"

	"github.com/agentic-research/notional/api"
)

// Value is a typed property value. The concrete type is one of the variants
// in this package; switch on it or on Kind() to reach the payload.
//
// Mutating a value in place does not mark the owning page dirty. Assign it
// back through the page's Set to schedule it for the next update.
type Value interface {
	Kind() Kind
	// ID is the property id the API reported, empty for new values.
	ID() string
	String() string

	meta() *base
	decodePayload(data json.RawMessage) error
	encodePayload() (json.RawMessage, error)
	equal(other Value) bool
}

type base struct {
	id       string
	implicit bool                       // source omitted "type"
	extra    map[string]json.RawMessage // sibling keys this model does not interpret
}

func (b *base) ID() string  { return b.id }
func (b *base) meta() *base { return b }

func newValue(kind Kind) Value {
	switch kind {
	case KindTitle:
		return &Title{}
	case KindRichText:
		return &RichText{}
	case KindNumber:
		return &Number{}
	case KindCheckbox:
		return &Checkbox{}
	case KindSelect:
		return &Select{}
	case KindStatus:
		return &Status{}
	case KindMultiSelect:
		return &MultiSelect{}
	case KindDate:
		return &Date{}
	case KindPeople:
		return &People{}
	case KindFiles:
		return &Files{}
	case KindURL:
		return &URL{}
	case KindEmail:
		return &Email{}
	case KindPhoneNumber:
		return &PhoneNumber{}
	case KindRelation:
		return &Relation{}
	case KindFormula:
		return &Formula{}
	case KindRollup:
		return &Rollup{}
	case KindCreatedTime:
		return &CreatedTime{}
	case KindCreatedBy:
		return &CreatedBy{}
	case KindLastEditedTime:
		return &LastEditedTime{}
	case KindLastEditedBy:
		return &LastEditedBy{}
	case KindUniqueID:
		return &UniqueID{}
	}
	return &Unsupported{kind: kind}
}

// Decode parses the JSON of the property called name. When kinds is non-nil
// and declares a kind for name, a value of any other kind fails with
// *api.TypeMismatchError. Kinds this package does not model decode to
// *Unsupported.
func Decode(name string, data []byte, kinds KindLookup) (Value, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, api.Schemaf("property", "%q: expected a JSON object", name)
	}

	var b base
	if id, ok := raw["id"]; ok {
		if err := json.Unmarshal(id, &b.id); err != nil {
			return nil, api.Schemaf("property", "%q: id must be a string", name)
		}
	}

	var kind Kind
	if t, ok := raw["type"]; ok {
		if err := json.Unmarshal(t, &kind); err != nil || kind == "" {
			return nil, api.Schemaf("property", "%q: malformed type discriminator", name)
		}
	} else {
		b.implicit = true
		if kind = inferKind(raw); kind == "" {
			return nil, api.Schemaf("property", "%q: missing type discriminator", name)
		}
	}

	if kinds != nil {
		if declared, ok := kinds.KindOf(name); ok && declared != kind {
			return nil, &api.TypeMismatchError{Property: name, Declared: string(declared), Actual: string(kind)}
		}
	}

	body, ok := raw[string(kind)]
	if !ok {
		return nil, api.Schemaf("property", "%q: %s value without payload", name, kind)
	}
	for k, v := range raw {
		if k == "id" || k == "type" || k == string(kind) {
			continue
		}
		if b.extra == nil {
			b.extra = make(map[string]json.RawMessage)
		}
		b.extra[k] = v
	}

	v := newValue(kind)
	if err := v.decodePayload(body); err != nil {
		var se *api.SchemaError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, api.Schemaf("property", "%q: %s payload: %v", name, kind, err)
	}
	*v.meta() = b
	return v, nil
}

// inferKind finds the payload key of an object that carries no "type".
func inferKind(raw map[string]json.RawMessage) Kind {
	for k := range raw {
		if Kind(k).Known() {
			return Kind(k)
		}
	}
	return ""
}

// Encode returns the full JSON form of v, including the id and any keys
// that were carried by the decoded source.
func Encode(v Value) (json.RawMessage, error) {
	body, err := v.encodePayload()
	if err != nil {
		return nil, err
	}
	b := v.meta()
	out := make(map[string]json.RawMessage, len(b.extra)+3)
	for k, x := range b.extra {
		out[k] = x
	}
	if b.id != "" {
		out["id"], _ = json.Marshal(b.id)
	}
	if !b.implicit {
		out["type"], _ = json.Marshal(v.Kind())
	}
	out[string(v.Kind())] = body
	return json.Marshal(out)
}

// EncodeForWrite returns the payload for a create or update request. Server
// managed fields are dropped, and read-only kinds fail with
// *api.ReadOnlyPropertyError.
func EncodeForWrite(name string, v Value) (json.RawMessage, error) {
	if v.Kind().ReadOnly() {
		return nil, &api.ReadOnlyPropertyError{Property: name, Kind: string(v.Kind())}
	}
	body, err := v.encodePayload()
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]json.RawMessage{string(v.Kind()): body})
}

// Equal compares two values by kind and content. Multi-valued kinds compare
// as multisets: the order the API returned is kept for encoding but ignored here.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	return a.equal(b)
}

func marshal(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	return json.RawMessage(data), err
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
		if counts[s] < 0 {
			return false
		}
	}
	return true
}

func canonicalID(id string) string {
	if n, err := api.NormalizeID(id); err == nil {
		return n
	}
	return id
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameDate(a, b *api.DateRange) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
