package property

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentic-research/notional/api"
)

// Values of the kinds in this file are computed by the server. They decode
// and re-encode verbatim but are refused by EncodeForWrite.

// FormulaType is the result type of a formula.
type FormulaType string

const (
	FormulaString  FormulaType = "string"
	FormulaNumber  FormulaType = "number"
	FormulaBoolean FormulaType = "boolean"
	FormulaDate    FormulaType = "date"
)

// Formula is the computed result of a formula property.
type Formula struct {
	base
	Type    FormulaType
	Text    *string
	Number  *float64
	Boolean *bool
	Date    *api.DateRange

	raw json.RawMessage
}

func (*Formula) Kind() Kind { return KindFormula }

func (v *Formula) String() string {
	switch v.Type {
	case FormulaString:
		return deref(v.Text)
	case FormulaNumber:
		if v.Number != nil {
			return strconv.FormatFloat(*v.Number, 'f', -1, 64)
		}
	case FormulaBoolean:
		if v.Boolean != nil {
			return strconv.FormatBool(*v.Boolean)
		}
	case FormulaDate:
		if v.Date != nil {
			return v.Date.String()
		}
	}
	return ""
}

func (v *Formula) decodePayload(data json.RawMessage) error {
	typ, body, err := discriminated(data)
	if err != nil {
		return err
	}
	v.Type = FormulaType(typ)
	switch v.Type {
	case FormulaString:
		err = json.Unmarshal(body, &v.Text)
	case FormulaNumber:
		err = json.Unmarshal(body, &v.Number)
	case FormulaBoolean:
		err = json.Unmarshal(body, &v.Boolean)
	case FormulaDate:
		err = json.Unmarshal(body, &v.Date)
	default:
		return fmt.Errorf("unrecognized formula type %q", typ)
	}
	if err != nil {
		return err
	}
	v.raw = bytes.Clone(data)
	return nil
}

func (v *Formula) encodePayload() (json.RawMessage, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	var body any
	switch v.Type {
	case FormulaString:
		body = v.Text
	case FormulaNumber:
		body = v.Number
	case FormulaBoolean:
		body = v.Boolean
	case FormulaDate:
		body = v.Date
	}
	return marshal(map[string]any{"type": v.Type, string(v.Type): body})
}

func (v *Formula) equal(o Value) bool {
	f := o.(*Formula)
	if v.Type != f.Type {
		return false
	}
	return v.String() == f.String()
}

// RollupType is the result type of a rollup.
type RollupType string

const (
	RollupNumber      RollupType = "number"
	RollupDate        RollupType = "date"
	RollupArray       RollupType = "array"
	RollupIncomplete  RollupType = "incomplete"
	RollupUnsupported RollupType = "unsupported"
)

// Rollup is the aggregated result of a rollup property. Array items are
// decoded as property values without names.
type Rollup struct {
	base
	Type     RollupType
	Function string
	Number   *float64
	Date     *api.DateRange
	Array    []Value

	raw json.RawMessage
}

func (*Rollup) Kind() Kind { return KindRollup }

func (v *Rollup) String() string {
	switch v.Type {
	case RollupNumber:
		if v.Number != nil {
			return strconv.FormatFloat(*v.Number, 'f', -1, 64)
		}
	case RollupDate:
		if v.Date != nil {
			return v.Date.String()
		}
	case RollupArray:
		parts := make([]string, 0, len(v.Array))
		for _, item := range v.Array {
			if s := item.String(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func (v *Rollup) decodePayload(data json.RawMessage) error {
	typ, body, err := discriminated(data)
	if err != nil {
		return err
	}
	var fn struct {
		Function string `json:"function"`
	}
	if err := json.Unmarshal(data, &fn); err != nil {
		return err
	}
	v.Type, v.Function = RollupType(typ), fn.Function
	switch v.Type {
	case RollupNumber:
		err = json.Unmarshal(body, &v.Number)
	case RollupDate:
		err = json.Unmarshal(body, &v.Date)
	case RollupArray:
		var items []json.RawMessage
		if err = json.Unmarshal(body, &items); err != nil {
			break
		}
		v.Array = make([]Value, 0, len(items))
		for i, item := range items {
			val, derr := Decode(strconv.Itoa(i), item, nil)
			if derr != nil {
				return derr
			}
			v.Array = append(v.Array, val)
		}
	case RollupIncomplete, RollupUnsupported:
	default:
		return fmt.Errorf("unrecognized rollup type %q", typ)
	}
	if err != nil {
		return err
	}
	v.raw = bytes.Clone(data)
	return nil
}

func (v *Rollup) encodePayload() (json.RawMessage, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	out := map[string]any{"type": v.Type, "function": v.Function}
	switch v.Type {
	case RollupNumber:
		out["number"] = v.Number
	case RollupDate:
		out["date"] = v.Date
	case RollupArray:
		items := make([]json.RawMessage, 0, len(v.Array))
		for _, item := range v.Array {
			data, err := Encode(item)
			if err != nil {
				return nil, err
			}
			items = append(items, data)
		}
		out["array"] = items
	}
	return marshal(out)
}

func (v *Rollup) equal(o Value) bool {
	r := o.(*Rollup)
	return v.Type == r.Type && v.Function == r.Function && v.String() == r.String()
}

// CreatedTime is the page creation timestamp.
type CreatedTime struct {
	base
	Time api.Timestamp
}

func (*CreatedTime) Kind() Kind                                { return KindCreatedTime }
func (v *CreatedTime) String() string                          { return string(v.Time) }
func (v *CreatedTime) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Time) }
func (v *CreatedTime) encodePayload() (json.RawMessage, error)  { return marshal(v.Time) }
func (v *CreatedTime) equal(o Value) bool                       { return v.Time == o.(*CreatedTime).Time }

// LastEditedTime is the timestamp of the latest edit.
type LastEditedTime struct {
	base
	Time api.Timestamp
}

func (*LastEditedTime) Kind() Kind       { return KindLastEditedTime }
func (v *LastEditedTime) String() string { return string(v.Time) }
func (v *LastEditedTime) decodePayload(data json.RawMessage) error {
	return json.Unmarshal(data, &v.Time)
}
func (v *LastEditedTime) encodePayload() (json.RawMessage, error) { return marshal(v.Time) }
func (v *LastEditedTime) equal(o Value) bool                      { return v.Time == o.(*LastEditedTime).Time }

// CreatedBy is the user who created the page.
type CreatedBy struct {
	base
	User api.User
}

func (*CreatedBy) Kind() Kind                                { return KindCreatedBy }
func (v *CreatedBy) String() string                          { return v.User.DisplayName() }
func (v *CreatedBy) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.User) }
func (v *CreatedBy) encodePayload() (json.RawMessage, error)  { return marshal(v.User) }
func (v *CreatedBy) equal(o Value) bool {
	return canonicalID(v.User.ID) == canonicalID(o.(*CreatedBy).User.ID)
}

// LastEditedBy is the user who last edited the page.
type LastEditedBy struct {
	base
	User api.User
}

func (*LastEditedBy) Kind() Kind       { return KindLastEditedBy }
func (v *LastEditedBy) String() string { return v.User.DisplayName() }
func (v *LastEditedBy) decodePayload(data json.RawMessage) error {
	return json.Unmarshal(data, &v.User)
}
func (v *LastEditedBy) encodePayload() (json.RawMessage, error) { return marshal(v.User) }
func (v *LastEditedBy) equal(o Value) bool {
	return canonicalID(v.User.ID) == canonicalID(o.(*LastEditedBy).User.ID)
}

// UniqueID is an auto-incremented identifier with an optional prefix.
type UniqueID struct {
	base
	Prefix *string
	Number int
}

func (*UniqueID) Kind() Kind { return KindUniqueID }

func (v *UniqueID) String() string {
	if v.Prefix != nil && *v.Prefix != "" {
		return *v.Prefix + "-" + strconv.Itoa(v.Number)
	}
	return strconv.Itoa(v.Number)
}

func (v *UniqueID) decodePayload(data json.RawMessage) error {
	var w struct {
		Prefix *string `json:"prefix"`
		Number int     `json:"number"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v.Prefix, v.Number = w.Prefix, w.Number
	return nil
}

func (v *UniqueID) encodePayload() (json.RawMessage, error) {
	return marshal(map[string]any{"prefix": v.Prefix, "number": v.Number})
}

func (v *UniqueID) equal(o Value) bool { return v.String() == o.(*UniqueID).String() }

// Unsupported keeps the payload of a kind this package does not model so
// that it survives a round trip. It is never written.
type Unsupported struct {
	base
	kind Kind
	Raw  json.RawMessage
}

func (v *Unsupported) Kind() Kind     { return v.kind }
func (v *Unsupported) String() string { return "" }

func (v *Unsupported) decodePayload(data json.RawMessage) error {
	v.Raw = bytes.Clone(data)
	return nil
}

func (v *Unsupported) encodePayload() (json.RawMessage, error) { return v.Raw, nil }

func (v *Unsupported) equal(o Value) bool { return bytes.Equal(v.Raw, o.(*Unsupported).Raw) }

// discriminated splits a {"type": t, t: payload} object.
func discriminated(data json.RawMessage) (string, json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", nil, err
	}
	var typ string
	if err := json.Unmarshal(raw["type"], &typ); err != nil || typ == "" {
		return "", nil, fmt.Errorf("missing type discriminator")
	}
	return typ, raw[typ], nil
}
