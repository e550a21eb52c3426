package block

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"slices"

	"github.com/agentic-research/notional/api"
)

// source remembers what a decoded block looked like so that Encode can
// reproduce keys the model does not interpret.
type source struct {
	typ      Type
	members  map[string]json.RawMessage // top-level keys
	extra    map[string]json.RawMessage // payload keys the content type does not model
	children bool                       // payload carried inline children
}

type wireBlock struct {
	ID             string        `json:"id"`
	Parent         *api.Parent   `json:"parent"`
	CreatedTime    api.Timestamp `json:"created_time"`
	LastEditedTime api.Timestamp `json:"last_edited_time"`
	CreatedBy      *api.User     `json:"created_by"`
	LastEditedBy   *api.User     `json:"last_edited_by"`
	Archived       bool          `json:"archived"`
	HasChildren    bool          `json:"has_children"`
	Type           Type          `json:"type"`
}

// Observer is told about every block whose type falls back to Unsupported.
type Observer func(*api.UnknownBlockTypeError)

// Decoder decodes blocks. Loader is bound to every decoded block. When
// Strict is set, unknown block types fail with *api.UnknownBlockTypeError
// instead of falling back to Unsupported.
type Decoder struct {
	Loader  ChildLoader
	Observe Observer
	Strict  bool
}

// Decode decodes a block, falling back to Unsupported for unknown types.
func Decode(data []byte) (*Block, error) { return Decoder{}.Decode(data) }

// DecodeStrict decodes a block and rejects unknown types.
func DecodeStrict(data []byte) (*Block, error) { return Decoder{Strict: true}.Decode(data) }

// DecodeList decodes an ordered list of blocks.
func (d Decoder) DecodeList(items []json.RawMessage) ([]*Block, error) {
	blocks := make([]*Block, 0, len(items))
	for _, item := range items {
		b, err := d.Decode(item)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (d Decoder) Decode(data []byte) (*Block, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil || members == nil {
		return nil, api.Schemaf("block", "expected a JSON object")
	}
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, schemaError(err)
	}
	if w.Type == "" {
		return nil, api.Schemaf("block", "block %s: missing type discriminator", w.ID)
	}

	b := &Block{
		ID:             w.ID,
		CreatedTime:    w.CreatedTime,
		LastEditedTime: w.LastEditedTime,
		CreatedBy:      w.CreatedBy,
		LastEditedBy:   w.LastEditedBy,
		Archived:       w.Archived,
		HasChildren:    w.HasChildren,
		loader:         d.Loader,
		src:            &source{typ: w.Type, members: members},
	}
	if w.Parent != nil {
		b.Parent = *w.Parent
	}

	content := newContent(w.Type)
	if content == nil {
		unknown := &api.UnknownBlockTypeError{BlockID: w.ID, Type: string(w.Type)}
		if d.Strict {
			return nil, unknown
		}
		if d.Observe != nil {
			d.Observe(unknown)
		}
		b.Content = &Unsupported{Type: w.Type, Raw: bytes.Clone(data)}
		b.loaded = !b.HasChildren
		return b, nil
	}

	payload, ok := members[string(w.Type)]
	if !ok {
		return nil, api.Schemaf("block", "block %s: %s block without payload", w.ID, w.Type)
	}
	var given map[string]json.RawMessage
	if err := json.Unmarshal(payload, &given); err != nil {
		return nil, api.Schemaf("block", "block %s: %s payload must be an object", w.ID, w.Type)
	}
	if err := json.Unmarshal(payload, content); err != nil {
		return nil, schemaError(err)
	}
	b.Content = content

	modeled, err := payloadKeys(content)
	if err != nil {
		return nil, schemaError(err)
	}
	for k, v := range given {
		if _, ok := modeled[k]; ok || k == "children" {
			continue
		}
		if b.src.extra == nil {
			b.src.extra = make(map[string]json.RawMessage)
		}
		b.src.extra[k] = v
	}

	if inline, ok := given["children"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(inline, &items); err != nil {
			return nil, api.Schemaf("block", "block %s: children must be an array", w.ID)
		}
		children, err := d.DecodeList(items)
		if err != nil {
			return nil, err
		}
		b.src.children = true
		b.children, b.loaded = children, true
		b.HasChildren = b.HasChildren || len(children) > 0
	}
	if !b.HasChildren {
		b.loaded = true
	}
	return b, nil
}

func payloadKeys(c Content) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var keys map[string]json.RawMessage
	err = json.Unmarshal(data, &keys)
	return keys, err
}

// Encode returns the full JSON form of the block. Decoded blocks keep every
// key of their source; Unsupported blocks, nested or not, are spliced in
// with their source bytes unchanged.
func Encode(b *Block) (json.RawMessage, error) {
	if u, ok := b.Content.(*Unsupported); ok {
		return json.RawMessage(u.Raw), nil
	}
	withChildren := b.src == nil || b.src.children
	payload, err := encodePayload(b, withChildren, Encode)
	if err != nil {
		return nil, err
	}

	out := make(map[string]json.RawMessage)
	if b.src != nil {
		for k, v := range b.src.members {
			out[k] = v
		}
		delete(out, string(b.src.typ))
	} else {
		out["object"] = json.RawMessage(`"block"`)
	}
	if b.ID != "" {
		out["id"], _ = json.Marshal(b.ID)
	}
	out["type"], _ = json.Marshal(b.Type())
	out[string(b.Type())] = payload
	if _, ok := out["archived"]; ok || b.Archived {
		out["archived"], _ = json.Marshal(b.Archived)
	}
	if _, ok := out["has_children"]; ok {
		out["has_children"], _ = json.Marshal(b.HasChildren)
	}
	return object(out), nil
}

// EncodeForAppend returns the block in the form accepted by the append
// children endpoint, with loaded children nested in the payload.
func EncodeForAppend(b *Block) (json.RawMessage, error) {
	if u, ok := b.Content.(*Unsupported); ok {
		return nil, api.Schemaf("block", "cannot write block of unsupported type %q", u.Type)
	}
	payload, err := encodePayload(b, true, EncodeForAppend)
	if err != nil {
		return nil, err
	}
	typ, _ := json.Marshal(b.Type())
	return json.Marshal(map[string]json.RawMessage{
		"object":         json.RawMessage(`"block"`),
		"type":           typ,
		string(b.Type()): payload,
	})
}

func encodePayload(b *Block, withChildren bool, encode func(*Block) (json.RawMessage, error)) (json.RawMessage, error) {
	data, err := json.Marshal(b.Content)
	if err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	if b.src != nil {
		extra = b.src.extra
	}
	children, loaded := b.Children()
	nest := withChildren && loaded && len(children) > 0
	if len(extra) == 0 && !nest {
		return data, nil
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := m[k]; !ok {
			m[k] = v
		}
	}
	if nest {
		items := make([]json.RawMessage, 0, len(children))
		for _, c := range children {
			item, err := encode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		m["children"] = array(items)
	}
	return object(m), nil
}

// object writes m with sorted keys. Values are copied as given; json.Marshal
// would compact them.
func object(m map[string]json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range slices.Sorted(maps.Keys(m)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(k)
		buf.Write(name)
		buf.WriteByte(':')
		writeValue(&buf, m[k])
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func array(items []json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeValue(&buf, item)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func writeValue(buf *bytes.Buffer, v json.RawMessage) {
	if len(v) == 0 {
		buf.WriteString("null")
		return
	}
	buf.Write(v)
}

// EncodeList encodes blocks for an append request.
func EncodeList(blocks []*Block) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(blocks))
	for _, b := range blocks {
		data, err := EncodeForAppend(b)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func schemaError(err error) error {
	var se *api.SchemaError
	if errors.As(err, &se) {
		return se
	}
	return api.Schemaf("block", "%v", err)
}
