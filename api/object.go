package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NormalizeID returns the canonical dashed form of a Notion ID. Both the
// 32-character hex form used in URLs and the dashed UUID form are accepted.
func NormalizeID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", ErrInvalidID
	}
	return u.String(), nil
}

// SameID reports whether two IDs refer to the same object, ignoring dashes and case.
func SameID(a, b string) bool {
	na, errA := NormalizeID(a)
	nb, errB := NormalizeID(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return na == nb
}

// Timestamp is an ISO-8601 timestamp kept in the exact textual form the API returned.
type Timestamp string

// Time parses the timestamp. The zero time is returned for an empty value.
func (t Timestamp) Time() (time.Time, error) {
	if t == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, string(t))
}

// NewTimestamp formats t the way the API does (millisecond precision, UTC).
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

// ParentType discriminates the parent of a page, database or block.
type ParentType string

const (
	ParentDatabase  ParentType = "database_id"
	ParentPage      ParentType = "page_id"
	ParentBlock     ParentType = "block_id"
	ParentWorkspace ParentType = "workspace"
)

// Parent is a non-owning reference to the container of an object.
type Parent struct {
	Type ParentType
	ID   string // empty for the workspace
}

// DatabaseParent, PageParent and BlockParent build parent references.
func DatabaseParent(id string) Parent { return Parent{Type: ParentDatabase, ID: id} }
func PageParent(id string) Parent     { return Parent{Type: ParentPage, ID: id} }
func BlockParent(id string) Parent    { return Parent{Type: ParentBlock, ID: id} }
func WorkspaceParent() Parent         { return Parent{Type: ParentWorkspace} }

// IsZero reports whether no parent is set.
func (p Parent) IsZero() bool { return p.Type == "" }

func (p Parent) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": string(p.Type)}
	if p.Type == ParentWorkspace {
		m["workspace"] = true
	} else {
		m[string(p.Type)] = p.ID
	}
	return json.Marshal(m)
}

func (p *Parent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Schemaf("parent", "%v", err)
	}
	var typ string
	if err := json.Unmarshal(raw["type"], &typ); err != nil || typ == "" {
		return Schemaf("parent", "missing type discriminator")
	}
	out := Parent{Type: ParentType(typ)}
	switch out.Type {
	case ParentWorkspace:
		var ws bool
		if err := json.Unmarshal(raw["workspace"], &ws); err != nil || !ws {
			return Schemaf("parent", "workspace parent must set workspace=true")
		}
	case ParentDatabase, ParentPage, ParentBlock:
		if err := json.Unmarshal(raw[typ], &out.ID); err != nil || out.ID == "" {
			return Schemaf("parent", "%s parent without an id", typ)
		}
	default:
		return Schemaf("parent", "unrecognized parent type %q", typ)
	}
	*p = out
	return nil
}

// ObjectRef is a bare {"id": ...} reference, as used by relations and mentions.
type ObjectRef struct {
	ID string `json:"id"`
}
