package richtext

import (
	"encoding/json"

	"github.com/agentic-research/notional/api"
)

// MentionType discriminates what a mention span refers to.
type MentionType string

const (
	MentionUser        MentionType = "user"
	MentionPage        MentionType = "page"
	MentionDatabase    MentionType = "database"
	MentionDate        MentionType = "date"
	MentionLinkPreview MentionType = "link_preview"
)

// LinkPreview is the payload of a link_preview mention.
type LinkPreview struct {
	URL string `json:"url"`
}

// Mention is the reference carried by a mention span. Exactly one payload
// field matching Type is set.
type Mention struct {
	Type        MentionType
	User        *api.User
	Page        *api.ObjectRef
	Database    *api.ObjectRef
	Date        *api.DateRange
	LinkPreview *LinkPreview
}

// TargetID returns the id of the mentioned user, page or database.
func (m *Mention) TargetID() string {
	switch {
	case m.User != nil:
		return m.User.ID
	case m.Page != nil:
		return m.Page.ID
	case m.Database != nil:
		return m.Database.ID
	}
	return ""
}

func (m *Mention) fallbackText() string {
	switch m.Type {
	case MentionUser:
		return m.User.String()
	case MentionDate:
		return m.Date.String()
	case MentionLinkPreview:
		return m.LinkPreview.URL
	}
	return m.TargetID()
}

func (m *Mention) same(o *Mention) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Type != o.Type {
		return false
	}
	switch m.Type {
	case MentionDate:
		return *m.Date == *o.Date
	case MentionLinkPreview:
		return m.LinkPreview.URL == o.LinkPreview.URL
	}
	return api.SameID(m.TargetID(), o.TargetID())
}

func (m Mention) MarshalJSON() ([]byte, error) {
	var payload any
	switch m.Type {
	case MentionUser:
		payload = m.User
	case MentionPage:
		payload = m.Page
	case MentionDatabase:
		payload = m.Database
	case MentionDate:
		payload = m.Date
	case MentionLinkPreview:
		payload = m.LinkPreview
	default:
		return nil, api.Schemaf("mention", "unrecognized mention type %q", m.Type)
	}
	return json.Marshal(map[string]any{"type": m.Type, string(m.Type): payload})
}

func (m *Mention) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return api.Schemaf("mention", "%v", err)
	}
	var out Mention
	if err := json.Unmarshal(raw["type"], &out.Type); err != nil {
		return api.Schemaf("mention", "missing type discriminator")
	}
	body, ok := raw[string(out.Type)]
	var target any
	switch out.Type {
	case MentionUser:
		out.User = &api.User{}
		target = out.User
	case MentionPage:
		out.Page = &api.ObjectRef{}
		target = out.Page
	case MentionDatabase:
		out.Database = &api.ObjectRef{}
		target = out.Database
	case MentionDate:
		out.Date = &api.DateRange{}
		target = out.Date
	case MentionLinkPreview:
		out.LinkPreview = &LinkPreview{}
		target = out.LinkPreview
	default:
		return api.Schemaf("mention", "unrecognized mention type %q", out.Type)
	}
	if !ok {
		return api.Schemaf("mention", "%s mention without payload", out.Type)
	}
	if err := json.Unmarshal(body, target); err != nil {
		return api.Schemaf("mention", "%s payload: %v", out.Type, err)
	}
	*m = out
	return nil
}
