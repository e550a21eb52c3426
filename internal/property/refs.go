package property

import (
	"encoding/json"
	"strings"

	"github.com/agentic-research/notional/api"
)

// People is a list of users. Writes only need each user's ID.
type People struct {
	base
	Users []api.User
}

func NewPeople(userIDs ...string) *People {
	v := &People{Users: make([]api.User, 0, len(userIDs))}
	for _, id := range userIDs {
		v.Users = append(v.Users, api.User{Object: "user", ID: id})
	}
	return v
}

func (*People) Kind() Kind { return KindPeople }

func (v *People) String() string {
	names := make([]string, len(v.Users))
	for i, u := range v.Users {
		names[i] = u.DisplayName()
	}
	return strings.Join(names, ", ")
}

func (v *People) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Users) }

func (v *People) encodePayload() (json.RawMessage, error) {
	if v.Users == nil {
		return json.RawMessage("[]"), nil
	}
	return marshal(v.Users)
}

func (v *People) equal(o Value) bool {
	return sameMultiset(userKeys(v.Users), userKeys(o.(*People).Users))
}

func userKeys(users []api.User) []string {
	keys := make([]string, len(users))
	for i, u := range users {
		keys[i] = canonicalID(u.ID)
	}
	return keys
}

// Relation is a list of references to pages in the related database.
type Relation struct {
	base
	Pages []api.ObjectRef
}

func NewRelation(pageIDs ...string) *Relation {
	v := &Relation{Pages: make([]api.ObjectRef, 0, len(pageIDs))}
	for _, id := range pageIDs {
		v.Pages = append(v.Pages, api.ObjectRef{ID: id})
	}
	return v
}

func (*Relation) Kind() Kind { return KindRelation }

// IDs returns the related page ids in order.
func (v *Relation) IDs() []string {
	ids := make([]string, len(v.Pages))
	for i, p := range v.Pages {
		ids[i] = p.ID
	}
	return ids
}

func (v *Relation) String() string { return strings.Join(v.IDs(), ", ") }

func (v *Relation) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Pages) }

func (v *Relation) encodePayload() (json.RawMessage, error) {
	if v.Pages == nil {
		return json.RawMessage("[]"), nil
	}
	return marshal(v.Pages)
}

func (v *Relation) equal(o Value) bool {
	a, b := v.IDs(), o.(*Relation).IDs()
	for i := range a {
		a[i] = canonicalID(a[i])
	}
	for i := range b {
		b[i] = canonicalID(b[i])
	}
	return sameMultiset(a, b)
}

// Files is a list of attached or linked files.
type Files struct {
	base
	Files []api.File
}

// NewFiles returns a files value linking each URL as an external file.
func NewFiles(urls ...string) *Files {
	v := &Files{Files: make([]api.File, 0, len(urls))}
	for _, u := range urls {
		v.Files = append(v.Files, api.ExternalFile(u, u))
	}
	return v
}

func (*Files) Kind() Kind { return KindFiles }

func (v *Files) String() string {
	names := make([]string, len(v.Files))
	for i, f := range v.Files {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

func (v *Files) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Files) }

func (v *Files) encodePayload() (json.RawMessage, error) {
	if v.Files == nil {
		return json.RawMessage("[]"), nil
	}
	return marshal(v.Files)
}

func (v *Files) equal(o Value) bool {
	key := func(fs []api.File) []string {
		keys := make([]string, len(fs))
		for i, f := range fs {
			keys[i] = f.Name + "\x00" + f.URL()
		}
		return keys
	}
	return sameMultiset(key(v.Files), key(o.(*Files).Files))
}
