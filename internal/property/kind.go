// Package property models typed page property values. Every value is a
// variant of the sealed Value interface, keyed by its Kind discriminator, and
// round-trips losslessly through the API's property JSON.
package property

// Kind is the type discriminator of a property value or schema entry.
type Kind string

const (
	KindTitle          Kind = "title"
	KindRichText       Kind = "rich_text"
	KindNumber         Kind = "number"
	KindCheckbox       Kind = "checkbox"
	KindSelect         Kind = "select"
	KindStatus         Kind = "status"
	KindMultiSelect    Kind = "multi_select"
	KindDate           Kind = "date"
	KindPeople         Kind = "people"
	KindFiles          Kind = "files"
	KindURL            Kind = "url"
	KindEmail          Kind = "email"
	KindPhoneNumber    Kind = "phone_number"
	KindRelation       Kind = "relation"
	KindFormula        Kind = "formula"
	KindRollup         Kind = "rollup"
	KindCreatedTime    Kind = "created_time"
	KindCreatedBy      Kind = "created_by"
	KindLastEditedTime Kind = "last_edited_time"
	KindLastEditedBy   Kind = "last_edited_by"
	KindUniqueID       Kind = "unique_id"
)

var writable = map[Kind]bool{
	KindTitle:       true,
	KindRichText:    true,
	KindNumber:      true,
	KindCheckbox:    true,
	KindSelect:      true,
	KindStatus:      true,
	KindMultiSelect: true,
	KindDate:        true,
	KindPeople:      true,
	KindFiles:       true,
	KindURL:         true,
	KindEmail:       true,
	KindPhoneNumber: true,
	KindRelation:    true,
}

var computed = map[Kind]bool{
	KindFormula:        true,
	KindRollup:         true,
	KindCreatedTime:    true,
	KindCreatedBy:      true,
	KindLastEditedTime: true,
	KindLastEditedBy:   true,
	KindUniqueID:       true,
}

// Known reports whether the kind has a typed variant.
func (k Kind) Known() bool { return writable[k] || computed[k] }

// ReadOnly reports whether values of this kind are computed by the server.
// Unknown kinds are treated as read-only.
func (k Kind) ReadOnly() bool { return !writable[k] }

func (k Kind) String() string { return string(k) }

// KindLookup resolves the declared kind of a named property.
type KindLookup interface {
	KindOf(name string) (Kind, bool)
}

// Kinds is a static KindLookup.
type Kinds map[string]Kind

func (k Kinds) KindOf(name string) (Kind, bool) {
	kind, ok := k[name]
	return kind, ok
}
