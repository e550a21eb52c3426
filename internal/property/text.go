package property

import (
	"encoding/json"

	"github.com/agentic-research/notional/internal/richtext"
)

// Title is the title property every database has exactly one of.
type Title struct {
	base
	Text richtext.Text
}

// NewTitle returns a title holding a single unstyled span.
func NewTitle(s string) *Title { return &Title{Text: richtext.FromString(s)} }

func (*Title) Kind() Kind         { return KindTitle }
func (v *Title) String() string   { return v.Text.PlainText() }
func (v *Title) SetText(s string) { v.Text = richtext.FromString(s) }

func (v *Title) decodePayload(data json.RawMessage) error {
	return json.Unmarshal(data, &v.Text)
}

func (v *Title) encodePayload() (json.RawMessage, error) { return v.Text.Serialize() }

func (v *Title) equal(o Value) bool { return v.Text.Equal(o.(*Title).Text) }

// RichText is a formatted text property.
type RichText struct {
	base
	Text richtext.Text
}

// NewRichText returns a rich text value holding a single unstyled span.
func NewRichText(s string) *RichText { return &RichText{Text: richtext.FromString(s)} }

func (*RichText) Kind() Kind         { return KindRichText }
func (v *RichText) String() string   { return v.Text.PlainText() }
func (v *RichText) SetText(s string) { v.Text = richtext.FromString(s) }

func (v *RichText) decodePayload(data json.RawMessage) error {
	return json.Unmarshal(data, &v.Text)
}

func (v *RichText) encodePayload() (json.RawMessage, error) { return v.Text.Serialize() }

func (v *RichText) equal(o Value) bool { return v.Text.Equal(o.(*RichText).Text) }
