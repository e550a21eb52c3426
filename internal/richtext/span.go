// Package richtext models Notion rich text: an ordered sequence of styled
// spans (text, mentions and equations) that round-trips losslessly through
// the API's JSON representation.
package richtext

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/agentic-research/notional/api"
)

// SpanType is the discriminator of a rich text object.
type SpanType string

const (
	TypeText     SpanType = "text"
	TypeMention  SpanType = "mention"
	TypeEquation SpanType = "equation"
)

// Link is the hyperlink target of a text span.
type Link struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url"`
}

// Span is a single rich text segment.
//
// Content is the text the span contributes to the plain-text projection: the
// literal text of a text span, the expression of an equation, or the display
// text of a mention.
type Span struct {
	Type        SpanType
	Content     string
	Link        api.Opt[Link]   // text spans only
	Href        api.Opt[string] // read-side copy of the link target
	Annotations *Annotations
	Mention     *Mention // mention spans only

	implicitType  bool // source omitted "type"
	withPlainText bool // source carried "plain_text"
}

// Style mutates a span under construction.
type Style func(*Span)

var (
	Bold          Style = func(s *Span) { s.annotations().Bold = true }
	Italic        Style = func(s *Span) { s.annotations().Italic = true }
	Strikethrough Style = func(s *Span) { s.annotations().Strikethrough = true }
	Underline     Style = func(s *Span) { s.annotations().Underline = true }
	Code          Style = func(s *Span) { s.annotations().Code = true }
)

// WithColor sets the span color (e.g. "red", "blue_background").
func WithColor(color string) Style {
	return func(s *Span) { s.annotations().Color = color }
}

// WithLink makes a text span a hyperlink.
func WithLink(url string) Style {
	return func(s *Span) { s.SetLink(url) }
}

func (s *Span) annotations() *Annotations {
	if s.Annotations == nil {
		s.Annotations = &Annotations{}
	}
	return s.Annotations
}

// NewSpan returns a text span with the given styles applied.
func NewSpan(content string, styles ...Style) Span {
	s := Span{Type: TypeText, Content: content}
	for _, st := range styles {
		st(&s)
	}
	return s
}

// NewEquation returns an inline equation span.
func NewEquation(expression string) Span {
	return Span{Type: TypeEquation, Content: expression}
}

// NewPageMention returns a mention of the page with the given id.
func NewPageMention(pageID, title string) Span {
	return Span{Type: TypeMention, Content: title, Mention: &Mention{Type: MentionPage, Page: &api.ObjectRef{ID: pageID}}}
}

// NewDatabaseMention returns a mention of the database with the given id.
func NewDatabaseMention(databaseID, title string) Span {
	return Span{Type: TypeMention, Content: title, Mention: &Mention{Type: MentionDatabase, Database: &api.ObjectRef{ID: databaseID}}}
}

// NewUserMention returns a mention of u.
func NewUserMention(u api.User) Span {
	return Span{Type: TypeMention, Content: u.String(), Mention: &Mention{Type: MentionUser, User: &u}}
}

// NewDateMention returns a mention of d.
func NewDateMention(d api.DateRange) Span {
	return Span{Type: TypeMention, Content: d.String(), Mention: &Mention{Type: MentionDate, Date: &d}}
}

// PlainText returns the span's contribution to the plain-text projection.
func (s Span) PlainText() string { return s.Content }

// SetContent replaces the span text.
func (s *Span) SetContent(content string) { s.Content = content }

// SetLink points a text span at url, or clears the link when url is empty.
func (s *Span) SetLink(url string) {
	if url == "" {
		s.Link = api.Null[Link]()
		s.Href = api.Null[string]()
		return
	}
	s.Link = api.Some(Link{URL: url})
	s.Href = api.Some(url)
}

// URL returns the hyperlink target of the span, if any.
func (s Span) URL() string {
	if href, ok := s.Href.Get(); ok {
		return href
	}
	if l, ok := s.Link.Get(); ok {
		return l.URL
	}
	return ""
}

// SplitAt splits a text span at the given rune offset. Both halves keep the
// span's annotations and link.
func (s Span) SplitAt(offset int) (Span, Span, error) {
	if s.Type != TypeText {
		return Span{}, Span{}, fmt.Errorf("cannot split %s span", s.Type)
	}
	n := utf8.RuneCountInString(s.Content)
	if offset < 0 || offset > n {
		return Span{}, Span{}, fmt.Errorf("split offset %d out of range [0,%d]", offset, n)
	}
	runes := []rune(s.Content)
	left, right := s.clone(), s.clone()
	left.Content = string(runes[:offset])
	right.Content = string(runes[offset:])
	return left, right, nil
}

func (s Span) clone() Span {
	out := s
	if s.Annotations != nil {
		a := *s.Annotations
		out.Annotations = &a
	}
	if s.Mention != nil {
		m := *s.Mention
		out.Mention = &m
	}
	return out
}

type wireText struct {
	Content string        `json:"content"`
	Link    api.Opt[Link] `json:"link,omitzero"`
}

type wireEquation struct {
	Expression string `json:"expression"`
}

type wireSpan struct {
	Type        SpanType        `json:"type,omitempty"`
	Text        *wireText       `json:"text,omitempty"`
	Mention     *Mention        `json:"mention,omitempty"`
	Equation    *wireEquation   `json:"equation,omitempty"`
	Annotations *Annotations    `json:"annotations,omitempty"`
	PlainText   *string         `json:"plain_text,omitempty"`
	Href        api.Opt[string] `json:"href,omitzero"`
}

func (s Span) MarshalJSON() ([]byte, error) {
	w := wireSpan{Type: s.Type, Annotations: s.Annotations, Href: s.Href}
	if s.implicitType {
		w.Type = ""
	}
	switch s.Type {
	case TypeText:
		w.Text = &wireText{Content: s.Content, Link: s.Link}
	case TypeEquation:
		w.Equation = &wireEquation{Expression: s.Content}
	case TypeMention:
		if s.Mention == nil {
			return nil, api.Schemaf("rich_text", "mention span without mention payload")
		}
		w.Mention = s.Mention
	default:
		return nil, api.Schemaf("rich_text", "unrecognized span type %q", s.Type)
	}
	if s.withPlainText {
		pt := s.Content
		w.PlainText = &pt
	}
	return json.Marshal(w)
}

func (s *Span) UnmarshalJSON(data []byte) error {
	var w wireSpan
	if err := json.Unmarshal(data, &w); err != nil {
		return asSchemaError(err)
	}
	out := Span{Type: w.Type, Annotations: w.Annotations, Href: w.Href, withPlainText: w.PlainText != nil}
	if out.Type == "" {
		out.implicitType = true
		switch {
		case w.Text != nil:
			out.Type = TypeText
		case w.Mention != nil:
			out.Type = TypeMention
		case w.Equation != nil:
			out.Type = TypeEquation
		default:
			return api.Schemaf("rich_text", "span without type discriminator")
		}
	}
	switch out.Type {
	case TypeText:
		if w.Text == nil {
			return api.Schemaf("rich_text", "text span without text payload")
		}
		out.Content, out.Link = w.Text.Content, w.Text.Link
	case TypeEquation:
		if w.Equation == nil {
			return api.Schemaf("rich_text", "equation span without equation payload")
		}
		out.Content = w.Equation.Expression
	case TypeMention:
		if w.Mention == nil {
			return api.Schemaf("rich_text", "mention span without mention payload")
		}
		out.Mention = w.Mention
		if w.PlainText != nil {
			out.Content = *w.PlainText
		} else {
			out.Content = w.Mention.fallbackText()
		}
	default:
		return api.Schemaf("rich_text", "unrecognized span type %q", out.Type)
	}
	*s = out
	return nil
}

// asSchemaError keeps typed decode errors and converts everything else.
func asSchemaError(err error) error {
	var se *api.SchemaError
	if errors.As(err, &se) {
		return se
	}
	return api.Schemaf("rich_text", "%v", err)
}
