package richtext

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/agentic-research/notional/api"
)

// Text is an ordered sequence of spans. Adjacent spans with identical styling
// are kept separate so that the source structure survives a round trip.
type Text []Span

// Parse decodes a JSON rich text array.
func Parse(data []byte) (Text, error) {
	var t Text
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, asSchemaError(err)
	}
	return t, nil
}

// FromString returns a Text holding a single unstyled span, or an empty Text
// for the empty string.
func FromString(s string, styles ...Style) Text {
	if s == "" && len(styles) == 0 {
		return Text{}
	}
	return Text{NewSpan(s, styles...)}
}

// Serialize encodes the text as a JSON array.
func (t Text) Serialize() ([]byte, error) {
	return json.Marshal(t)
}

// PlainText concatenates the content of every span.
func (t Text) PlainText() string {
	var b strings.Builder
	for _, s := range t {
		b.WriteString(s.PlainText())
	}
	return b.String()
}

func (t Text) String() string { return t.PlainText() }

// Len returns the number of spans.
func (t Text) Len() int { return len(t) }

// Append returns a new Text with spans added after the existing ones.
func (t Text) Append(spans ...Span) Text {
	out := make(Text, 0, len(t)+len(spans))
	out = append(out, t...)
	return append(out, spans...)
}

// Concat returns a new Text holding t followed by other.
func (t Text) Concat(other Text) Text {
	return t.Append(other...)
}

// Equal compares the content, styling and link targets of two texts span by span.
func (t Text) Equal(other Text) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		a, b := t[i], other[i]
		if a.Type != b.Type || a.Content != b.Content || a.URL() != b.URL() {
			return false
		}
		if !a.Annotations.same(b.Annotations) || !a.Mention.same(b.Mention) {
			return false
		}
	}
	return true
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Span(t))
}

func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = nil
		return nil
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return api.Schemaf("rich_text", "expected a JSON array")
	}
	var spans []Span
	if err := json.Unmarshal(trimmed, &spans); err != nil {
		return asSchemaError(err)
	}
	if spans == nil {
		spans = []Span{}
	}
	*t = spans
	return nil
}
