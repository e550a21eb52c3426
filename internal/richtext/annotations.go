package richtext

import (
	"encoding/json"

	"github.com/agentic-research/notional/api"
)

// DefaultColor is the color the API reports for unstyled text.
const DefaultColor = "default"

// Annotations carries the style flags of a span.
type Annotations struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Underline     bool
	Code          bool
	Color         string

	present uint8 // keys seen on decode, re-emitted even when default
}

const (
	keyBold uint8 = 1 << iota
	keyItalic
	keyStrikethrough
	keyUnderline
	keyCode
	keyColor
)

// IsPlain reports whether no style is applied.
func (a *Annotations) IsPlain() bool {
	if a == nil {
		return true
	}
	return !a.Bold && !a.Italic && !a.Strikethrough && !a.Underline && !a.Code &&
		(a.Color == "" || a.Color == DefaultColor)
}

// same compares the effective styling of two annotation sets.
func (a *Annotations) same(b *Annotations) bool {
	if a.IsPlain() || b.IsPlain() {
		return a.IsPlain() == b.IsPlain()
	}
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Strikethrough == b.Strikethrough &&
		a.Underline == b.Underline && a.Code == b.Code && a.Color == b.Color
}

func (a Annotations) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 6)
	flag := func(key string, bit uint8, v bool) {
		if v || a.present&bit != 0 {
			m[key] = v
		}
	}
	flag("bold", keyBold, a.Bold)
	flag("italic", keyItalic, a.Italic)
	flag("strikethrough", keyStrikethrough, a.Strikethrough)
	flag("underline", keyUnderline, a.Underline)
	flag("code", keyCode, a.Code)
	if a.Color != "" || a.present&keyColor != 0 {
		m["color"] = a.Color
	}
	return json.Marshal(m)
}

func (a *Annotations) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return api.Schemaf("annotations", "%v", err)
	}
	var out Annotations
	for key, val := range raw {
		var bit uint8
		var dst *bool
		switch key {
		case "bold":
			bit, dst = keyBold, &out.Bold
		case "italic":
			bit, dst = keyItalic, &out.Italic
		case "strikethrough":
			bit, dst = keyStrikethrough, &out.Strikethrough
		case "underline":
			bit, dst = keyUnderline, &out.Underline
		case "code":
			bit, dst = keyCode, &out.Code
		case "color":
			if err := json.Unmarshal(val, &out.Color); err != nil {
				return api.Schemaf("annotations", "color must be a string")
			}
			out.present |= keyColor
			continue
		default:
			return api.Schemaf("annotations", "unrecognized annotation %q", key)
		}
		if err := json.Unmarshal(val, dst); err != nil {
			return api.Schemaf("annotations", "%s must be a boolean", key)
		}
		out.present |= bit
	}
	*a = out
	return nil
}
