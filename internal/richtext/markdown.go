package richtext

import "strings"

// Markdown renders the text with inline markdown markup. Underline and color
// have no markdown equivalent and are dropped.
func (t Text) Markdown() string {
	var b strings.Builder
	for _, s := range t {
		b.WriteString(s.Markdown())
	}
	return b.String()
}

// Markdown renders a single span.
func (s Span) Markdown() string {
	if s.Type == TypeEquation {
		return "$" + s.Content + "$"
	}
	content := s.Content
	if content == "" {
		return ""
	}

	// keep surrounding whitespace outside of the markers
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return content
	}
	lead := content[:strings.Index(content, trimmed)]
	trail := content[len(lead)+len(trimmed):]

	out := trimmed
	if a := s.Annotations; a != nil {
		if a.Code {
			out = "`" + out + "`"
		}
		switch {
		case a.Bold && a.Italic:
			out = "***" + out + "***"
		case a.Bold:
			out = "**" + out + "**"
		case a.Italic:
			out = "*" + out + "*"
		}
		if a.Strikethrough {
			out = "~~" + out + "~~"
		}
	}
	if url := s.URL(); url != "" {
		out = "[" + out + "](" + url + ")"
	}
	return lead + out + trail
}
