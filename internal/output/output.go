// Package output renders pages, databases and blocks for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/record"
)

// Format selects how objects are written.
type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts json, text, markdown and md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Printer writes objects in one format. A JSONPath selector, when set,
// projects JSON output before it is written.
type Printer struct {
	w        io.Writer
	format   Format
	selector jp.Expr
}

// NewPrinter returns a printer. selector may be empty.
func NewPrinter(w io.Writer, format Format, selector string) (*Printer, error) {
	p := &Printer{w: w, format: format}
	if selector != "" {
		if format != FormatJSON {
			return nil, fmt.Errorf("--select needs json output, not %s", format)
		}
		x, err := jp.ParseString(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
		}
		p.selector = x
	}
	return p, nil
}

// Format reports the printer's format.
func (p *Printer) Format() Format { return p.format }

// JSON writes data indented, after applying the selector. A selector that
// matches one value writes that value; several matches are written as an array.
func (p *Printer) JSON(data []byte) error {
	v, err := oj.Parse(data)
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if p.selector != nil {
		matches := p.selector.Get(v)
		if len(matches) == 1 {
			v = matches[0]
		} else {
			v = matches
		}
	}
	_, err = fmt.Fprintln(p.w, oj.JSON(v, &ojg.Options{Indent: 2, Sort: true}))
	return err
}

// Select evaluates a JSONPath expression against data.
func Select(data []byte, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return x.Get(v), nil
}

// Page writes a page. Markdown output includes the body when it is loaded.
func (p *Printer) Page(pg *record.Page) error {
	switch p.format {
	case FormatJSON:
		data, err := pg.Encode()
		if err != nil {
			return err
		}
		return p.JSON(data)
	case FormatText:
		for name, v := range pg.Properties() {
			if _, err := fmt.Fprintf(p.w, "%s: %s\n", name, v.String()); err != nil {
				return err
			}
		}
		return nil
	}

	var b strings.Builder
	b.WriteString("# " + pg.Title() + "\n\n")
	title := pg.TitleProperty()
	var rows [][2]string
	for name, v := range pg.Properties() {
		if name != title {
			rows = append(rows, [2]string{name, v.String()})
		}
	}
	if len(rows) > 0 {
		b.WriteString("| Property | Value |\n| --- | --- |\n")
		for _, r := range rows {
			b.WriteString("| " + cell(r[0]) + " | " + cell(r[1]) + " |\n")
		}
		b.WriteString("\n")
	}
	if body, loaded := pg.Body(); loaded {
		b.WriteString(block.Markdown(body))
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Database writes a database and its schema.
func (p *Printer) Database(db *record.Database) error {
	if p.format == FormatJSON {
		data, err := db.Encode()
		if err != nil {
			return err
		}
		return p.JSON(data)
	}
	var b strings.Builder
	if p.format == FormatMarkdown {
		b.WriteString("# " + db.Name() + "\n\n| Property | Kind |\n| --- | --- |\n")
	} else {
		b.WriteString(db.Name() + "\n")
	}
	if db.Schema != nil {
		for _, name := range db.Schema.Names() {
			prop, _ := db.Schema.Property(name)
			if p.format == FormatMarkdown {
				b.WriteString("| " + cell(name) + " | " + string(prop.Kind) + " |\n")
			} else {
				b.WriteString("  " + name + " (" + string(prop.Kind) + ")\n")
			}
		}
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

// Blocks writes a block list with any loaded children.
func (p *Printer) Blocks(blocks []*block.Block) error {
	switch p.format {
	case FormatJSON:
		items := make([]json.RawMessage, 0, len(blocks))
		for _, b := range blocks {
			data, err := block.Encode(b)
			if err != nil {
				return err
			}
			items = append(items, data)
		}
		data, err := json.Marshal(items)
		if err != nil {
			return err
		}
		return p.JSON(data)
	case FormatText:
		var sb strings.Builder
		block.Walk(blocks, func(b *block.Block, depth int) bool {
			if text := b.PlainText(); text != "" {
				sb.WriteString(strings.Repeat("  ", depth) + text + "\n")
			}
			return true
		})
		_, err := io.WriteString(p.w, sb.String())
		return err
	}
	_, err := io.WriteString(p.w, block.Markdown(blocks))
	return err
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
