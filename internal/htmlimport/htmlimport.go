// Package htmlimport converts HTML documents into blocks that can be
// appended to a page.
//
// Headings, paragraphs, lists, quotes, preformatted text, tables, images,
// iframes and horizontal rules become blocks; b, i, s, u, code and a
// elements become styled rich text. Elements without a mapping contribute
// their contents, except script, style, template and noscript, which are
// dropped.
package htmlimport

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/richtext"
	"github.com/agentic-research/notional/internal/session"
)

// MaxAppend is the number of blocks the API accepts in one append request.
const MaxAppend = 100

// Options controls the conversion.
type Options struct {
	// BaseURL resolves relative links and sources. A <base> element in the
	// document replaces it from that point on.
	BaseURL string
}

// Document is a converted HTML document.
type Document struct {
	Title  string            // text of the <title> element
	Meta   map[string]string // <meta name content> pairs
	Blocks []*block.Block
}

// Parse reads an HTML document.
func Parse(r io.Reader, opts Options) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmlimport: %w", err)
	}
	c := &converter{doc: &Document{Meta: make(map[string]string)}}
	if opts.BaseURL != "" {
		if c.base, err = url.Parse(opts.BaseURL); err != nil {
			return nil, fmt.Errorf("htmlimport: base URL: %w", err)
		}
	}
	top := &flow{}
	c.contents(root, top)
	c.doc.Blocks = top.finish()
	return c.doc, nil
}

// Import appends the document's blocks to the page or block parentID in
// batches of MaxAppend and returns how many top-level blocks were written.
func Import(ctx context.Context, s *session.Session, parentID string, doc *Document) (int, error) {
	n := 0
	for start := 0; start < len(doc.Blocks); start += MaxAppend {
		end := min(start+MaxAppend, len(doc.Blocks))
		if _, err := s.AppendBlocks(ctx, parentID, doc.Blocks[start:end]...); err != nil {
			return n, err
		}
		n = end
	}
	return n, nil
}

// sink receives what an element renders to.
type sink interface {
	add(b *block.Block)
	text(s richtext.Span)
	lineBreak()
}

// flow is a run of blocks. Loose text between blocks becomes a paragraph.
type flow struct {
	blocks  []*block.Block
	pending richtext.Text
}

func (f *flow) add(b *block.Block) {
	f.flush()
	f.blocks = append(f.blocks, b)
}

func (f *flow) text(s richtext.Span) { f.pending = append(f.pending, s) }
func (f *flow) lineBreak()           { f.flush() }

func (f *flow) flush() {
	if t := tidy(f.pending); len(t) > 0 {
		f.blocks = append(f.blocks, block.NewText(t))
	}
	f.pending = nil
}

func (f *flow) finish() []*block.Block {
	f.flush()
	return f.blocks
}

// textSink collects the rich text of a text block and any blocks nested in it.
type textSink struct {
	rich     richtext.Text
	children []*block.Block
}

func (t *textSink) add(b *block.Block)   { t.children = append(t.children, b) }
func (t *textSink) text(s richtext.Span) { t.rich = append(t.rich, s) }
func (t *textSink) lineBreak()           { t.rich = append(t.rich, richtext.NewSpan("\n")) }

// tableSink collects the rows of a table.
type tableSink struct {
	rows   []*block.TableRow
	header bool
}

func (t *tableSink) add(b *block.Block) {
	if row, ok := b.Content.(*block.TableRow); ok {
		t.rows = append(t.rows, row)
	}
}

func (t *tableSink) text(richtext.Span) {}
func (t *tableSink) lineBreak()         {}

type style struct {
	bold, italic, strike, underline, code bool
}

type converter struct {
	doc   *Document
	base  *url.URL
	style style
	href  string
	pre   bool
}

var whitespace = regexp.MustCompile(`\s+`)

func (c *converter) contents(n *html.Node, parent sink) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.render(child, parent)
	}
}

func (c *converter) render(n *html.Node, parent sink) {
	switch n.Type {
	case html.TextNode:
		c.textNode(n.Data, parent)
		return
	case html.DocumentNode:
		c.contents(n, parent)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Template, atom.Noscript:
	case atom.Title:
		c.doc.Title = strings.TrimSpace(whitespace.ReplaceAllString(textOf(n), " "))
	case atom.Meta:
		if name, content := attr(n, "name"), attr(n, "content"); name != "" && content != "" {
			c.doc.Meta[name] = content
		}
	case atom.Base:
		if u := c.resolve(attr(n, "href")); u != "" {
			c.base, _ = url.Parse(u)
		}

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := min(int(n.Data[1]-'0'), 3)
		c.textBlock(n, parent, false, func(t richtext.Text) block.Content {
			return &block.Heading{TextContent: block.TextContent{RichText: t}, Level: level}
		})
	case atom.P, atom.Dl:
		c.textBlock(n, parent, true, func(t richtext.Text) block.Content {
			return &block.Paragraph{TextContent: block.TextContent{RichText: t}}
		})
	case atom.Blockquote:
		c.textBlock(n, parent, true, func(t richtext.Text) block.Content {
			return &block.Quote{TextContent: block.TextContent{RichText: t}}
		})
	case atom.Pre, atom.Tt:
		c.preformatted(n, parent)
	case atom.Ul, atom.Menu:
		c.list(n, parent, func(t richtext.Text) block.Content {
			return &block.BulletedListItem{TextContent: block.TextContent{RichText: t}}
		})
	case atom.Ol:
		c.list(n, parent, func(t richtext.Text) block.Content {
			return &block.NumberedListItem{TextContent: block.TextContent{RichText: t}}
		})
	case atom.Dt, atom.Dd:
		c.contents(n, parent)
		parent.lineBreak()
	case atom.Table:
		c.table(n, parent)
	case atom.Thead:
		if t, ok := parent.(*tableSink); ok {
			t.header = true
		}
		c.contents(n, parent)
	case atom.Tr:
		c.row(n, parent)
	case atom.Hr:
		parent.add(block.NewDivider())
	case atom.Br:
		parent.lineBreak()
	case atom.Img:
		if src := c.resolve(attr(n, "src")); src != "" {
			parent.add(block.NewImage(src))
		}
	case atom.Iframe:
		if src := c.resolve(attr(n, "src")); src != "" {
			parent.add(block.NewEmbed(src))
		}

	case atom.B, atom.Strong:
		c.styled(n, parent, func(s *style) { s.bold = true })
	case atom.I, atom.Em:
		c.styled(n, parent, func(s *style) { s.italic = true })
	case atom.S, atom.Del, atom.Strike:
		c.styled(n, parent, func(s *style) { s.strike = true })
	case atom.U, atom.Ins:
		c.styled(n, parent, func(s *style) { s.underline = true })
	case atom.Code, atom.Kbd, atom.Samp, atom.Var:
		c.styled(n, parent, func(s *style) { s.code = true })
	case atom.A:
		saved := c.href
		c.href = c.resolve(attr(n, "href"))
		c.contents(n, parent)
		c.href = saved

	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer,
		atom.Nav, atom.Aside, atom.Figure, atom.Address, atom.Center, atom.Form:
		parent.lineBreak()
		c.contents(n, parent)
		parent.lineBreak()
	default:
		c.contents(n, parent)
	}
}

func (c *converter) textNode(s string, parent sink) {
	if !c.pre {
		s = whitespace.ReplaceAllString(s, " ")
	}
	if s == "" {
		return
	}
	var styles []richtext.Style
	if c.style.bold {
		styles = append(styles, richtext.Bold)
	}
	if c.style.italic {
		styles = append(styles, richtext.Italic)
	}
	if c.style.strike {
		styles = append(styles, richtext.Strikethrough)
	}
	if c.style.underline {
		styles = append(styles, richtext.Underline)
	}
	if c.style.code && !c.pre {
		styles = append(styles, richtext.Code)
	}
	if c.href != "" {
		styles = append(styles, richtext.WithLink(c.href))
	}
	parent.text(richtext.NewSpan(s, styles...))
}

func (c *converter) styled(n *html.Node, parent sink, set func(*style)) {
	saved := c.style
	set(&c.style)
	c.contents(n, parent)
	c.style = saved
}

// textBlock renders n as one text block. Blocks found inside become its
// children when nest is set and follow it otherwise. A block left without
// text is dropped and its nested blocks take its place.
func (c *converter) textBlock(n *html.Node, parent sink, nest bool, build func(richtext.Text) block.Content) {
	ts := &textSink{}
	c.contents(n, ts)
	rich := tidy(ts.rich)
	if len(rich) == 0 {
		for _, child := range ts.children {
			parent.add(child)
		}
		return
	}
	b := block.New(build(rich))
	if nest {
		if len(ts.children) > 0 {
			b.AppendChild(ts.children...)
		}
		parent.add(b)
		return
	}
	parent.add(b)
	for _, child := range ts.children {
		parent.add(child)
	}
}

func (c *converter) preformatted(n *html.Node, parent sink) {
	saved := c.pre
	c.pre = true
	ts := &textSink{}
	c.contents(n, ts)
	c.pre = saved

	var src strings.Builder
	for _, s := range ts.rich {
		src.WriteString(s.Content)
	}
	if code := strings.TrimRight(src.String(), "\n"); code != "" {
		parent.add(block.NewCode(code, ""))
	}
	for _, child := range ts.children {
		parent.add(child)
	}
}

// list renders the li children of n. Anything else inside the list is
// ignored.
func (c *converter) list(n *html.Node, parent sink, build func(richtext.Text) block.Content) {
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		ts := &textSink{}
		c.contents(li, ts)
		b := block.New(build(tidy(ts.rich)))
		if len(ts.children) > 0 {
			b.AppendChild(ts.children...)
		}
		parent.add(b)
	}
}

func (c *converter) table(n *html.Node, parent sink) {
	ts := &tableSink{}
	c.contents(n, ts)
	width := 0
	for _, r := range ts.rows {
		width = max(width, len(r.Cells))
	}
	if width == 0 {
		return
	}
	rows := make([]*block.Block, len(ts.rows))
	for i, r := range ts.rows {
		for len(r.Cells) < width {
			r.Cells = append(r.Cells, richtext.Text{})
		}
		rows[i] = block.New(r)
	}
	t := block.New(&block.Table{TableWidth: width, HasColumnHeader: ts.header})
	t.SetChildren(rows...)
	parent.add(t)
}

// row renders a tr into a table row. A first row made only of th cells marks
// the table as having a column header.
func (c *converter) row(n *html.Node, parent sink) {
	row := &block.TableRow{}
	headers := 0
	for cell := n.FirstChild; cell != nil; cell = cell.NextSibling {
		if cell.Type != html.ElementNode || (cell.DataAtom != atom.Td && cell.DataAtom != atom.Th) {
			continue
		}
		if cell.DataAtom == atom.Th {
			headers++
		}
		ts := &textSink{}
		c.contents(cell, ts)
		row.Cells = append(row.Cells, tidy(ts.rich))
	}
	if t, ok := parent.(*tableSink); ok && len(t.rows) == 0 && headers > 0 && headers == len(row.Cells) {
		t.header = true
	}
	parent.add(block.New(row))
}

// resolve returns ref made absolute against the base URL. Empty references,
// inline data and scripts resolve to "".
func (c *converter) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if c.base != nil {
		u = c.base.ResolveReference(u)
	}
	switch u.Scheme {
	case "http", "https", "mailto":
		return u.String()
	}
	return ""
}

// tidy trims the whitespace around t and drops the spans left empty.
func tidy(t richtext.Text) richtext.Text {
	out := make(richtext.Text, 0, len(t))
	for _, s := range t {
		if len(out) == 0 {
			s.Content = strings.TrimLeft(s.Content, " \n")
		}
		if s.Content != "" {
			out = append(out, s)
		}
	}
	for len(out) > 0 {
		last := &out[len(out)-1]
		last.Content = strings.TrimRight(last.Content, " \n")
		if last.Content != "" {
			break
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
