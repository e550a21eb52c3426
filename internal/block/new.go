package block

import (
	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/richtext"
)

func text(s string) TextContent { return TextContent{RichText: richtext.FromString(s)} }

// NewParagraph returns a paragraph holding plain text.
func NewParagraph(s string) *Block { return New(&Paragraph{text(s)}) }

// NewText returns a paragraph holding formatted text.
func NewText(t richtext.Text) *Block {
	return New(&Paragraph{TextContent{RichText: t}})
}

// NewHeading returns a heading of the given level (1 to 3).
func NewHeading(level int, s string) *Block {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return New(&Heading{TextContent: text(s), Level: level})
}

func NewBulletedItem(s string) *Block { return New(&BulletedListItem{text(s)}) }
func NewNumberedItem(s string) *Block { return New(&NumberedListItem{text(s)}) }
func NewToggle(s string) *Block       { return New(&Toggle{text(s)}) }
func NewQuote(s string) *Block        { return New(&Quote{text(s)}) }

func NewToDo(s string, checked bool) *Block {
	return New(&ToDo{TextContent: text(s), Checked: checked})
}

func NewCallout(s, emoji string) *Block {
	return New(&Callout{TextContent: text(s), Icon: api.EmojiIcon(emoji)})
}

// NewCode returns a code block. Language defaults to "plain text".
func NewCode(source, language string) *Block {
	if language == "" {
		language = "plain text"
	}
	return New(&Code{RichText: richtext.FromString(source), Language: language})
}

func NewBookmark(url string) *Block        { return New(&Bookmark{URL: url}) }
func NewEmbed(url string) *Block           { return New(&Embed{URL: url}) }
func NewDivider() *Block                   { return New(&Divider{}) }
func NewEquation(expression string) *Block { return New(&Equation{Expression: expression}) }

// NewImage returns an image block linking an external file.
func NewImage(url string) *Block {
	return New(&Image{Media{File: api.File{Type: api.FileExternal, External: &api.FileURL{URL: url}}}})
}
