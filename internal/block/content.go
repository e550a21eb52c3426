package block

import (
	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/richtext"
)

// Type is the block discriminator.
type Type string

const (
	TypeParagraph        Type = "paragraph"
	TypeHeading1         Type = "heading_1"
	TypeHeading2         Type = "heading_2"
	TypeHeading3         Type = "heading_3"
	TypeBulletedListItem Type = "bulleted_list_item"
	TypeNumberedListItem Type = "numbered_list_item"
	TypeToDo             Type = "to_do"
	TypeToggle           Type = "toggle"
	TypeQuote            Type = "quote"
	TypeCallout          Type = "callout"
	TypeCode             Type = "code"
	TypeDivider          Type = "divider"
	TypeEquation         Type = "equation"
	TypeChildPage        Type = "child_page"
	TypeChildDatabase    Type = "child_database"
	TypeEmbed            Type = "embed"
	TypeBookmark         Type = "bookmark"
	TypeImage            Type = "image"
	TypeVideo            Type = "video"
	TypeFile             Type = "file"
	TypePDF              Type = "pdf"
	TypeTable            Type = "table"
	TypeTableRow         Type = "table_row"
	TypeColumnList       Type = "column_list"
	TypeColumn           Type = "column"
	TypeLinkToPage       Type = "link_to_page"
	TypeTableOfContents  Type = "table_of_contents"
	TypeBreadcrumb       Type = "breadcrumb"
	TypeUnsupported      Type = "unsupported"
)

// Content is the type-specific payload of a block.
type Content interface {
	BlockType() Type
}

// Texter is implemented by content that carries a rich text body.
type Texter interface {
	Content
	Text() richtext.Text
}

// TextContent is the body shared by paragraph-like blocks.
type TextContent struct {
	RichText richtext.Text `json:"rich_text"`
	Color    string        `json:"color,omitempty"`
}

func (c TextContent) Text() richtext.Text { return c.RichText }

type Paragraph struct{ TextContent }

func (*Paragraph) BlockType() Type { return TypeParagraph }

// Heading is a heading_1, heading_2 or heading_3 block depending on Level.
type Heading struct {
	TextContent
	Level        int  `json:"-"`
	IsToggleable bool `json:"is_toggleable,omitempty"`
}

func (h *Heading) BlockType() Type {
	switch h.Level {
	case 2:
		return TypeHeading2
	case 3:
		return TypeHeading3
	}
	return TypeHeading1
}

type BulletedListItem struct{ TextContent }

func (*BulletedListItem) BlockType() Type { return TypeBulletedListItem }

type NumberedListItem struct{ TextContent }

func (*NumberedListItem) BlockType() Type { return TypeNumberedListItem }

type ToDo struct {
	TextContent
	Checked bool `json:"checked"`
}

func (*ToDo) BlockType() Type { return TypeToDo }

type Toggle struct{ TextContent }

func (*Toggle) BlockType() Type { return TypeToggle }

type Quote struct{ TextContent }

func (*Quote) BlockType() Type { return TypeQuote }

type Callout struct {
	TextContent
	Icon *api.Icon `json:"icon,omitempty"`
}

func (*Callout) BlockType() Type { return TypeCallout }

type Code struct {
	RichText richtext.Text `json:"rich_text"`
	Caption  richtext.Text `json:"caption"`
	Language string        `json:"language"`
}

func (*Code) BlockType() Type       { return TypeCode }
func (c *Code) Text() richtext.Text { return c.RichText }

type Divider struct{}

func (*Divider) BlockType() Type { return TypeDivider }

type Equation struct {
	Expression string `json:"expression"`
}

func (*Equation) BlockType() Type { return TypeEquation }

// ChildPage and ChildDatabase stand in for nested pages and databases in a
// page body. Their ids are the ids of the page or database.
type ChildPage struct {
	Title string `json:"title"`
}

func (*ChildPage) BlockType() Type { return TypeChildPage }

type ChildDatabase struct {
	Title string `json:"title"`
}

func (*ChildDatabase) BlockType() Type { return TypeChildDatabase }

type Embed struct {
	URL     string        `json:"url"`
	Caption richtext.Text `json:"caption"`
}

func (*Embed) BlockType() Type { return TypeEmbed }

type Bookmark struct {
	URL     string        `json:"url"`
	Caption richtext.Text `json:"caption"`
}

func (*Bookmark) BlockType() Type { return TypeBookmark }

// Media is the file payload shared by image, video, file and pdf blocks.
type Media struct {
	api.File
	Caption richtext.Text `json:"caption"`
}

type Image struct{ Media }

func (*Image) BlockType() Type { return TypeImage }

type Video struct{ Media }

func (*Video) BlockType() Type { return TypeVideo }

type File struct{ Media }

func (*File) BlockType() Type { return TypeFile }

type PDF struct{ Media }

func (*PDF) BlockType() Type { return TypePDF }

// Table holds its rows as children.
type Table struct {
	TableWidth      int  `json:"table_width"`
	HasColumnHeader bool `json:"has_column_header"`
	HasRowHeader    bool `json:"has_row_header"`
}

func (*Table) BlockType() Type { return TypeTable }

type TableRow struct {
	Cells []richtext.Text `json:"cells"`
}

func (*TableRow) BlockType() Type { return TypeTableRow }

type ColumnList struct{}

func (*ColumnList) BlockType() Type { return TypeColumnList }

type Column struct{}

func (*Column) BlockType() Type { return TypeColumn }

// LinkToPage points at a page or database by id.
type LinkToPage struct {
	Target api.Parent
}

func (*LinkToPage) BlockType() Type { return TypeLinkToPage }

func (l LinkToPage) MarshalJSON() ([]byte, error) { return l.Target.MarshalJSON() }

func (l *LinkToPage) UnmarshalJSON(data []byte) error { return l.Target.UnmarshalJSON(data) }

type TableOfContents struct {
	Color string `json:"color,omitempty"`
}

func (*TableOfContents) BlockType() Type { return TypeTableOfContents }

type Breadcrumb struct{}

func (*Breadcrumb) BlockType() Type { return TypeBreadcrumb }

// Unsupported holds a block whose type this package does not model. Raw is
// the complete source object and is re-emitted byte for byte.
type Unsupported struct {
	Type Type
	Raw  []byte
}

func (u *Unsupported) BlockType() Type { return u.Type }

func newContent(t Type) Content {
	switch t {
	case TypeParagraph:
		return &Paragraph{}
	case TypeHeading1:
		return &Heading{Level: 1}
	case TypeHeading2:
		return &Heading{Level: 2}
	case TypeHeading3:
		return &Heading{Level: 3}
	case TypeBulletedListItem:
		return &BulletedListItem{}
	case TypeNumberedListItem:
		return &NumberedListItem{}
	case TypeToDo:
		return &ToDo{}
	case TypeToggle:
		return &Toggle{}
	case TypeQuote:
		return &Quote{}
	case TypeCallout:
		return &Callout{}
	case TypeCode:
		return &Code{}
	case TypeDivider:
		return &Divider{}
	case TypeEquation:
		return &Equation{}
	case TypeChildPage:
		return &ChildPage{}
	case TypeChildDatabase:
		return &ChildDatabase{}
	case TypeEmbed:
		return &Embed{}
	case TypeBookmark:
		return &Bookmark{}
	case TypeImage:
		return &Image{}
	case TypeVideo:
		return &Video{}
	case TypeFile:
		return &File{}
	case TypePDF:
		return &PDF{}
	case TypeTable:
		return &Table{}
	case TypeTableRow:
		return &TableRow{}
	case TypeColumnList:
		return &ColumnList{}
	case TypeColumn:
		return &Column{}
	case TypeLinkToPage:
		return &LinkToPage{}
	case TypeTableOfContents:
		return &TableOfContents{}
	case TypeBreadcrumb:
		return &Breadcrumb{}
	}
	return nil
}
