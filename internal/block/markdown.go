package block

import (
	"strconv"
	"strings"

	"github.com/agentic-research/notional/internal/richtext"
)

const indentUnit = "    "

// Markdown renders blocks and their loaded children as markdown. Children
// that have not been loaded are skipped.
func Markdown(blocks []*Block) string {
	var b strings.Builder
	writeMarkdown(&b, blocks, "")
	return b.String()
}

func writeMarkdown(w *strings.Builder, blocks []*Block, indent string) {
	number := 0
	for _, blk := range blocks {
		if blk.Type() == TypeNumberedListItem {
			number++
		} else {
			number = 0
		}

		if t, ok := blk.Content.(*Table); ok {
			rows, _ := blk.Children()
			writeTable(w, t, rows, indent)
			continue
		}

		if line, ok := markdownLine(blk, number); ok {
			for _, l := range strings.Split(line, "\n") {
				w.WriteString(indent)
				w.WriteString(l)
				w.WriteByte('\n')
			}
		}

		children, loaded := blk.Children()
		if !loaded || len(children) == 0 {
			continue
		}
		switch blk.Type() {
		case TypeColumnList, TypeColumn:
			writeMarkdown(w, children, indent)
		default:
			writeMarkdown(w, children, indent+indentUnit)
		}
	}
}

func markdownLine(blk *Block, number int) (string, bool) {
	switch c := blk.Content.(type) {
	case *Paragraph:
		return c.RichText.Markdown(), true
	case *Heading:
		return strings.Repeat("#", c.Level) + " " + c.RichText.Markdown(), true
	case *BulletedListItem:
		return "- " + c.RichText.Markdown(), true
	case *NumberedListItem:
		return strconv.Itoa(number) + ". " + c.RichText.Markdown(), true
	case *ToDo:
		box := "[ ]"
		if c.Checked {
			box = "[x]"
		}
		return "- " + box + " " + c.RichText.Markdown(), true
	case *Toggle:
		return "- " + c.RichText.Markdown(), true
	case *Quote:
		return "> " + c.RichText.Markdown(), true
	case *Callout:
		if icon := c.Icon.String(); icon != "" {
			return "> " + icon + " " + c.RichText.Markdown(), true
		}
		return "> " + c.RichText.Markdown(), true
	case *Code:
		return "```" + c.Language + "\n" + c.RichText.PlainText() + "\n```", true
	case *Divider:
		return "---", true
	case *Equation:
		return "$$" + c.Expression + "$$", true
	case *ChildPage:
		return "[" + c.Title + "](" + blk.ID + ")", true
	case *ChildDatabase:
		return "[" + c.Title + "](" + blk.ID + ")", true
	case *Bookmark:
		return link(c.Caption, c.URL), true
	case *Embed:
		return link(c.Caption, c.URL), true
	case *Image:
		return "!" + link(c.Caption, c.URL()), true
	case *Video:
		return link(c.Caption, c.URL()), true
	case *File:
		return mediaLink(c.Media), true
	case *PDF:
		return mediaLink(c.Media), true
	case *LinkToPage:
		return "[" + c.Target.ID + "](" + c.Target.ID + ")", true
	}
	return "", false
}

func link(caption richtext.Text, url string) string {
	label := caption.PlainText()
	if label == "" {
		label = url
	}
	return "[" + label + "](" + url + ")"
}

func mediaLink(m Media) string {
	if m.Name != "" && len(m.Caption) == 0 {
		return "[" + m.Name + "](" + m.URL() + ")"
	}
	return link(m.Caption, m.URL())
}

func writeTable(w *strings.Builder, t *Table, rows []*Block, indent string) {
	width := t.TableWidth
	first := true
	for _, r := range rows {
		row, ok := r.Content.(*TableRow)
		if !ok {
			continue
		}
		cells := make([]string, width)
		for i := 0; i < width && i < len(row.Cells); i++ {
			cells[i] = strings.ReplaceAll(row.Cells[i].Markdown(), "|", `\|`)
		}
		w.WriteString(indent + "| " + strings.Join(cells, " | ") + " |\n")
		if first {
			w.WriteString(indent + strings.Repeat("| --- ", width) + "|\n")
			first = false
		}
	}
}
