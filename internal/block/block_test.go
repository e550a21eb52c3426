package block

import (
	"context"
	"errors"
	"testing"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/richtext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiParagraph = `{
  "object": "block",
  "id": "c02fc1d3-db8b-45c5-a222-27595b15aea7",
  "parent": {"type": "page_id", "page_id": "59833787-2cf9-4fdf-8782-e53db20768a5"},
  "created_time": "2022-03-01T19:05:00.000Z",
  "last_edited_time": "2022-07-06T19:41:00.000Z",
  "created_by": {"object": "user", "id": "ee5f0f84-409a-440f-983a-a5315961c6e4"},
  "last_edited_by": {"object": "user", "id": "ee5f0f84-409a-440f-983a-a5315961c6e4"},
  "has_children": true,
  "archived": false,
  "type": "paragraph",
  "paragraph": {
    "rich_text": [{"type": "text", "text": {"content": "Lacinato kale", "link": null}, "annotations": {"bold": false, "italic": false, "strikethrough": false, "underline": false, "code": false, "color": "default"}, "plain_text": "Lacinato kale", "href": null}],
    "color": "default"
  }
}`

func TestDecode_Example(t *testing.T) {
	b, err := Decode([]byte(`{"type":"paragraph","paragraph":{"rich_text":[{"type":"text","text":{"content":"hi"}}]}}`))
	require.NoError(t, err)

	assert.Equal(t, TypeParagraph, b.Type())
	assert.IsType(t, &Paragraph{}, b.Content)
	assert.Equal(t, "hi", b.PlainText())

	children, loaded := b.Children()
	assert.True(t, loaded)
	assert.Empty(t, children)
}

func TestDecode_RoundTrip(t *testing.T) {
	cases := map[string]string{
		"paragraph": apiParagraph,
		"minimal":   `{"type":"paragraph","paragraph":{"rich_text":[{"type":"text","text":{"content":"hi"}}]}}`,
		"to_do":     `{"object":"block","id":"b1","type":"to_do","to_do":{"rich_text":[],"checked":true,"color":"default"},"has_children":false,"archived":false}`,
		"heading":   `{"object":"block","id":"b2","type":"heading_2","heading_2":{"rich_text":[],"color":"default","is_toggleable":false}}`,
		"code":      `{"type":"code","code":{"rich_text":[{"type":"text","text":{"content":"x := 1"}}],"caption":[],"language":"go"}}`,
		"image":     `{"type":"image","image":{"caption":[],"type":"external","external":{"url":"https://example.com/a.png"}}}`,
		"link":      `{"type":"link_to_page","link_to_page":{"type":"page_id","page_id":"59833787-2cf9-4fdf-8782-e53db20768a5"}}`,
		"extra key": `{"type":"quote","quote":{"rich_text":[],"color":"default","future_field":{"a":1}}}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := Decode([]byte(input))
			require.NoError(t, err)

			out, err := Encode(b)
			require.NoError(t, err)
			assert.JSONEq(t, input, string(out))
		})
	}
}

func TestDecode_Metadata(t *testing.T) {
	b, err := Decode([]byte(apiParagraph))
	require.NoError(t, err)

	assert.Equal(t, "c02fc1d3-db8b-45c5-a222-27595b15aea7", b.ID)
	assert.Equal(t, api.PageParent("59833787-2cf9-4fdf-8782-e53db20768a5"), b.Parent)
	assert.Equal(t, api.Timestamp("2022-03-01T19:05:00.000Z"), b.CreatedTime)
	assert.True(t, b.HasChildren)
	assert.Equal(t, "default", b.Content.(*Paragraph).Color)
}

func TestDecode_Unsupported(t *testing.T) {
	input := `{ "object":"block","id":"u1",
	  "type":"ai_block", "has_children":false,
	  "ai_block": {"prompt": "summarize", "n": [1, 2.50, 3e2]} }`

	var seen []*api.UnknownBlockTypeError
	d := Decoder{Observe: func(err *api.UnknownBlockTypeError) { seen = append(seen, err) }}

	b, err := d.Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, Type("ai_block"), b.Type())
	require.Len(t, seen, 1)
	assert.Equal(t, "u1", seen[0].BlockID)

	out, err := Encode(b)
	require.NoError(t, err)
	assert.Equal(t, input, string(out), "unknown blocks must be re-emitted byte for byte")

	_, err = EncodeForAppend(b)
	assert.Error(t, err)

	_, err = DecodeStrict([]byte(input))
	var unknown *api.UnknownBlockTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ai_block", unknown.Type)
}

func TestEncode_NestedUnsupported(t *testing.T) {
	inner := `{"type":"future_thing", "future_thing": {"a": 1,  "n": 2.50}}`
	input := `{"object":"block","id":"t1","type":"toggle","has_children":true,
	  "toggle":{"rich_text":[],"color":"default","children":[` + inner + `]}}`

	b, err := Decode([]byte(input))
	require.NoError(t, err)
	children, loaded := b.Children()
	require.True(t, loaded)
	require.Len(t, children, 1)
	assert.IsType(t, &Unsupported{}, children[0].Content)

	out, err := Encode(b)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"children":[`+inner+`]`, "nested unknown blocks keep their source bytes")
	assert.JSONEq(t, input, string(out))
}

func TestDecode_Malformed(t *testing.T) {
	for name, input := range map[string]string{
		"no type":         `{"id":"x","paragraph":{}}`,
		"missing payload": `{"type":"paragraph"}`,
		"bad rich text":   `{"type":"paragraph","paragraph":{"rich_text":[{"type":"text"}]}}`,
		"bad parent":      `{"type":"divider","divider":{},"parent":{"type":"galaxy_id"}}`,
		"not an object":   `"paragraph"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			var se *api.SchemaError
			assert.ErrorAs(t, err, &se)
		})
	}
}

type fakeLoader struct {
	calls    int
	children map[string][]*Block
	err      error
}

func (f *fakeLoader) LoadChildren(_ context.Context, parentID string) ([]*Block, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.children[parentID], nil
}

func TestLoadChildren(t *testing.T) {
	ctx := context.Background()

	t.Run("unbound", func(t *testing.T) {
		b, err := Decode([]byte(apiParagraph))
		require.NoError(t, err)

		_, loaded := b.Children()
		assert.False(t, loaded, "reading children never fetches")

		_, err = b.LoadChildren(ctx)
		var nb *api.NotBoundError
		require.ErrorAs(t, err, &nb)
		assert.Equal(t, b.ID, nb.ObjectID)
	})

	t.Run("cached after first load", func(t *testing.T) {
		loader := &fakeLoader{children: map[string][]*Block{
			"c02fc1d3-db8b-45c5-a222-27595b15aea7": {NewParagraph("one"), NewParagraph("two")},
		}}
		b, err := Decoder{Loader: loader}.Decode([]byte(apiParagraph))
		require.NoError(t, err)

		children, err := b.LoadChildren(ctx)
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "one", children[0].PlainText())

		_, err = b.LoadChildren(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, loader.calls)

		cached, loaded := b.Children()
		assert.True(t, loaded)
		assert.Equal(t, children, cached)
	})

	t.Run("no children needs no session", func(t *testing.T) {
		b := NewParagraph("leaf")
		children, err := b.LoadChildren(ctx)
		require.NoError(t, err)
		assert.Empty(t, children)
	})

	t.Run("failed fetch leaves block unloaded", func(t *testing.T) {
		loader := &fakeLoader{err: errors.New("connection reset")}
		b, err := Decoder{Loader: loader}.Decode([]byte(apiParagraph))
		require.NoError(t, err)

		_, err = b.LoadChildren(ctx)
		require.Error(t, err)
		_, loaded := b.Children()
		assert.False(t, loaded)
	})
}

func TestEncodeForAppend(t *testing.T) {
	item := NewBulletedItem("parent")
	item.AppendChild(NewToDo("child", true))

	out, err := EncodeForAppend(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"object": "block",
		"type": "bulleted_list_item",
		"bulleted_list_item": {
			"rich_text": [{"type": "text", "text": {"content": "parent"}}],
			"children": [{
				"object": "block",
				"type": "to_do",
				"to_do": {"rich_text": [{"type": "text", "text": {"content": "child"}}], "checked": true}
			}]
		}
	}`, string(out))

	b, err := Decode(out)
	require.NoError(t, err)
	children, loaded := b.Children()
	require.True(t, loaded)
	require.Len(t, children, 1)
	assert.True(t, children[0].Content.(*ToDo).Checked)
}

func TestMarkdown(t *testing.T) {
	list := NewBulletedItem("fruit")
	list.AppendChild(NewBulletedItem("apple"))

	table := New(&Table{TableWidth: 2, HasColumnHeader: true})
	table.SetChildren(
		New(&TableRow{Cells: []richtext.Text{richtext.FromString("a"), richtext.FromString("b")}}),
		New(&TableRow{Cells: []richtext.Text{richtext.FromString("1"), richtext.FromString("2")}}),
	)

	blocks := []*Block{
		NewHeading(1, "Groceries"),
		NewParagraph("weekly list"),
		list,
		NewNumberedItem("first"),
		NewNumberedItem("second"),
		NewToDo("milk", false),
		NewToDo("eggs", true),
		NewQuote("eat well"),
		NewCode("x := 1", "go"),
		NewDivider(),
		NewBookmark("https://example.com"),
		table,
	}

	assert.Equal(t, "# Groceries\n"+
		"weekly list\n"+
		"- fruit\n"+
		"    - apple\n"+
		"1. first\n"+
		"2. second\n"+
		"- [ ] milk\n"+
		"- [x] eggs\n"+
		"> eat well\n"+
		"```go\nx := 1\n```\n"+
		"---\n"+
		"[https://example.com](https://example.com)\n"+
		"| a | b |\n"+
		"| --- | --- |\n"+
		"| 1 | 2 |\n", Markdown(blocks))
}

func TestWalk(t *testing.T) {
	root := NewToggle("root")
	mid := NewToggle("mid")
	mid.AppendChild(NewParagraph("leaf"))
	root.AppendChild(mid)

	var seen []string
	Walk([]*Block{root}, func(b *Block, depth int) bool {
		seen = append(seen, b.PlainText())
		return depth < 1
	})
	assert.Equal(t, []string{"root", "mid"}, seen)
}
