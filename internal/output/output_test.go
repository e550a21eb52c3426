package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/property"
	"github.com/agentic-research/notional/internal/record"
	"github.com/agentic-research/notional/internal/schema"
)

func samplePage(t *testing.T) *record.Page {
	t.Helper()
	p := record.NewPage(api.PageParent("98ad959b-2b6a-4774-80ee-00246fb0ea9b"), nil)
	require.NoError(t, p.Set("Name", property.NewTitle("Kale")))
	require.NoError(t, p.Set("Price", property.NewNumber(2.5)))
	require.NoError(t, p.Set("Tags", property.NewMultiSelect("green", "leafy")))
	return p
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "md": FormatMarkdown, "text": FormatText} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("yaml")
	assert.Error(t, err)
}

func TestPrinter_JSONSelect(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, FormatJSON, "$.properties.Price.number")
	require.NoError(t, err)
	require.NoError(t, p.Page(samplePage(t)))
	assert.Equal(t, "2.5\n", buf.String())

	buf.Reset()
	p, err = NewPrinter(&buf, FormatJSON, "$.properties.Tags.multi_select[*].name")
	require.NoError(t, err)
	require.NoError(t, p.Page(samplePage(t)))
	assert.JSONEq(t, `["green","leafy"]`, buf.String())

	_, err = NewPrinter(&buf, FormatJSON, "$[")
	assert.Error(t, err)
	_, err = NewPrinter(&buf, FormatText, "$.id")
	assert.Error(t, err)
}

func TestPrinter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, FormatJSON, "")
	require.NoError(t, err)
	require.NoError(t, p.JSON([]byte(`{"b":1,"a":[true,null]}`)))
	assert.JSONEq(t, `{"a":[true,null],"b":1}`, buf.String())
	assert.Contains(t, buf.String(), "\n  \"a\": [")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"a"`)), bytes.Index(buf.Bytes(), []byte(`"b"`)), "keys are sorted")
}

func TestPrinter_PageText(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, FormatText, "")
	require.NoError(t, err)
	require.NoError(t, p.Page(samplePage(t)))
	assert.Equal(t, "Name: Kale\nPrice: 2.5\nTags: green, leafy\n", buf.String())
}

func TestPrinter_PageMarkdown(t *testing.T) {
	pg := samplePage(t)
	pg.SetBody(block.NewHeading(2, "Notes"), block.NewBulletedItem("wash first"))

	var buf bytes.Buffer
	p, err := NewPrinter(&buf, FormatMarkdown, "")
	require.NoError(t, err)
	require.NoError(t, p.Page(pg))
	assert.Equal(t, "# Kale\n\n"+
		"| Property | Value |\n| --- | --- |\n"+
		"| Price | 2.5 |\n"+
		"| Tags | green, leafy |\n\n"+
		"## Notes\n"+
		"- wash first\n", buf.String())
}

func TestPrinter_Database(t *testing.T) {
	db := record.NewDatabase("98ad959b-2b6a-4774-80ee-00246fb0ea9b", "Groceries",
		schema.New().Add("Name", schema.Title()).Add("Price", schema.Number("dollar")))

	var buf bytes.Buffer
	p, err := NewPrinter(&buf, FormatText, "")
	require.NoError(t, err)
	require.NoError(t, p.Database(db))
	assert.Equal(t, "Groceries\n  Name (title)\n  Price (number)\n", buf.String())
}

func TestPrinter_Blocks(t *testing.T) {
	toggle := block.NewToggle("outer")
	toggle.AppendChild(block.NewParagraph("inner"))
	blocks := []*block.Block{toggle, block.NewDivider()}

	var buf bytes.Buffer
	p, err := NewPrinter(&buf, FormatText, "")
	require.NoError(t, err)
	require.NoError(t, p.Blocks(blocks))
	assert.Equal(t, "outer\n  inner\n", buf.String())

	buf.Reset()
	p, err = NewPrinter(&buf, FormatJSON, "$[*].type")
	require.NoError(t, err)
	require.NoError(t, p.Blocks(blocks))
	assert.JSONEq(t, `["toggle","divider"]`, buf.String())
}

func TestSelect(t *testing.T) {
	got, err := Select([]byte(`{"results":[{"id":"a"},{"id":"b"}]}`), "$.results[*].id")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got)
}
