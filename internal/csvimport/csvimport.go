// Package csvimport turns CSV files into a database schema and pages.
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/property"
	"github.com/agentic-research/notional/internal/record"
	"github.com/agentic-research/notional/internal/schema"
	"github.com/agentic-research/notional/internal/session"
)

// ErrEmpty is returned for input without a single row.
var ErrEmpty = errors.New("invalid CSV: empty data")

// Options controls how rows are read.
type Options struct {
	NoHeader    bool // first row is data; columns are named by index
	TitleColumn int  // index of the column that becomes the title property
	Comma       rune // field separator, ',' when zero
	Infer       bool // choose number, checkbox, date and select columns from the data
}

// Table is a parsed CSV file. Columns are rich text properties, except the
// title column and the columns inference typed.
type Table struct {
	Columns []string
	Kinds   []property.Kind // parallel to Columns
	Title   string
	Rows    [][]string

	options map[string][]string
}

// Read parses r.
func Read(r io.Reader, opts Options) (*Table, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if opts.TitleColumn < 0 || opts.TitleColumn >= len(first) {
		return nil, fmt.Errorf("title column %d out of range for %d columns", opts.TitleColumn, len(first))
	}

	t := &Table{}
	if opts.NoHeader {
		names := make([]string, len(first))
		for i := range first {
			names[i] = strconv.Itoa(i)
		}
		t.Columns = columnNames(names)
		t.Rows = append(t.Rows, first)
	} else {
		t.Columns = columnNames(first)
	}
	t.Title = t.Columns[opts.TitleColumn]

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("invalid CSV: line %d has %d fields, want %d", line, len(row), len(t.Columns))
		}
		t.Rows = append(t.Rows, row)
	}

	t.Kinds = make([]property.Kind, len(t.Columns))
	t.options = make(map[string][]string)
	for col := range t.Kinds {
		t.Kinds[col] = property.KindRichText
	}
	t.Kinds[opts.TitleColumn] = property.KindTitle
	if opts.Infer {
		t.infer()
	}
	return t, nil
}

// columnNames trims header cells and renames repeats to name_<column>.
func columnNames(header []string) []string {
	names := make([]string, 0, len(header))
	for col, field := range header {
		field = strings.TrimSpace(field)
		for slices.Contains(names, field) {
			field = field + "_" + strconv.Itoa(col)
		}
		names = append(names, field)
	}
	return names
}

// Schema returns the schema of a database holding the table.
func (t *Table) Schema() *schema.Schema {
	s := schema.New()
	for col, name := range t.Columns {
		switch t.kind(col) {
		case property.KindTitle:
			s.Add(name, schema.Title())
		case property.KindNumber:
			s.Add(name, schema.Number(""))
		case property.KindCheckbox:
			s.Add(name, schema.Checkbox())
		case property.KindDate:
			s.Add(name, schema.Date())
		case property.KindSelect:
			s.Add(name, schema.Select(t.options[name]...))
		default:
			s.Add(name, schema.RichText())
		}
	}
	return s
}

func (t *Table) kind(col int) property.Kind {
	switch {
	case col < len(t.Kinds):
		return t.Kinds[col]
	case t.Columns[col] == t.Title:
		return property.KindTitle
	}
	return property.KindRichText
}

// Values returns row i as property values.
func (t *Table) Values(i int) (map[string]property.Value, error) {
	row := t.Rows[i]
	out := make(map[string]property.Value, len(row))
	for col, cell := range row {
		name, kind := t.Columns[col], t.kind(col)
		var (
			v   property.Value
			err error
		)
		switch kind {
		case property.KindTitle, property.KindRichText:
			v, err = property.FromString(kind, cell)
		case property.KindCheckbox:
			v = property.NewCheckbox(strings.EqualFold(strings.TrimSpace(cell), "true"))
		default:
			v, err = property.FromString(kind, strings.TrimSpace(cell))
		}
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Import creates a database for t inside the page parentPageID and adds one
// page per row. It stops at the first failed row.
func Import(ctx context.Context, s *session.Session, parentPageID, title string, t *Table) (*record.Database, int, error) {
	db, err := s.CreateDatabase(ctx, parentPageID, title, t.Schema())
	if err != nil {
		return nil, 0, err
	}
	for i := range t.Rows {
		vals, err := t.Values(i)
		if err != nil {
			return db, i, fmt.Errorf("row %d: %w", i+1, err)
		}
		p := record.NewPage(api.DatabaseParent(db.ID), db.Schema)
		for name, v := range vals {
			if err := p.Set(name, v); err != nil {
				return db, i, fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		if _, err := s.InsertPage(ctx, p); err != nil {
			return db, i, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return db, len(t.Rows), nil
}
