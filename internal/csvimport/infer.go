package csvimport

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/agentic-research/notional/internal/property"
)

// ColumnStats summarises the non-empty cells of one column.
type ColumnStats struct {
	Count       int            // non-empty cells
	Cardinality int            // distinct values
	Numeric     bool           // every cell parses as a number
	Boolean     bool           // every cell is true or false
	Date        bool           // every cell is an ISO date
	Values      map[string]int // distinct value → count
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

const (
	enumMaxDistinct      = 20
	identifierRatioThres = 0.5
)

// Analyze gathers statistics for column col.
func (t *Table) Analyze(col int) *ColumnStats {
	cs := &ColumnStats{Numeric: true, Boolean: true, Date: true, Values: make(map[string]int)}
	for _, row := range t.Rows {
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		cs.Count++
		cs.Values[cell]++
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			cs.Numeric = false
		}
		if !strings.EqualFold(cell, "true") && !strings.EqualFold(cell, "false") {
			cs.Boolean = false
		}
		if !dateRe.MatchString(cell) {
			cs.Date = false
		} else if _, err := property.FromString(property.KindDate, cell); err != nil {
			cs.Date = false
		}
	}
	cs.Cardinality = len(cs.Values)
	return cs
}

// Kind picks the property kind for a column with these statistics. Low
// cardinality text becomes a select; anything else stays rich text.
func (cs *ColumnStats) Kind() property.Kind {
	switch {
	case cs.Count == 0:
		return property.KindRichText
	case cs.Boolean:
		return property.KindCheckbox
	case cs.Numeric:
		return property.KindNumber
	case cs.Date:
		return property.KindDate
	case cs.Cardinality <= enumMaxDistinct && cs.Cardinality >= 2 &&
		float64(cs.Cardinality)/float64(cs.Count) <= identifierRatioThres:
		return property.KindSelect
	}
	return property.KindRichText
}

// Options lists the distinct values of the column in sorted order.
func (cs *ColumnStats) Options() []string {
	out := make([]string, 0, len(cs.Values))
	for v := range cs.Values {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (t *Table) infer() {
	for col, name := range t.Columns {
		if name == t.Title {
			continue
		}
		cs := t.Analyze(col)
		t.Kinds[col] = cs.Kind()
		if t.Kinds[col] == property.KindSelect {
			t.options[name] = cs.Options()
		}
	}
}
