package property

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentic-research/notional/api"
)

// FromString builds a value of kind k from its command line form. Lists
// (multi-select, people, relation, files) are comma separated; dates are
// YYYY-MM-DD or RFC 3339, and "start/end" gives a range. Read-only kinds
// cannot be built.
func FromString(k Kind, s string) (Value, error) {
	switch k {
	case KindTitle:
		return NewTitle(s), nil
	case KindRichText:
		return NewRichText(s), nil
	case KindNumber:
		if s == "" {
			return &Number{}, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", s, err)
		}
		return NewNumber(f), nil
	case KindCheckbox:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("checkbox %q: %w", s, err)
		}
		return NewCheckbox(b), nil
	case KindSelect:
		if s == "" {
			return &Select{}, nil
		}
		return NewSelect(s), nil
	case KindStatus:
		return NewStatus(s), nil
	case KindMultiSelect:
		return NewMultiSelect(splitList(s)...), nil
	case KindDate:
		return parseDate(s)
	case KindURL:
		return NewURL(s), nil
	case KindEmail:
		return NewEmail(s), nil
	case KindPhoneNumber:
		return NewPhoneNumber(s), nil
	case KindPeople:
		return NewPeople(splitList(s)...), nil
	case KindRelation:
		return NewRelation(splitList(s)...), nil
	case KindFiles:
		return NewFiles(splitList(s)...), nil
	}
	if k.ReadOnly() {
		return nil, &api.ReadOnlyPropertyError{Kind: string(k)}
	}
	return nil, fmt.Errorf("cannot build %s values from text", k)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDate(s string) (Value, error) {
	if s == "" {
		return &Date{}, nil
	}
	start, end, isRange := strings.Cut(s, "/")
	st, err := parseTime(start)
	if err != nil {
		return nil, err
	}
	if !isRange {
		return NewDate(st), nil
	}
	et, err := parseTime(end)
	if err != nil {
		return nil, err
	}
	return NewDateRange(st, et), nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
