package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// UserType distinguishes people from integrations.
type UserType string

const (
	UserPerson UserType = "person"
	UserBot    UserType = "bot"
)

// User is a workspace member or bot. Partial users (id only) are common in
// created_by / last_edited_by fields.
type User struct {
	Object    string          `json:"object,omitempty"`
	ID        string          `json:"id"`
	Type      UserType        `json:"type,omitempty"`
	Name      Opt[string]     `json:"name,omitzero"`
	AvatarURL Opt[string]     `json:"avatar_url,omitzero"`
	Person    *Person         `json:"person,omitempty"`
	Bot       json.RawMessage `json:"bot,omitempty"`
}

// Person holds the person-specific user payload.
type Person struct {
	Email Opt[string] `json:"email,omitzero"`
}

// DisplayName returns the user's name, falling back to the ID.
func (u User) DisplayName() string {
	if name, ok := u.Name.Get(); ok && name != "" {
		return name
	}
	return u.ID
}

// Email returns the person's email address, if known.
func (u User) Email() string {
	if u.Person == nil {
		return ""
	}
	return u.Person.Email.Value()
}

func (u User) String() string {
	switch u.Type {
	case UserBot:
		return "%" + u.DisplayName()
	default:
		return "@" + u.DisplayName()
	}
}

// DateRange is the date payload shared by date properties, date mentions and
// date formula results. Start and End keep the API's textual form, which is
// either a date ("2020-08-04") or a full timestamp.
type DateRange struct {
	Start    string      `json:"start"`
	End      Opt[string] `json:"end,omitzero"`
	TimeZone Opt[string] `json:"time_zone,omitzero"`
}

const dateOnly = "2006-01-02"

// NewDate returns a single-day (or instant) range. A time with no clock
// component is formatted as a date.
func NewDate(t time.Time) DateRange {
	return DateRange{Start: formatDate(t)}
}

// NewDateSpan returns a range from start to end.
func NewDateSpan(start, end time.Time) DateRange {
	return DateRange{Start: formatDate(start), End: Some(formatDate(end))}
}

func formatDate(t time.Time) string {
	h, m, s := t.Clock()
	if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.Format(dateOnly)
	}
	return t.Format("2006-01-02T15:04:05.000Z07:00")
}

func parseDate(s string) (time.Time, error) {
	if !strings.Contains(s, "T") {
		return time.Parse(dateOnly, s)
	}
	return time.Parse(time.RFC3339Nano, s)
}

// IsRange reports whether an end date is present.
func (d DateRange) IsRange() bool { return d.End.IsSet() }

// StartTime parses the start of the range.
func (d DateRange) StartTime() (time.Time, error) {
	return parseDate(d.Start)
}

// EndTime parses the end of the range; ok is false when there is no end.
func (d DateRange) EndTime() (t time.Time, ok bool, err error) {
	end, set := d.End.Get()
	if !set {
		return time.Time{}, false, nil
	}
	t, err = parseDate(end)
	return t, true, err
}

// Contains reports whether t falls inside the range (inclusive). It fails
// for single dates, which have no extent.
func (d DateRange) Contains(t time.Time) (bool, error) {
	if !d.IsRange() {
		return false, fmt.Errorf("date %s is not a range", d.Start)
	}
	start, err := d.StartTime()
	if err != nil {
		return false, err
	}
	end, _, err := d.EndTime()
	if err != nil {
		return false, err
	}
	return !t.Before(start) && !t.After(end), nil
}

func (d DateRange) String() string {
	if end, ok := d.End.Get(); ok {
		return d.Start + " :: " + end
	}
	return d.Start
}
