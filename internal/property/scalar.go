package property

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/agentic-research/notional/api"
)

// Number is a numeric property. A nil Value encodes as null.
type Number struct {
	base
	Value *float64
}

func NewNumber(f float64) *Number { return &Number{Value: &f} }

func (*Number) Kind() Kind { return KindNumber }

// Float returns the number, or 0 when it is empty.
func (v *Number) Float() float64 {
	if v.Value == nil {
		return 0
	}
	return *v.Value
}

func (v *Number) Set(f float64) { v.Value = &f }

// Add increments the number, treating an empty value as 0.
func (v *Number) Add(delta float64) { v.Set(v.Float() + delta) }

func (v *Number) String() string {
	if v.Value == nil {
		return ""
	}
	return strconv.FormatFloat(*v.Value, 'f', -1, 64)
}

func (v *Number) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Value) }
func (v *Number) encodePayload() (json.RawMessage, error) { return marshal(v.Value) }
func (v *Number) equal(o Value) bool                      { return sameFloat(v.Value, o.(*Number).Value) }

// Checkbox is a boolean property.
type Checkbox struct {
	base
	Checked bool
}

func NewCheckbox(checked bool) *Checkbox { return &Checkbox{Checked: checked} }

func (*Checkbox) Kind() Kind       { return KindCheckbox }
func (v *Checkbox) String() string { return strconv.FormatBool(v.Checked) }

func (v *Checkbox) decodePayload(data json.RawMessage) error {
	return json.Unmarshal(data, &v.Checked)
}
func (v *Checkbox) encodePayload() (json.RawMessage, error) { return marshal(v.Checked) }
func (v *Checkbox) equal(o Value) bool                      { return v.Checked == o.(*Checkbox).Checked }

// Date is a date or date-range property. A nil Range encodes as null.
type Date struct {
	base
	Range *api.DateRange
}

// NewDate returns a single-date value. Times without a clock component are
// sent as plain dates.
func NewDate(t time.Time) *Date {
	d := api.NewDate(t)
	return &Date{Range: &d}
}

func NewDateRange(start, end time.Time) *Date {
	d := api.NewDateSpan(start, end)
	return &Date{Range: &d}
}

func (*Date) Kind() Kind { return KindDate }

func (v *Date) String() string {
	if v.Range == nil {
		return ""
	}
	return v.Range.String()
}

func (v *Date) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Range) }
func (v *Date) encodePayload() (json.RawMessage, error) { return marshal(v.Range) }
func (v *Date) equal(o Value) bool                      { return sameDate(v.Range, o.(*Date).Range) }

// URL, Email and PhoneNumber are nullable string properties.
type URL struct {
	base
	Value *string
}

func NewURL(s string) *URL { return &URL{Value: &s} }

func (*URL) Kind() Kind                                { return KindURL }
func (v *URL) String() string                          { return deref(v.Value) }
func (v *URL) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Value) }
func (v *URL) encodePayload() (json.RawMessage, error)  { return marshal(v.Value) }
func (v *URL) equal(o Value) bool                       { return sameString(v.Value, o.(*URL).Value) }

type Email struct {
	base
	Value *string
}

func NewEmail(s string) *Email { return &Email{Value: &s} }

func (*Email) Kind() Kind                                { return KindEmail }
func (v *Email) String() string                          { return deref(v.Value) }
func (v *Email) decodePayload(data json.RawMessage) error { return json.Unmarshal(data, &v.Value) }
func (v *Email) encodePayload() (json.RawMessage, error)  { return marshal(v.Value) }
func (v *Email) equal(o Value) bool                       { return sameString(v.Value, o.(*Email).Value) }

type PhoneNumber struct {
	base
	Value *string
}

func NewPhoneNumber(s string) *PhoneNumber { return &PhoneNumber{Value: &s} }

func (*PhoneNumber) Kind() Kind       { return KindPhoneNumber }
func (v *PhoneNumber) String() string { return deref(v.Value) }
func (v *PhoneNumber) decodePayload(data json.RawMessage) error {
	return json.Unmarshal(data, &v.Value)
}
func (v *PhoneNumber) encodePayload() (json.RawMessage, error) { return marshal(v.Value) }
func (v *PhoneNumber) equal(o Value) bool {
	return sameString(v.Value, o.(*PhoneNumber).Value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
