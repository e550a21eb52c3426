package record

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/agentic-research/notional/api"
	"github.com/agentic-research/notional/internal/property"
)

// Load and Apply map struct fields tagged `notion:"Property name"` to page
// properties. An empty name uses the field name and "-" skips the field;
// the option ",omitempty" keeps Apply from assigning zero values.
//
// Supported field types are string, bool, the integer and float kinds,
// time.Time and []string, pointers to any of those (nil for an empty
// value), and property.Value or one of its concrete types, which are
// copied as is.
//
//	type Grocery struct {
//		Name    string    `notion:"Name"`
//		Price   *float64  `notion:"Price"`
//		Ordered time.Time `notion:"Last ordered,omitempty"`
//		Stores  []string  `notion:"Store availability"`
//	}

// FieldError reports a struct field that cannot hold, or be built from, a
// property value. Err is the underlying cause, often an api error from Set.
type FieldError struct {
	Field    string
	Property string
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s (property %q): %v", e.Field, e.Property, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

var (
	valueType = reflect.TypeFor[property.Value]()
	timeType  = reflect.TypeFor[time.Time]()
)

type boundField struct {
	field     string
	property  string
	omitEmpty bool
	index     int
}

// boundFields returns the struct behind v and its tagged fields. settable
// requires v to be a non-nil pointer.
func boundFields(v any, settable bool) (reflect.Value, []boundField, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	} else if settable {
		return reflect.Value{}, nil, fmt.Errorf("record: want a non-nil struct pointer, got %T", v)
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("record: want a struct, got %T", v)
	}
	t := rv.Type()
	var fields []boundField
	for i := range t.NumField() {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("notion")
		if !ok || tag == "-" || !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		fields = append(fields, boundField{field: f.Name, property: name, omitEmpty: opts == "omitempty", index: i})
	}
	return rv, fields, nil
}

// Load copies the page's properties into the tagged fields of dst, which
// must point to a struct. Fields whose property the page lacks keep their
// value.
func Load(p *Page, dst any) error {
	rv, fields, err := boundFields(dst, true)
	if err != nil {
		return err
	}
	for _, f := range fields {
		v, ok := p.props[f.property]
		if !ok {
			continue
		}
		if err := loadField(rv.Field(f.index), v); err != nil {
			return &FieldError{Field: f.field, Property: f.property, Err: err}
		}
	}
	return nil
}

func loadField(fv reflect.Value, v property.Value) error {
	if rv := reflect.ValueOf(v); rv.Type().AssignableTo(fv.Type()) {
		fv.Set(rv)
		return nil
	}
	ft := fv.Type()
	if ft.Kind() == reflect.Pointer {
		if empty(v) {
			fv.SetZero()
			return nil
		}
		n := reflect.New(ft.Elem())
		if err := loadField(n.Elem(), v); err != nil {
			return err
		}
		fv.Set(n)
		return nil
	}
	if ft == timeType {
		t, err := timeOf(v)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}

	switch ft.Kind() {
	case reflect.String:
		fv.SetString(v.String())
		return nil
	case reflect.Bool:
		if b, ok := boolOf(v); ok {
			fv.SetBool(b)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := numberOf(v); ok {
			fv.SetFloat(f)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f, ok := numberOf(v); ok {
			if n := int64(f); float64(n) == f && !fv.OverflowInt(n) {
				fv.SetInt(n)
				return nil
			}
			return fmt.Errorf("%v does not fit %s", f, ft)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f, ok := numberOf(v); ok {
			if n := uint64(f); f >= 0 && float64(n) == f && !fv.OverflowUint(n) {
				fv.SetUint(n)
				return nil
			}
			return fmt.Errorf("%v does not fit %s", f, ft)
		}
	case reflect.Slice:
		if ft.Elem().Kind() == reflect.String {
			if list, ok := listOf(v); ok {
				out := reflect.MakeSlice(ft, len(list), len(list))
				for i, s := range list {
					out.Index(i).SetString(s)
				}
				fv.Set(out)
				return nil
			}
		}
	}
	return fmt.Errorf("cannot load %s value into %s", v.Kind(), ft)
}

func empty(v property.Value) bool {
	switch v := v.(type) {
	case *property.Number:
		return v.Value == nil
	case *property.Date:
		return v.Range == nil
	case *property.Select:
		return v.Option == nil
	case *property.Status:
		return v.Option == nil
	case *property.URL:
		return v.Value == nil
	case *property.Email:
		return v.Value == nil
	case *property.PhoneNumber:
		return v.Value == nil
	case *property.Formula:
		return v.Text == nil && v.Number == nil && v.Boolean == nil && v.Date == nil
	}
	return false
}

func timeOf(v property.Value) (time.Time, error) {
	switch v := v.(type) {
	case *property.Date:
		if v.Range == nil {
			return time.Time{}, nil
		}
		return v.Range.StartTime()
	case *property.Formula:
		if v.Date != nil {
			return v.Date.StartTime()
		}
	case *property.CreatedTime:
		return v.Time.Time()
	case *property.LastEditedTime:
		return v.Time.Time()
	}
	return time.Time{}, fmt.Errorf("cannot load %s value into time.Time", v.Kind())
}

func boolOf(v property.Value) (bool, bool) {
	switch v := v.(type) {
	case *property.Checkbox:
		return v.Checked, true
	case *property.Formula:
		if v.Boolean != nil {
			return *v.Boolean, true
		}
	}
	return false, false
}

func numberOf(v property.Value) (float64, bool) {
	switch v := v.(type) {
	case *property.Number:
		return v.Float(), true
	case *property.Formula:
		if v.Number != nil {
			return *v.Number, true
		}
	case *property.UniqueID:
		return float64(v.Number), true
	}
	return 0, false
}

func listOf(v property.Value) ([]string, bool) {
	switch v := v.(type) {
	case *property.MultiSelect:
		return v.OptionNames(), true
	case *property.Relation:
		return v.IDs(), true
	case *property.People:
		ids := make([]string, len(v.Users))
		for i, u := range v.Users {
			ids[i] = u.ID
		}
		return ids, true
	}
	return nil, false
}

// Apply assigns every tagged field of src, a struct or a pointer to one, to
// the page through Set. Assignments stop at the first field that fails, so
// fields before it stay assigned and dirty.
func Apply(p *Page, src any) error {
	rv, fields, err := boundFields(src, false)
	if err != nil {
		return err
	}
	for _, f := range fields {
		fv := rv.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		v, err := p.valueFor(f.property, fv)
		if err == nil && v != nil {
			err = p.Set(f.property, v)
		}
		if err != nil {
			return &FieldError{Field: f.field, Property: f.property, Err: err}
		}
	}
	return nil
}

// kindOf returns the kind the schema declares for name, or the kind the page
// already holds. ok is false when neither knows the property.
func (p *Page) kindOf(name string) (k property.Kind, ok bool, err error) {
	if p.schema != nil {
		if k, ok := p.schema.KindOf(name); ok {
			return k, true, nil
		}
		return "", false, &api.UnknownPropertyError{Property: name}
	}
	if v, ok := p.props[name]; ok {
		return v.Kind(), true, nil
	}
	return "", false, nil
}

// valueFor builds a property value from a field. A nil property.Value field
// yields nil and is skipped.
func (p *Page) valueFor(name string, fv reflect.Value) (property.Value, error) {
	ft := fv.Type()
	if ft.Implements(valueType) {
		if fv.IsNil() {
			return nil, nil
		}
		return fv.Interface().(property.Value), nil
	}
	kind, known, err := p.kindOf(name)
	if err != nil {
		return nil, err
	}
	if ft.Kind() == reflect.Pointer {
		if !fv.IsNil() {
			return p.valueFor(name, fv.Elem())
		}
		if !known {
			return nil, fmt.Errorf("cannot clear a property of unknown kind")
		}
		return property.FromString(kind, "")
	}
	if ft == timeType {
		return property.NewDate(fv.Interface().(time.Time)), nil
	}

	switch ft.Kind() {
	case reflect.String:
		if !known {
			kind = property.KindRichText
		}
		return property.FromString(kind, fv.String())
	case reflect.Bool:
		return property.NewCheckbox(fv.Bool()), nil
	case reflect.Float32, reflect.Float64:
		return property.NewNumber(fv.Float()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return property.NewNumber(float64(fv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return property.NewNumber(float64(fv.Uint())), nil
	case reflect.Slice:
		if ft.Elem().Kind() != reflect.String {
			break
		}
		list := make([]string, fv.Len())
		for i := range list {
			list[i] = fv.Index(i).String()
		}
		switch kind {
		case property.KindRelation:
			return property.NewRelation(list...), nil
		case property.KindPeople:
			return property.NewPeople(list...), nil
		case property.KindFiles:
			return property.NewFiles(list...), nil
		}
		return property.NewMultiSelect(list...), nil
	}
	return nil, fmt.Errorf("cannot build a property from %s", ft)
}
