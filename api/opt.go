package api

import (
	"bytes"
	"encoding/json"
)

type optState uint8

const (
	optAbsent optState = iota
	optNull
	optSet
)

// Opt is a JSON field that remembers whether it was absent, explicitly null,
// or carried a value. Struct fields of this type must use the `omitzero` tag
// option so that an absent field stays absent when re-encoded.
type Opt[T any] struct {
	value T
	state optState
}

// Some returns an Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, state: optSet}
}

// Null returns an Opt that encodes as JSON null.
func Null[T any]() Opt[T] {
	return Opt[T]{state: optNull}
}

// Get returns the value and whether one is set. Null and absent both report false.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.state == optSet
}

// Value returns the held value, or the zero value of T.
func (o Opt[T]) Value() T {
	return o.value
}

// IsSet reports whether a non-null value is held.
func (o Opt[T]) IsSet() bool { return o.state == optSet }

// IsNull reports whether the field was (or will be) encoded as JSON null.
func (o Opt[T]) IsNull() bool { return o.state == optNull }

// IsZero reports whether the field is absent. Used by encoding/json omitzero.
func (o Opt[T]) IsZero() bool { return o.state == optAbsent }

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.state != optSet {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value, o.state = zero, optNull
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.value, o.state = v, optSet
	return nil
}
