package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidID is returned when an identifier is not a Notion UUID.
var ErrInvalidID = errors.New("invalid object id")

// SchemaError reports a malformed or unrecognized JSON shape during decode.
type SchemaError struct {
	Object  string // what was being decoded, e.g. "rich_text", "page"
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: %s", e.Object, e.Message)
}

// Schemaf builds a SchemaError with a formatted message.
func Schemaf(object, format string, args ...any) *SchemaError {
	return &SchemaError{Object: object, Message: fmt.Sprintf(format, args...)}
}

// TypeMismatchError is returned when decoding a property whose JSON kind
// disagrees with the kind the database schema declares for it.
type TypeMismatchError struct {
	Property string
	Declared string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("property %q: schema declares %s but data holds %s", e.Property, e.Declared, e.Actual)
}

// KindMismatchError is returned when a value assigned to a property has a
// kind other than the declared (or previously read) one.
type KindMismatchError struct {
	Property string
	Declared string
	Actual   string
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("property %q: expected kind %s, got %s", e.Property, e.Declared, e.Actual)
}

// UnknownPropertyError is returned when a property name is not present.
type UnknownPropertyError struct {
	Property string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("unknown property %q", e.Property)
}

// ConstraintError is returned when a value violates the declared option catalogue.
type ConstraintError struct {
	Property string
	Value    string
	Allowed  []string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("property %q: option %q not in [%s]", e.Property, e.Value, strings.Join(e.Allowed, ", "))
}

// ReadOnlyPropertyError is returned when encoding a server-computed kind for a write.
type ReadOnlyPropertyError struct {
	Property string
	Kind     string
}

func (e *ReadOnlyPropertyError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("%s values are read-only", e.Kind)
	}
	return fmt.Sprintf("property %q: %s values are read-only", e.Property, e.Kind)
}

// UnknownBlockTypeError describes a block discriminator the model does not
// know. It is informational: decoding falls back to a raw-preserving block.
type UnknownBlockTypeError struct {
	BlockID string
	Type    string
}

func (e *UnknownBlockTypeError) Error() string {
	return fmt.Sprintf("block %s: unknown type %q", e.BlockID, e.Type)
}

// NotBoundError is returned when lazy data is requested from an object that
// has no session to fetch it through.
type NotBoundError struct {
	ObjectID string
}

func (e *NotBoundError) Error() string {
	return fmt.Sprintf("object %s is not bound to a session", e.ObjectID)
}

// IterationError wraps a failure to fetch the next batch of a paginated list.
type IterationError struct {
	Page int // 1-based batch number that was being fetched
	Err  error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("fetching result batch %d: %v", e.Page, e.Err)
}

func (e *IterationError) Unwrap() error { return e.Err }

// TransportError is a non-2xx response (or a failed round trip) reported by the transport.
type TransportError struct {
	Method string
	Path   string
	Status int // 0 when no response was received
	Body   []byte
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, strings.TrimSpace(string(e.Body)))
}

func (e *TransportError) Unwrap() error { return e.Err }
