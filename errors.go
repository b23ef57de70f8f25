package graphmap

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common failure classes. All of them are
// raised at compile time, before any statement reaches a driver.
var (
	// ErrSchema is returned when the metadata is structurally invalid for
	// the requested compilation.
	ErrSchema = errors.New("graphmap: invalid schema")

	// ErrUnsupportedShape is returned when a condition tree or sort spec
	// references a relationship path the view does not declare.
	ErrUnsupportedShape = errors.New("graphmap: unsupported shape")

	// ErrNotFound is returned on the write path when an item lacks a
	// resolvable identity value.
	ErrNotFound = errors.New("graphmap: identity not found")
)

// SchemaError reports metadata that is structurally invalid for the
// requested operation: a fragment without labels, a label filter against a
// type with no declared label set, a rich edge missing its target field.
// It is fatal and never retried; the schema declaration must be fixed.
type SchemaError struct {
	msg string
}

// Error returns the error string.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("graphmap: schema: %s", e.msg)
}

// Is reports whether the target error matches SchemaError.
// This allows errors.Is(err, ErrSchema) to return true.
func (e *SchemaError) Is(err error) bool {
	return err == ErrSchema
}

// NewSchemaError returns a new SchemaError with a formatted message.
func NewSchemaError(format string, args ...any) *SchemaError {
	return &SchemaError{msg: fmt.Sprintf(format, args...)}
}

// IsSchemaError returns true if the error is a SchemaError.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaError
	return errors.As(err, &e) || errors.Is(err, ErrSchema)
}

// UnsupportedShapeError reports a condition tree or sort spec that
// references a relationship path the GraphView does not declare.
type UnsupportedShapeError struct {
	Path string
	View string
}

// Error returns the error string.
func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("graphmap: view %s does not declare path %q", e.View, e.Path)
}

// Is reports whether the target error matches UnsupportedShapeError.
func (e *UnsupportedShapeError) Is(err error) bool {
	return err == ErrUnsupportedShape
}

// NewUnsupportedShapeError returns a new UnsupportedShapeError for the
// given view and path.
func NewUnsupportedShapeError(view, path string) *UnsupportedShapeError {
	return &UnsupportedShapeError{View: view, Path: path}
}

// IsUnsupportedShape returns true if the error is an UnsupportedShapeError.
func IsUnsupportedShape(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedShapeError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupportedShape)
}

// NotFoundError reports a write-path item whose identity value could not be
// resolved. The compiler never silently skips such an item.
type NotFoundError struct {
	label string
	field string
	val   any // the value that failed to normalize, if any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.val != nil {
		return fmt.Sprintf("graphmap: %s.%s: identity value %v is not resolvable", e.label, e.field, e.val)
	}
	return fmt.Sprintf("graphmap: %s.%s: no identity value", e.label, e.field)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the fragment or view name the item belongs to.
func (e *NotFoundError) Label() string {
	return e.label
}

// NewNotFoundError returns a new NotFoundError for the given fragment label
// and identity field.
func NewNotFoundError(label, field string) *NotFoundError {
	return &NotFoundError{label: label, field: field}
}

// NewNotFoundErrorWithValue returns a new NotFoundError carrying the value
// that failed to normalize.
func NewNotFoundErrorWithValue(label, field string, val any) *NotFoundError {
	return &NotFoundError{label: label, field: field, val: val}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}
