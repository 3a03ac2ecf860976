package schema

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrMetadataNotFound is returned when a type was never registered
	ErrMetadataNotFound = errors.New("metadata not found")

	// ErrUnknownColumn is returned when a name does not match any registered column
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoPrimaryKey is returned when an operation needs a primary key the entity does not declare
	ErrNoPrimaryKey = errors.New("no primary key column")

	// ErrTypeMismatch is returned when a value or instance has the wrong Go type for a column
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNotCollection is returned when a relation kind disagrees with its field shape
	ErrNotCollection = errors.New("relation kind does not match field")

	// ErrNoAccessor is returned when a column was registered without a field accessor
	ErrNoAccessor = errors.New("column has no accessor")
)

// NotFoundError reports a lookup against an unregistered entity or repository type
type NotFoundError struct {
	Kind string
	Type reflect.Type
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s metadata not found for %s", e.Kind, typeName(e.Type))
}

// Is reports whether target is ErrMetadataNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrMetadataNotFound
}

// IsNotFound returns true if the error is a metadata lookup failure
func IsNotFound(err error) bool {
	return errors.Is(err, ErrMetadataNotFound)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
