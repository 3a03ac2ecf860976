package materialize

import "errors"

var (
	// ErrUnknownEntity is returned when a row key's table prefix matches no registered entity
	ErrUnknownEntity = errors.New("unknown entity")

	// ErrInvalidProperty is returned when a joined entity has no relation on the parent to land in
	ErrInvalidProperty = errors.New("invalid property")
)
