package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for world operations.
var (
	// ErrUnknownBody indicates an operation addressed an id that is not live.
	ErrUnknownBody = errors.New("dynamo: unknown body")

	// ErrSunImmutable indicates an operation that is never valid on the sun.
	ErrSunImmutable = errors.New("dynamo: the sun cannot be removed or moved")

	// ErrSunNotLockable indicates a lock transition was requested for the sun.
	ErrSunNotLockable = errors.New("dynamo: the sun has no lock state")

	// ErrInvalidEdit indicates edit input was rejected at the boundary.
	ErrInvalidEdit = errors.New("dynamo: invalid edit")

	// ErrDuplicateID indicates an id override collides with a live or reserved id.
	ErrDuplicateID = errors.New("dynamo: id already in use")

	// ErrNoSelection indicates a selection-scoped command ran with nothing selected.
	ErrNoSelection = errors.New("dynamo: no body selected")

	// ErrInvalidConfig indicates a session constant is out of range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")
)

// EditError wraps ErrInvalidEdit with the rejected field and input.
type EditError struct {
	Field  Field
	Value  string
	Reason string
}

func (e *EditError) Error() string {
	return fmt.Sprintf("dynamo: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *EditError) Unwrap() error {
	return ErrInvalidEdit
}

// UnknownBody returns ErrUnknownBody annotated with the id.
func UnknownBody(id int) error {
	return fmt.Errorf("%w: %d", ErrUnknownBody, id)
}
