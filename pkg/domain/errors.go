package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBitNotFound is returned when a handle does not resolve to a node.
	ErrBitNotFound = errors.New("bit not found")
	// ErrAttrNotFound is returned when a named attribute does not exist on a node.
	ErrAttrNotFound = errors.New("attribute not found")
	// ErrAlreadyAttached is returned when a bit already carries a component of the same class.
	ErrAlreadyAttached = errors.New("component class already attached")
	// ErrUnknownClass is returned when a record names a class outside the closed set.
	ErrUnknownClass = errors.New("unknown component class")
	// ErrBrokenLink is returned when a component or module link does not resolve to exactly one owner.
	ErrBrokenLink = errors.New("broken component link")
	// ErrCycle is returned when the hierarchy revisits a bit.
	ErrCycle = errors.New("cycle in hierarchy")
	// ErrNotCharacter is returned when a bit carries no CharacterRoot component.
	ErrNotCharacter = errors.New("bit is not a character root")
	// ErrNoRootModule is returned when a character's top bit carries no ModuleRoot component.
	ErrNoRootModule = errors.New("character has no root module")
	// ErrMissingAncestor is returned when an ancestor artifact was found but never built.
	ErrMissingAncestor = errors.New("ancestor artifact missing from build")
	// ErrDuplicateName is returned when two artifacts of one character would share a name.
	ErrDuplicateName = errors.New("duplicate artifact name")
	// ErrSceneNotFound is returned by stores when a scene document does not exist.
	ErrSceneNotFound = errors.New("scene not found")
)

// BuildError carries the authoring context of a failed build step.
type BuildError struct {
	Module string
	Bit    string
	Class  Class
	Err    error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("module %q", e.Module)
	if e.Bit != "" {
		msg += fmt.Sprintf(", bit %q", e.Bit)
	}
	if e.Class != "" {
		msg += fmt.Sprintf(", class %s", e.Class)
	}
	return msg + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error { return e.Err }

// AggregateError collects independent failures (validation, best-effort builds).
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is / errors.As.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// Join returns nil for no errors, the error itself for one, an AggregateError otherwise.
func Join(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return &AggregateError{Errors: errs}
}
