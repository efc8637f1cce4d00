package cards

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError with errors.Is.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a lookup of an id absent from the registry.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConfigLoadError reports a catalog source that could not be read or decoded.
type ConfigLoadError struct {
	Source string
	Err    error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Source, e.Err)
}

func (e *ConfigLoadError) Unwrap() error {
	return e.Err
}
