package entity

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when the requested entity does
// not exist. Use cases translate it into their own not-found errors.
var ErrNotFound = errors.New("entity not found")

// ValidationError reports a single invalid field on an entity.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
