package repositories

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that no user matched the requested userId. The
// total-price aggregation also returns it when the user has no orders,
// since both collapse to "nothing to report" for the caller.
var ErrNotFound = errors.New("user not found")

// ConflictError reports a write that would duplicate a unique identity
// field (userId, username or email).
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate %s: a user with this %s already exists", e.Field, e.Field)
}

// InvalidFieldError reports a projection field outside the allowed set.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q: allowed fields are %v", e.Field, allowedFieldNames())
}
