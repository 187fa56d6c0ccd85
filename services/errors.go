package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrProjectNotFound    = fmt.Errorf("project %w", ErrNotFound)
	ErrTaskNotFound       = fmt.Errorf("task %w", ErrNotFound)
	ErrForbidden          = errors.New("action is not permitted")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email has already been taken")
	ErrInvalidPassword    = errors.New("password is not acceptable")
	ErrInternal           = errors.New("internal error")
)

// internal wraps a persistence failure so callers only see ErrInternal
func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
