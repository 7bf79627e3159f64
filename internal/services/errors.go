package services

import (
	"errors"
	"fmt"

	"marketplace/internal/store"
)

// ValidationError reports malformed or missing input.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a uniqueness violation such as a reused email.
type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

// AuthError reports bad credentials or a missing, malformed or expired token.
type AuthError struct{ Message string }

func (e *AuthError) Error() string { return e.Message }

// ForbiddenError reports an authenticated actor that may not do what it asked.
type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// NotFoundError reports a missing entity.
type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func Conflict(msg string) error  { return &ConflictError{Message: msg} }
func Auth(msg string) error      { return &AuthError{Message: msg} }
func Forbidden(msg string) error { return &ForbiddenError{Message: msg} }
func NotFound(msg string) error  { return &NotFoundError{Message: msg} }

// notFoundOr maps store.ErrNotFound to a NotFoundError carrying msg and
// passes every other error through.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return NotFound(msg)
	}
	return err
}
