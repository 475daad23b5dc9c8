package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRemoteStore       = errors.New("remote store error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConfiguration     = errors.New("configuration error")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// NewError builds a typed error from a plain message.
func NewError(kind error, operation, message string) error {
	return fmt.Errorf("%s: %w: %s", operation, kind, message)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
