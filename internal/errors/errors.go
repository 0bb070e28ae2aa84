package errors

import (
	"errors"
	"fmt"
)

// Common error types for the MindSight client
var (
	// Session errors
	ErrNoSession      = errors.New("no active session")
	ErrSessionExpired = errors.New("session expired")
	ErrMalformedToken = errors.New("malformed session token")

	// Authorization errors
	ErrOwnRole   = errors.New("cannot change own role")
	ErrAdminOnly = errors.New("admin role required")

	// Input errors
	ErrMissingField = errors.New("missing required field")
	ErrInvalidID    = errors.New("invalid id")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
