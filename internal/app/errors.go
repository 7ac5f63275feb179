package app

import (
	"errors"
	"strings"
)

// Error taxonomy surfaced to the HTTP layer. Messages double as the public
// error text, so keep them free of internal detail.
var (
	ErrUnauthorized   = errors.New("Unauthorized")
	ErrMissingUserID  = errors.New("User ID not found")
	ErrForbidden      = errors.New("Forbidden")
	ErrNotFound       = errors.New("Vendor not found")
	ErrValidation     = errors.New("Missing required fields")
	ErrPersistence    = errors.New("persistence failure")
	ErrInvalidSession = errors.New("invalid session")
	ErrInvalidLogin   = errors.New("invalid sign-in credential")
)

// ValidationError lists the JSON names of required fields that were missing or blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
