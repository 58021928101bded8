package user

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrPhoneTaken      = errors.New("phone already registered")
	ErrInvalidPhone    = errors.New("invalid phone number")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
