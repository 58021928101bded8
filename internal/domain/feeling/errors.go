package feeling

import "errors"

var (
	ErrFeelingNotFound    = errors.New("feeling not found")
	ErrAlreadyLoggedToday = errors.New("feeling already logged today")
	ErrEditWindowClosed   = errors.New("edit window closed")
	ErrNotAuthor          = errors.New("not the author")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
