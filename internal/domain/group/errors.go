package group

import "errors"

var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupFull            = errors.New("group is full")
	ErrAlreadyMember        = errors.New("already a member")
	ErrMemberNotFound       = errors.New("member not found")
	ErrNotOwner             = errors.New("not owner")
	ErrCannotRemoveOwner    = errors.New("cannot remove owner")
	ErrInviteNotFound       = errors.New("invite not found")
	ErrInviteUsed           = errors.New("invite already accepted")
	ErrInviteExpired        = errors.New("invite expired")
	ErrCodeGenerationFailed = errors.New("invite code generation failed")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
