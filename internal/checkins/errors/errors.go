package errors

import "errors"

var (
	ErrInviteNotFound = errors.New("room invite not found")

	ErrAlreadyInvited = errors.New("guest already invited")
)
