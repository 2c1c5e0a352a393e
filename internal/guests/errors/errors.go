package errors

import "errors"

var (
	ErrNotFound = errors.New("guest not found")

	ErrInvalidID = errors.New("invalid guest ID format")
)
