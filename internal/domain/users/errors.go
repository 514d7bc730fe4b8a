package users

import "errors"

// Errors returned by credential store implementations.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)
