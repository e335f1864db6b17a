package domain

import "errors"

var (
	// ErrSessionNotFound signals a missing session or one that is not
	// owned by the requesting user.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionInactive rejects message appends on an ended session.
	ErrSessionInactive = errors.New("session is not active")

	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
