package session

import "errors"

// ErrLoginRequired is returned by Authorize when there is no session or its
// role does not match.
var ErrLoginRequired = errors.New("login required")

// AuthError is a failed login: bad credentials, or the backend unreachable.
// Message is safe to show the user.
type AuthError struct {
	Message string
	Err     error
}

// Error returns the user-facing message.
func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap returns the cause, if any.
func (e *AuthError) Unwrap() error {
	return e.Err
}
