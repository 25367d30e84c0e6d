package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any 401 response: bad credentials on login, or a
// missing or expired token mid-session.
var ErrUnauthorized = errors.New("unauthenticated")

// fallbackMessage is surfaced when the server gives no message of its own.
const fallbackMessage = "Request failed"

// RequestError is a non-2xx response, or a 2xx envelope with success=false.
type RequestError struct {
	Status  int
	Message string
}

// Error returns the server message.
func (e *RequestError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *RequestError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Op  string
	Err error
}

// Error describes the transport failure.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Message returns the text to show a user for err.
func Message(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Unable to reach the server. Please check your connection."
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}
