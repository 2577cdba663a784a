package errors

import (
	"errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// Sentinel errors surfaced by the service layer. Handlers map them to
// response codes with errors.Is.
var (
	ErrInvalidInterval = errors.New("interval start must be before its end")
	ErrInvalidWindow   = errors.New("window start must not be after window end")
	ErrEventFull       = errors.New("event has reached its capacity")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyJoined   = errors.New("already joined")
	ErrNotMember       = errors.New("not a member")
)

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
)
