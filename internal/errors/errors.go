package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP layer can pick a status code.
type Kind int

const (
	// KindInternal is an unexpected failure (storage, encoding, ...).
	KindInternal Kind = iota
	// KindNotFound means the addressed entity does not exist.
	KindNotFound
	// KindBadInput means the request could not be applied as given.
	KindBadInput
	// KindConflict means a uniqueness constraint would be violated.
	KindConflict
	// KindUnauthorized means the credentials were rejected.
	KindUnauthorized
	// KindForbidden means the credentials were valid but access is denied.
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadInput:
		return "bad_input"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a domain error carrying its kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// BadInput creates a KindBadInput error.
func BadInput(format string, args ...any) *Error {
	return New(KindBadInput, format, args...)
}

// Conflict creates a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// Unauthorized creates a KindUnauthorized error.
func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

// Forbidden creates a KindForbidden error.
func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// Internal wraps an unexpected failure.
func Internal(err error, format string, args ...any) *Error {
	return Wrap(err, KindInternal, format, args...)
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// MapErrorToHTTP maps domain errors to HTTP errors by kind. Internal
// failures never leak their message.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	switch e.Kind {
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, e.Message)
	case KindBadInput:
		return NewHTTPError(http.StatusBadRequest, e.Message)
	case KindConflict:
		return NewHTTPError(http.StatusConflict, e.Message)
	case KindUnauthorized:
		return NewHTTPError(http.StatusUnauthorized, e.Message)
	case KindForbidden:
		return NewHTTPError(http.StatusForbidden, e.Message)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
