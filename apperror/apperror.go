package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel categories. Handlers map these to HTTP statuses at the boundary;
// domain code never touches status codes.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication required")
	ErrAuthorization  = errors.New("not authorized")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
)

type AppError struct {
	Err     error  // category sentinel
	Message string // human-readable, surfaced to the client
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Err: ErrAuthentication, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrAuthorization, Message: message}
}

func NotFound(resource, id string) *AppError {
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s not found: %s", resource, id)}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// Status maps an error to its HTTP status; nil maps to 200. Unclassified
// errors become 500; their message is still surfaced, which is acceptable
// for an internal tool.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		// Conflicts share 400 with validation failures; the message field
		// tells the client which one it was.
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
