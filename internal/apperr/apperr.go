// Package apperr is the error taxonomy shared by the controllers and the
// HTTP layer. None of these errors is fatal; each maps to a message shown
// inline and an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Type categorises an error for display and status mapping.
type Type string

const (
	TypeCamera     Type = "camera"
	TypeValidation Type = "validation"
	TypeBackend    Type = "backend"
	TypeClipboard  Type = "clipboard"
	TypeInternal   Type = "internal"
)

// Error is a categorised, user-presentable error.
type Error struct {
	Type    Type   `json:"type"`
	Message string `json:"error"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(t Type, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

// Camera reports that the capture device could not be used.
func Camera(message string, cause error) *Error {
	return newError(TypeCamera, message, cause)
}

// Validation reports a request that was rejected before doing any work.
func Validation(message string) *Error {
	return newError(TypeValidation, message, nil)
}

// Backend reports a failed call to the analysis backend.
func Backend(message string, cause error) *Error {
	return newError(TypeBackend, message, cause)
}

// Clipboard reports a failed clipboard write.
func Clipboard(message string, cause error) *Error {
	return newError(TypeClipboard, message, cause)
}

func Internal(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// TypeOf returns the category of err, or TypeInternal when err carries none.
func TypeOf(err error) Type {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// StatusCode maps err to the HTTP status the API responds with.
func StatusCode(err error) int {
	switch TypeOf(err) {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeCamera:
		return http.StatusConflict
	case TypeBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
