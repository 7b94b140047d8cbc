// Package errors provides the structured error type shared by all scribe
// components, with error codes and HTTP status mapping.
package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// --- Common Error Constructors ---

// Unauthorized creates a new AppError for a rejected credential. The message
// is deliberately uniform: it never reveals which part of the check failed.
func Unauthorized() *AppError {
	return &AppError{
		Code: ErrCodeUnauthorized, Message: "Unauthorized",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// UnsupportedMedia creates a new AppError for an upload whose declared
// extension or media type is outside the allowed set.
func UnsupportedMedia(ext string, allowed []string) *AppError {
	return &AppError{
		Code:       ErrCodeUnsupportedMedia,
		Message:    fmt.Sprintf("Unsupported file type: '%s'. Allowed types are: %s", ext, strings.Join(allowed, ", ")),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"extension": ext},
	}
}

// Validation creates a new AppError for invalid request input.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Staging creates a new AppError for an upload that could not be written to
// staging storage. The client message stays generic; the cause is logged only.
func Staging(cause error) *AppError {
	return &AppError{
		Code: ErrCodeStagingFailed, Message: "failed to store uploaded file",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// Transcription creates a new AppError for a fatal transcription failure.
// The underlying engine error text is part of the client-visible message.
func Transcription(cause error) *AppError {
	return &AppError{
		Code:       ErrCodeTranscriptionFailed,
		Message:    cause.Error(),
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NotFound creates a new AppError for a missing staged file.
func NotFound(path string) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"path": path},
	}
}

// Internal creates a new AppError for an unexpected server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
