package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents specific error types in the audiodepot system
type ErrorCode string

const (
	// Ingestion errors
	ErrUnsupportedEncoding ErrorCode = "UNSUPPORTED_ENCODING"
	ErrInvalidAudio        ErrorCode = "INVALID_AUDIO"
	ErrPayloadTooLarge     ErrorCode = "PAYLOAD_TOO_LARGE"

	// Query errors
	ErrMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrInvalidParameter ErrorCode = "INVALID_PARAMETER"
	ErrNotFound         ErrorCode = "NOT_FOUND"

	// Storage errors
	ErrStoreFailure   ErrorCode = "STORE_FAILURE"
	ErrFileOperations ErrorCode = "FILE_OPERATIONS_FAILED"

	// Dev-only routes that are switched off
	ErrDisabled ErrorCode = "DISABLED"
)

var statusCodes = map[ErrorCode]int{
	ErrUnsupportedEncoding: http.StatusBadRequest,
	ErrInvalidAudio:        http.StatusBadRequest,
	ErrPayloadTooLarge:     http.StatusRequestEntityTooLarge,
	ErrMissingParameter:    http.StatusBadRequest,
	ErrInvalidParameter:    http.StatusBadRequest,
	ErrNotFound:            http.StatusNotFound,
	ErrStoreFailure:        http.StatusInternalServerError,
	ErrFileOperations:      http.StatusInternalServerError,
	ErrDisabled:            http.StatusNotFound,
}

// AudioError represents a structured error in the audiodepot system
type AudioError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Filename  string                 `json:"filename,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (ae *AudioError) Error() string {
	msg := fmt.Sprintf("[%s]: %s", ae.Code, ae.Message)
	if ae.Filename != "" {
		msg = fmt.Sprintf("[%s] %s (filename: %s)", ae.Code, ae.Message, ae.Filename)
	}
	if ae.Cause != nil {
		msg += ": " + ae.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause error
func (ae *AudioError) Unwrap() error {
	return ae.Cause
}

// StatusCode returns the HTTP status the error maps to.
func (ae *AudioError) StatusCode() int {
	if code, ok := statusCodes[ae.Code]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// New creates a new structured audio error
func New(code ErrorCode, message string) *AudioError {
	return &AudioError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]interface{}),
	}
}

// WithFilename adds the affected filename to the error
func (ae *AudioError) WithFilename(filename string) *AudioError {
	ae.Filename = filename
	return ae
}

// WithCause adds the underlying cause error
func (ae *AudioError) WithCause(err error) *AudioError {
	ae.Cause = err
	return ae
}

// WithContext adds arbitrary context to the error
func (ae *AudioError) WithContext(key string, value interface{}) *AudioError {
	ae.Context[key] = value
	return ae
}

// AsAudioError finds the first AudioError in err's chain.
func AsAudioError(err error) (*AudioError, bool) {
	var ae *AudioError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HasErrorCode checks if an error has a specific error code
func HasErrorCode(err error, code ErrorCode) bool {
	if ae, ok := AsAudioError(err); ok {
		return ae.Code == code
	}
	return false
}

// StatusCode maps any error to an HTTP status code. Errors that are not
// AudioErrors are internal server errors.
func StatusCode(err error) int {
	if ae, ok := AsAudioError(err); ok {
		return ae.StatusCode()
	}
	return http.StatusInternalServerError
}

// Wrap wraps a regular error as an AudioError
func Wrap(err error, code ErrorCode, message string) *AudioError {
	return New(code, message).WithCause(err)
}

func NewMissingParameterError(param string) *AudioError {
	return New(ErrMissingParameter, fmt.Sprintf("Request must include %s query parameter", param)).
		WithContext("parameter", param)
}

func NewInvalidParameterError(param, value string, cause error) *AudioError {
	return New(ErrInvalidParameter, fmt.Sprintf("Invalid value for %s query parameter", param)).
		WithContext("parameter", param).
		WithContext("value", value).
		WithCause(cause)
}

func NewNotFoundError(filename string) *AudioError {
	return New(ErrNotFound, "File not found").WithFilename(filename)
}

func NewInvalidAudioError(filename string, cause error) *AudioError {
	return New(ErrInvalidAudio, "Bad audio file").
		WithFilename(filename).
		WithCause(cause)
}

func NewStoreFailureError(filename string, cause error) *AudioError {
	return New(ErrStoreFailure, "failed to commit audio record").
		WithFilename(filename).
		WithCause(cause)
}
