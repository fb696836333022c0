// Package errors defines the structured error type used at component
// boundaries. Internal faults are converted here into something a caller can
// act on: an HTTP status for the API surface, a stable code for tests and
// logs, and a user-facing message.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes for the failure taxonomy.
const (
	// CodeValidation marks malformed input rejected before any mutation.
	CodeValidation = "VALIDATION_ERROR"
	// CodeUnsupportedOperation marks a function call with an unknown name.
	CodeUnsupportedOperation = "UNSUPPORTED_OPERATION"
	// CodeTransport marks a transient provider/network failure.
	CodeTransport = "TRANSPORT_ERROR"
	// CodePersistence marks a failed store write.
	CodePersistence = "PERSISTENCE_ERROR"
	// CodeInternal marks an unclassified internal fault.
	CodeInternal = "INTERNAL_ERROR"
)

// AppError represents a structured application error.
type AppError struct {
	// HTTPStatusCode is the HTTP status code to return.
	HTTPStatusCode int `json:"-"`
	// Code is an internal error code string.
	Code string `json:"code"`
	// Message is the user-facing error message.
	Message string `json:"message"`
	// Details provides additional error context (optional).
	Details map[string]interface{} `json:"details,omitempty"`
	// Err is the underlying error (not marshaled to JSON).
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ToJSON returns the JSON byte representation of the error.
func (e *AppError) ToJSON() []byte {
	b, _ := json.Marshal(e)
	return b
}

// New creates a new AppError.
func New(statusCode int, code, message string, err error) *AppError {
	return &AppError{
		HTTPStatusCode: statusCode,
		Code:           code,
		Message:        message,
		Err:            err,
	}
}

// NewValidation creates a validation error for malformed user input.
func NewValidation(message string) *AppError {
	return New(http.StatusBadRequest, CodeValidation, message, nil)
}

// NewUnsupportedOperation creates an error for an unknown function-call name.
func NewUnsupportedOperation(name string) *AppError {
	return New(http.StatusBadRequest, CodeUnsupportedOperation,
		fmt.Sprintf("unknown function: %s", name), nil)
}

// NewTransport wraps a transient provider or network failure.
func NewTransport(err error) *AppError {
	return New(http.StatusInternalServerError, CodeTransport,
		"assistant provider is unavailable", err)
}

// NewPersistence wraps a failed store write.
func NewPersistence(err error) *AppError {
	return New(http.StatusInternalServerError, CodePersistence,
		"failed to persist events", err)
}

// IsCode reports whether err is an *AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
