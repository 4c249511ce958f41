package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	// ErrDocumentParse marks bytes that could not be read as a PDF.
	ErrDocumentParse = errors.New("document parse error")
	// ErrTransport marks a failed call to the inference endpoint.
	ErrTransport = errors.New("transport error")
	// ErrFormatMismatch marks a reply whose answer count differs from the prompt count.
	ErrFormatMismatch = errors.New("format mismatch")
	// ErrNoPrompts rejects a run with no enabled prompts.
	ErrNoPrompts = errors.New("no prompts enabled")
	// ErrNoDocuments rejects a run with no uploaded files.
	ErrNoDocuments = errors.New("no documents uploaded")
)

// Error kinds reported per file.
const (
	KindDocumentParse = "DOCUMENT_PARSE"
	KindTransport     = "TRANSPORT"
	KindInternal      = "INTERNAL"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Kind classifies err for user-facing per-file messages.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrDocumentParse):
		return KindDocumentParse
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindInternal
	}
}
