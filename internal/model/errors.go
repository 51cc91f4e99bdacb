package model

import (
	"errors"
	"fmt"
)

// Error codes for pipeline failures. Business-rule violations are never
// errors; they surface as validation findings.
const (
	ErrCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrCodeNoEmbeddedInvoice  = "NO_EMBEDDED_INVOICE"
	ErrCodeValidationTimeout  = "VALIDATION_TIMEOUT"
	ErrCodeToolUnavailable    = "TOOL_UNAVAILABLE"
	ErrCodeGeneration         = "GENERATION_ERROR"
	ErrCodeInvalidExportInput = "INVALID_EXPORT_INPUT"
	ErrCodeExtraction         = "EXTRACTION_ERROR"
)

// PipelineError is the common error shape for infrastructure failures in the
// invoice pipeline. Code identifies the failure class, Retryable tells the
// caller whether retrying the same call can succeed.
type PipelineError struct {
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// IsCode reports whether err wraps a PipelineError with the given code.
func IsCode(err error, code string) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Code == code
}

// ErrUnsupportedFormat returns the error for content the detector cannot
// classify as either invoice dialect.
func ErrUnsupportedFormat(detail string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeUnsupportedFormat,
		Message: fmt.Sprintf("unrecognized file type: %s", detail),
	}
}

// ErrNoEmbeddedInvoice returns the error for a PDF without an extractable
// invoice XML. The attachment names seen are included for diagnostics.
func ErrNoEmbeddedInvoice(attachments []string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeNoEmbeddedInvoice,
		Message: fmt.Sprintf("no embedded invoice XML found, attachments seen: %v", attachments),
	}
}

// ErrValidationTimeout returns the error for an external validation run that
// exceeded its deadline. Retryable by the caller, never retried internally.
func ErrValidationTimeout(timeout string, cause error) *PipelineError {
	return &PipelineError{
		Code:      ErrCodeValidationTimeout,
		Message:   fmt.Sprintf("validation tool did not finish within %s", timeout),
		Retryable: true,
		Cause:     cause,
	}
}

// ErrToolUnavailable returns the error for a missing validation tool.
// Callers fall back to structural validation instead of failing.
func ErrToolUnavailable(tool string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeToolUnavailable,
		Message: fmt.Sprintf("external tool not available: %s", tool),
	}
}

// ErrGeneration returns the error for an unrecoverable document
// serialization failure.
func ErrGeneration(message string, cause error) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeGeneration,
		Message: message,
		Cause:   cause,
	}
}

// ErrInvalidExportInput returns the error for contradictory or empty ledger
// export configuration.
func ErrInvalidExportInput(message string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeInvalidExportInput,
		Message: message,
	}
}

// ErrExtraction returns the error for a failed draft extraction.
func ErrExtraction(method, message string, cause error) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeExtraction,
		Message: fmt.Sprintf("extraction failed [%s]: %s", method, message),
		Cause:   cause,
	}
}
