package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for Crucible scanner errors.
type ErrorCode string

// Configuration error codes. These fail a scan before any external call is
// issued.
const (
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	UNKNOWN_CATEGORY         ErrorCode = "UNKNOWN_CATEGORY"
	MISSING_CONTEXT          ErrorCode = "MISSING_CONTEXT"
	INVALID_DISTRIBUTION     ErrorCode = "INVALID_DISTRIBUTION"
)

// Target error codes
const (
	TARGET_INVOCATION_FAILED ErrorCode = "TARGET_INVOCATION_FAILED"
	TARGET_TIMEOUT           ErrorCode = "TARGET_TIMEOUT"
)

// Evaluation error codes
const (
	EVALUATION_PARSE_FAILED ErrorCode = "EVALUATION_PARSE_FAILED"
	METRIC_NOT_FOUND        ErrorCode = "METRIC_NOT_FOUND"
)

// Scan lifecycle error codes
const (
	SCAN_CANCELLED ErrorCode = "SCAN_CANCELLED"
)

// CrucibleError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints for
// error handling logic.
type CrucibleError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *CrucibleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *CrucibleError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *CrucibleError) Is(target error) bool {
	var crucibleErr *CrucibleError
	if errors.As(target, &crucibleErr) {
		return e.Code == crucibleErr.Code
	}
	return false
}

// NewError creates a new non-retryable CrucibleError with the given code and message.
func NewError(code ErrorCode, message string) *CrucibleError {
	return &CrucibleError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable CrucibleError with the given code
// and message. Use this for transient errors that may succeed on retry.
func NewRetryableError(code ErrorCode, message string) *CrucibleError {
	return &CrucibleError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable CrucibleError that wraps an existing
// error. The wrapped error is accessible via Unwrap() for chain inspection.
func WrapError(code ErrorCode, message string, cause error) *CrucibleError {
	return &CrucibleError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain, or "" when the chain
// contains no CrucibleError.
func CodeOf(err error) ErrorCode {
	var crucibleErr *CrucibleError
	if errors.As(err, &crucibleErr) {
		return crucibleErr.Code
	}
	return ""
}

// IsConfigurationError reports whether the error belongs to the
// configuration family, which fails a scan before any work starts.
func IsConfigurationError(err error) bool {
	switch CodeOf(err) {
	case CONFIG_VALIDATION_FAILED, UNKNOWN_CATEGORY, MISSING_CONTEXT, INVALID_DISTRIBUTION:
		return true
	default:
		return false
	}
}
