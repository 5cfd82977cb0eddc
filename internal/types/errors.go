package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for Machina framework errors.
// Operators pattern-match on these codes in rendered error text, so the
// values are part of the public contract and must stay stable.
type ErrorCode string

// Judge resolution error codes
const (
	AUTONOMY_JUDGE_UNAVAILABLE      ErrorCode = "AUTONOMY_JUDGE_UNAVAILABLE"
	AUTONOMY_JUDGE_POLICY_BLOCKED   ErrorCode = "AUTONOMY_JUDGE_POLICY_BLOCKED"
	AUTONOMY_JUDGE_FAILED           ErrorCode = "AUTONOMY_JUDGE_FAILED"
	AUTONOMY_JUDGE_INVALID_PROVIDER ErrorCode = "AUTONOMY_JUDGE_INVALID_PROVIDER"
	AUTONOMY_JUDGE_INVALID_MODEL    ErrorCode = "AUTONOMY_JUDGE_INVALID_MODEL"
)

// Decision protocol error codes
const (
	ORCHESTRATION_DECISION_INVALID ErrorCode = "ORCHESTRATION_DECISION_INVALID"
)

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// MachinaError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type MachinaError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *MachinaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *MachinaError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a MachinaError with the same Code.
func (e *MachinaError) Is(target error) bool {
	var machinaErr *MachinaError
	if errors.As(target, &machinaErr) {
		return e.Code == machinaErr.Code
	}
	return false
}

// NewError creates a new non-retryable MachinaError with the given code and message.
func NewError(code ErrorCode, message string) *MachinaError {
	return &MachinaError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable MachinaError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *MachinaError {
	return &MachinaError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable MachinaError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *MachinaError {
	return &MachinaError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns an empty code when the chain contains no MachinaError.
func CodeOf(err error) ErrorCode {
	var machinaErr *MachinaError
	if errors.As(err, &machinaErr) {
		return machinaErr.Code
	}
	return ""
}
