package llm

import (
	"errors"
	"strings"

	"github.com/crucible-sec/crucible/internal/types"
)

// LLM error codes follow the Crucible error pattern.
const (
	ErrCompletionFailed     types.ErrorCode = "LLM_COMPLETION_FAILED"
	ErrResponseParseFailed  types.ErrorCode = "LLM_RESPONSE_PARSE_FAILED"
	ErrInvalidRequest       types.ErrorCode = "LLM_INVALID_REQUEST"
	ErrProviderUnavailable  types.ErrorCode = "LLM_PROVIDER_UNAVAILABLE"
	ErrProviderRateLimited  types.ErrorCode = "LLM_PROVIDER_RATE_LIMITED"
	ErrProviderUnauthorized types.ErrorCode = "LLM_PROVIDER_UNAUTHORIZED"
	ErrTimeoutExceeded      types.ErrorCode = "LLM_TIMEOUT_EXCEEDED"
)

// IsRetryable determines if an error is transient and may succeed on retry.
func IsRetryable(err error) bool {
	var crucibleErr *types.CrucibleError
	if !errors.As(err, &crucibleErr) {
		return false
	}

	if crucibleErr.Retryable {
		return true
	}

	switch crucibleErr.Code {
	case ErrProviderRateLimited, ErrProviderUnavailable, ErrTimeoutExceeded:
		return true
	case ErrResponseParseFailed:
		// A fresh sample may honor the schema.
		return true
	default:
		return false
	}
}

// NewCompletionError creates an error for completion failures.
func NewCompletionError(message string, cause error) *types.CrucibleError {
	return types.WrapError(ErrCompletionFailed, message, cause)
}

// NewParseError creates an error for responses that do not honor the
// requested schema.
func NewParseError(message string, cause error) *types.CrucibleError {
	return &types.CrucibleError{
		Code:      ErrResponseParseFailed,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewInvalidRequestError creates an error for invalid requests.
func NewInvalidRequestError(message string) *types.CrucibleError {
	return types.NewError(ErrInvalidRequest, message)
}

// TranslateError classifies provider SDK errors into Crucible errors based on
// error message content. Already-classified errors pass through unchanged.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var crucibleErr *types.CrucibleError
	if errors.As(err, &crucibleErr) {
		return err
	}

	lowerMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lowerMsg, "unauthorized") || strings.Contains(lowerMsg, "authentication") || strings.Contains(lowerMsg, "api key"):
		return &types.CrucibleError{
			Code:    ErrProviderUnauthorized,
			Message: "provider '" + provider + "' authentication failed",
			Cause:   err,
		}
	case strings.Contains(lowerMsg, "rate limit") || strings.Contains(lowerMsg, "too many requests"):
		return &types.CrucibleError{
			Code:      ErrProviderRateLimited,
			Message:   "rate limit exceeded for provider: " + provider,
			Retryable: true,
			Cause:     err,
		}
	case strings.Contains(lowerMsg, "timeout") || strings.Contains(lowerMsg, "deadline"):
		return &types.CrucibleError{
			Code:      ErrTimeoutExceeded,
			Message:   "provider '" + provider + "' request timed out",
			Retryable: true,
			Cause:     err,
		}
	default:
		return &types.CrucibleError{
			Code:      ErrProviderUnavailable,
			Message:   "provider '" + provider + "' request failed",
			Retryable: true,
			Cause:     err,
		}
	}
}
