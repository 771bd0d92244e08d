package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/hrygo/agenda/plugin/ai/event"
	"github.com/hrygo/agenda/plugin/ai/ptime"
	"github.com/hrygo/agenda/store"
)

// ErrorCode represents a specific error type returned by the API.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeInvalidTimestamp indicates a baseline start/end could not be parsed.
	ErrCodeInvalidTimestamp ErrorCode = "INVALID_TIMESTAMP"
	// ErrCodeIncompleteBaseline indicates the LLM omitted a required field.
	ErrCodeIncompleteBaseline ErrorCode = "INCOMPLETE_BASELINE"
	// ErrCodeInvalidLLMResponse indicates the LLM reply held no JSON object.
	ErrCodeInvalidLLMResponse ErrorCode = "INVALID_LLM_RESPONSE"
	// ErrCodeLLMUnavailable indicates the LLM service is not available.
	ErrCodeLLMUnavailable ErrorCode = "LLM_UNAVAILABLE"
	// ErrCodeRateLimitExceeded indicates rate limit has been exceeded.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeNotFound indicates the requested event does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeContextCanceled indicates the operation was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// APIError represents a structured error for API operations.
type APIError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error.
func (e *APIError) WithContext(key string, value any) *APIError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// HTTPStatus maps the error code to an HTTP status.
func (e *APIError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *APIError {
	return &APIError{Code: ErrCodeInvalidArgument, Message: msg}
}

// RateLimitExceeded creates a rate limit exceeded error.
func RateLimitExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: msg}
}

// LLMUnavailable creates an LLM unavailable error.
func LLMUnavailable(msg string) *APIError {
	return &APIError{Code: ErrCodeLLMUnavailable, Message: msg}
}

// Wrap wraps an existing error with a code.
func Wrap(cause error, code ErrorCode, msg string) *APIError {
	return &APIError{Code: code, Message: msg, Cause: cause}
}

// sentinels maps domain errors to codes, checked in order.
var sentinels = []struct {
	err     error
	code    ErrorCode
	message string
}{
	{ptime.ErrInvalidTimestamp, ErrCodeInvalidTimestamp, "event start or end is not a valid timestamp"},
	{event.ErrEmptyInput, ErrCodeInvalidArgument, "text is required"},
	{event.ErrInputTooLong, ErrCodeInvalidArgument, fmt.Sprintf("text exceeds %d characters", event.MaxInputLength)},
	{event.ErrIncompleteBaseline, ErrCodeIncompleteBaseline, "LLM reply is missing required fields"},
	{event.ErrInvalidLLMResponse, ErrCodeInvalidLLMResponse, "LLM reply is not valid JSON"},
	{event.ErrLLMUnavailable, ErrCodeLLMUnavailable, "LLM service unavailable"},
	{store.ErrNotFound, ErrCodeNotFound, "event not found"},
	{context.DeadlineExceeded, ErrCodeTimeout, "operation timed out"},
	{context.Canceled, ErrCodeContextCanceled, "operation canceled"},
}

// FromError converts any error to an *APIError. Errors already carrying a
// code are returned unchanged; unknown errors become INTERNAL.
func FromError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	for _, s := range sentinels {
		if stderrors.Is(err, s.err) {
			return &APIError{Code: s.code, Message: s.message, Cause: err}
		}
	}
	return &APIError{Code: ErrCodeInternal, Message: "internal error", Cause: err}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// HTTPStatus maps an error code to an HTTP status.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidArgument, ErrCodeInvalidTimestamp:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeIncompleteBaseline, ErrCodeInvalidLLMResponse:
		return http.StatusBadGateway
	case ErrCodeLLMUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeContextCanceled:
		// nginx's "client closed request"
		return 499
	default:
		return http.StatusInternalServerError
	}
}
