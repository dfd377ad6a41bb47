// Package errors provides standardized error handling for the answer pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeReformulationFailed ErrorCode = "REFORMULATION_FAILED"
	ErrCodeSearchFetchFailed   ErrorCode = "SEARCH_FETCH_FAILED"
	ErrCodeSearchTimeout       ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeSummaryFailed       ErrorCode = "SUMMARY_FAILED"
	ErrCodeLLMTimeout          ErrorCode = "LLM_TIMEOUT"
	ErrCodeRenderFailed        ErrorCode = "RENDER_FAILED"
	ErrCodeTransportFailed     ErrorCode = "TRANSPORT_FAILED"
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeInvalidCitationIndex ErrorCode = "INVALID_CITATION_INDEX"
	ErrCodeCitationNotFound     ErrorCode = "CITATION_NOT_FOUND"
	ErrCodeCitationOutOfRange   ErrorCode = "CITATION_OUT_OF_RANGE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewReformulationFailedError wraps a completion-service failure during
// query reformulation.
func NewReformulationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReformulationFailed,
		Message:   "Query reformulation API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchFetchFailedError wraps a failed search-endpoint fetch.
func NewSearchFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchFetchFailed,
		Message:   "Search endpoint fetch error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a search fetch timeout error.
func NewSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search endpoint timeout",
		Details:   "Search call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSummaryFailedError wraps a completion-service failure during
// grounded summarization.
func NewSummaryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSummaryFailed,
		Message:   "Summarization API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a completion-service timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Completion service timeout",
		Details:   "Completion call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRenderFailedError wraps a markdown-to-image rendering failure.
func NewRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRenderFailed,
		Message:   "Image rendering error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransportFailedError wraps a message delivery failure.
func NewTransportFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailed,
		Message:   "Message delivery error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError wraps a citation-cache store failure. Callers
// degrade to a no-op rather than surfacing this to the user.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Citation cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. User-Facing Messages
// ==========================

// UserMessages maps validation error codes from the lookup responder to the
// strings the bot replies with. Transport-level pipeline failures share one
// generic fallback.
var UserMessages = map[ErrorCode]string{
	ErrCodeInvalidCitationIndex: "That doesn't look like a citation number. Reply with a whole number, e.g. 1.",
	ErrCodeCitationNotFound:     "This result has no citations.",
	ErrCodeCitationOutOfRange:   "Citation number out of range.",
}

// GenericFailureMessage is sent best-effort when a pipeline invocation is
// aborted by a transport failure.
const GenericFailureMessage = "Something went wrong while answering. Please try again."

// IsRetryable reports whether the error carries a retryable code.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}
