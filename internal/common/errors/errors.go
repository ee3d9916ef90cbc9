// Package errors provides standardized error handling for the chatbot request pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeAuthFailure          ErrorCode = "AUTH_FAILURE"
	ErrCodeAuthorizationExpired ErrorCode = "AUTHORIZATION_EXPIRED"

	ErrCodeToolFailure     ErrorCode = "TOOL_FAILURE"
	ErrCodeToolTimeout     ErrorCode = "TOOL_TIMEOUT"
	ErrCodeToolBadResponse ErrorCode = "TOOL_BAD_RESPONSE"

	ErrCodeRetrievalFailure     ErrorCode = "RETRIEVAL_FAILURE"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeLLMFailure           ErrorCode = "LLM_FAILURE"
	ErrCodeLLMTimeout           ErrorCode = "LLM_TIMEOUT"

	ErrCodeUnknownConcept ErrorCode = "UNKNOWN_CONCEPT"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheFailure             ErrorCode = "CACHE_FAILURE"
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

// AsStandardError unwraps err into a *StandardError if it is one.
func AsStandardError(err error) (*StandardError, bool) {
	stdErr, ok := err.(*StandardError)
	return stdErr, ok
}

// ==========================
// 2. Error Constructors
// ==========================

// NewAuthFailureError creates a non-retryable credential error. Refreshing the
// token does not help when the credentials themselves are rejected.
func NewAuthFailureError(appID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthFailure,
		Message:   "Token acquisition failed",
		Details:   fmt.Sprintf("appId: %s, error: %s", appID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthorizationExpiredError signals that a cached token was rejected by the
// backend and a refresh-and-retry cycle already ran once.
func NewAuthorizationExpiredError(url string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthorizationExpired,
		Message:   "Backend rejected token after refresh",
		Details:   fmt.Sprintf("url: %s", url),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolFailureError creates a retryable backend tool error.
func NewToolFailureError(tool string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolFailure,
		Message:   fmt.Sprintf("Backend tool '%s' call failed", tool),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolTimeoutError creates a retryable backend tool timeout error.
func NewToolTimeoutError(tool string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolTimeout,
		Message:   fmt.Sprintf("Backend tool '%s' timed out", tool),
		Details:   "call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolBadResponseError creates a non-retryable malformed response error.
func NewToolBadResponseError(tool string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolBadResponse,
		Message:   fmt.Sprintf("Backend tool '%s' returned a malformed response", tool),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetrievalFailureError creates a retryable vector retrieval error.
func NewRetrievalFailureError(concept string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetrievalFailure,
		Message:   "Policy document retrieval failed",
		Details:   fmt.Sprintf("concept: %s, error: %s", concept, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError creates a retryable intent classification error.
// Callers are expected to fall back to the general intent instead of failing.
func NewClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Intent classification error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMFailureError creates a retryable completion API error.
func NewLLMFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMFailure,
		Message:   "Language model API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable completion timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Language model call timed out",
		Details:   "completion exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownConceptError creates a non-retryable concept validation error.
func NewUnknownConceptError(concept string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownConcept,
		Message:   "Unknown retail concept",
		Details:   fmt.Sprintf("concept: %s", concept),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(target string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   fmt.Sprintf("target: %s, error: %s", target, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheFailureError creates a retryable cache backend error.
func NewCacheFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheFailure,
		Message:   "Response cache backend error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryableError reports whether err carries a retryable StandardError.
func IsRetryableError(err error) bool {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Retryable
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "AUTH"):
		return "AUTH"
	case strings.Contains(codeStr, "TOOL"):
		return "TOOL"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CACHE"):
		return "STORAGE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "RETRIEVAL"):
		return "SEARCH"
	case strings.Contains(codeStr, "LLM") || strings.Contains(codeStr, "CLASSIFICATION"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "UNKNOWN"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
