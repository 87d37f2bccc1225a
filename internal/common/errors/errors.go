// Package errors provides standardized error handling for the chat pipeline.
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
	ErrCodeToolNotFound       ErrorCode = "TOOL_NOT_FOUND"
	ErrCodeInvalidParameters  ErrorCode = "INVALID_PARAMETERS"
	ErrCodeMalformedDirective ErrorCode = "MALFORMED_DIRECTIVE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeLookupExecutionFailed    ErrorCode = "LOOKUP_EXECUTION_FAILED"
	ErrCodeLookupTimeout            ErrorCode = "LOOKUP_TIMEOUT"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeConversationStoreFailed ErrorCode = "CONVERSATION_STORE_FAILED"

	ErrCodeLLMTimeout    ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMCallFailed ErrorCode = "LLM_CALL_FAILED"
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

// NewToolNotFoundError creates a non-retryable unknown-tool error.
func NewToolNotFoundError(toolName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolNotFound,
		Message:   "Requested tool is not registered",
		Details:   fmt.Sprintf("toolName: %s", toolName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidParametersError creates a non-retryable arity-mismatch error.
func NewInvalidParametersError(toolName string, want, got int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParameters,
		Message:   "Parameter count does not match tool arity",
		Details:   fmt.Sprintf("toolName: %s, want: %d, got: %d", toolName, want, got),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedDirectiveError creates a non-retryable directive parse error.
func NewMalformedDirectiveError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedDirective,
		Message:   "Model directive could not be parsed",
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

// NewLookupExecutionFailedError creates a retryable lookup execution error.
func NewLookupExecutionFailedError(toolName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLookupExecutionFailed,
		Message:   "Structured lookup execution error",
		Details:   fmt.Sprintf("toolName: %s, error: %s", toolName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLookupTimeoutError creates a retryable lookup timeout error.
func NewLookupTimeoutError(toolName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLookupTimeout,
		Message:   "Structured lookup timeout",
		Details:   fmt.Sprintf("toolName: %s", toolName),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Product search query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConversationStoreFailedError creates a retryable conversation log error.
func NewConversationStoreFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConversationStoreFailed,
		Message:   "Conversation log operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "Generative model call timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMCallFailedError creates a retryable LLM call error.
func NewLLMCallFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCallFailed,
		Message:   "Generative model API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
