package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a canonical API error returned by the revenue backend.
type Error struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status: %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	ErrInvalidRequest ErrorType = "invalid_request_error"
	ErrAuthentication ErrorType = "authentication_error"
	ErrPermission     ErrorType = "permission_error"
	ErrNotFound       ErrorType = "not_found_error"
	ErrRateLimit      ErrorType = "rate_limit_error"
	ErrAPI            ErrorType = "api_error"
	ErrStream         ErrorType = "stream_error"
)

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{Type: ErrInvalidRequest, Message: message}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *Error {
	return &Error{Type: ErrAuthentication, Message: message}
}

// NewStreamError creates an error for a failure reported inside an
// event stream (the backend emits an {"error": ...} frame mid-stream).
func NewStreamError(message string) *Error {
	return &Error{Type: ErrStream, Message: message}
}

// errorBody matches the FastAPI error envelope. Validation failures carry a
// structured detail list; everything else carries a plain string.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// ErrorFromResponse builds an Error from a non-2xx response. The message is
// taken from the body's "detail" field when parseable, otherwise a generic
// status-derived message is used.
func ErrorFromResponse(statusCode int, body []byte) *Error {
	e := &Error{
		Type:       errorTypeForStatus(statusCode),
		Message:    fmt.Sprintf("request failed with status %d", statusCode),
		StatusCode: statusCode,
	}

	var envelope errorBody
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return e
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		if detail = strings.TrimSpace(detail); detail != "" {
			e.Message = detail
		}
		return e
	}

	// Validation errors: [{"loc": [...], "msg": "...", ...}, ...]
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
		e.Message = items[0].Msg
	}
	return e
}

func errorTypeForStatus(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidRequest
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusForbidden:
		return ErrPermission
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimit
	default:
		return ErrAPI
	}
}

// IsRetryable returns true if the error is retryable.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrRateLimit:
		return true
	case ErrAPI:
		return e.StatusCode >= http.StatusInternalServerError
	default:
		return false
	}
}
