package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a structured API error.
//
// The same value is produced by the backend API client when a call fails and
// written by this server's own handlers, so a backend failure can be
// re-emitted to the browser with its status and kind intact.
type APIError struct {
	StatusCode int               `json:"statusCode"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Detail     string            `json:"detail,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`

	cause error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API Error %d (%s): %s", e.StatusCode, e.Code, e.Message)

	if e.Detail != "" {
		msg += fmt.Sprintf(" - %s", e.Detail)
	}

	if len(e.Fields) > 0 {
		var fields []string
		for k, v := range e.Fields {
			fields = append(fields, fmt.Sprintf("%s=%s", k, v))
		}
		msg += fmt.Sprintf(" [fields: %s]", strings.Join(fields, ", "))
	}

	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}

	return msg
}

// Unwrap exposes the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// NewAPIError creates a new API error whose kind is derived from the status
func NewAPIError(status int, message string, detail ...string) *APIError {
	err := &APIError{
		StatusCode: status,
		Code:       CodeForStatus(status),
		Message:    message,
	}
	if len(detail) > 0 {
		err.Detail = detail[0]
	}
	return err
}

// WrapAPIError creates an API error with an explicit kind that wraps cause.
func WrapAPIError(status int, code ErrorCode, message string, cause error) *APIError {
	return &APIError{
		StatusCode: status,
		Code:       code,
		Message:    message,
		cause:      cause,
	}
}

// NewValidationError creates a new validation error with field details
func NewValidationError(message string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    message,
		Fields:     make(map[string]string),
	}
}

// AddField adds a field error to the APIError and returns the error for chaining
func (e *APIError) AddField(fieldName, fieldError string) *APIError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}

	// Repeated errors on one field are joined with " || "
	if existing, exists := e.Fields[fieldName]; exists && strings.TrimSpace(existing) != "" {
		e.Fields[fieldName] = existing + " || " + fieldError
	} else {
		e.Fields[fieldName] = fieldError
	}

	return e
}

// AsAPIError extracts the first APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Wrap returns a copy of e that carries cause, leaving e untouched.
func (e *APIError) Wrap(cause error) *APIError {
	wrapped := *e
	wrapped.cause = cause
	return &wrapped
}

// IsCode reports whether err carries an APIError of the given kind.
func IsCode(err error, code ErrorCode) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}

// Common API errors. They are templates: call Wrap to attach a cause, or use
// NewAPIError when a handler needs to attach detail.
var (
	ErrNotFound           = &APIError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: "Not Found"}
	ErrRateLimited        = &APIError{StatusCode: http.StatusTooManyRequests, Code: CodeRateLimited, Message: "Too Many Requests"}
	ErrServiceUnavailable = &APIError{StatusCode: http.StatusServiceUnavailable, Code: CodeServiceUnavailable, Message: "Service Unavailable"}
	ErrInternal           = &APIError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: "Internal Server Error"}
)
