package core

import "net/http"

// ErrorCode is the closed set of semantic error kinds surfaced to callers,
// decoupled from raw HTTP status codes.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// AllErrorCodes lists every ErrorCode in declaration order.
var AllErrorCodes = []ErrorCode{
	CodeValidation,
	CodeUnauthorized,
	CodeForbidden,
	CodeNotFound,
	CodeTimeout,
	CodeRateLimited,
	CodeServiceUnavailable,
	CodeInternal,
}

// CodeForStatus maps an HTTP status code to its ErrorCode.
// Every status not listed falls through to CodeInternal.
func CodeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusRequestTimeout:
		return CodeTimeout
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	default:
		return CodeInternal
	}
}

// Valid reports whether c is a member of the closed set.
func (c ErrorCode) Valid() bool {
	for _, known := range AllErrorCodes {
		if c == known {
			return true
		}
	}
	return false
}

func (c ErrorCode) String() string {
	return string(c)
}
