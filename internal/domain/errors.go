// Package domain provides shared domain-level errors and the API error taxonomy.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates the requested entity does not exist or is not owned
// by the caller. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a uniqueness violation.
var ErrConflict = errors.New("conflict: resource already exists")

// ErrValidation indicates semantically invalid input.
var ErrValidation = errors.New("validation failed")

// Error codes returned in the response envelope.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeRateLimited      = "RATE_LIMITED"
	CodeQuotaExceeded    = "QUOTA_EXCEEDED"
	CodeOpenRouterError  = "OPENROUTER_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Error is the single structured error type for known failures. Services
// raise it; the HTTP layer translates it centrally into the response
// envelope. Anything that is not a *Error collapses to 500 INTERNAL_ERROR.
type Error struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is makes errors.Is work against the matching sentinel so store-level
// checks and service-level coded errors stay interchangeable.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == CodeNotFound
	case ErrConflict:
		return e.Code == CodeConflict
	case ErrValidation:
		return e.Code == CodeValidationFailed
	}
	return false
}

// BadRequest builds a 400 BAD_REQUEST error for structurally invalid input.
func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: msg}
}

// ValidationFailed builds a 422 VALIDATION_FAILED error enumerating every
// offending field.
func ValidationFailed(details map[string]string) *Error {
	return &Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeValidationFailed,
		Message: "validation failed",
		Details: details,
	}
}

// Unauthorized builds a 401 UNAUTHORIZED error.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: msg}
}

// NotFound builds a 404 NOT_FOUND error. Used for both absent entities and
// entities owned by another user.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

// Conflict builds a 409 CONFLICT error.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Code: CodeConflict, Message: msg}
}

// RateLimited builds a 429 RATE_LIMITED error.
func RateLimited(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: msg}
}

// QuotaExceeded builds a 429 QUOTA_EXCEEDED error.
func QuotaExceeded(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeQuotaExceeded, Message: msg}
}

// OpenRouter builds a 500 OPENROUTER_ERROR for downstream model-provider
// failures surfaced after the failed run was persisted.
func OpenRouter(msg string) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeOpenRouterError, Message: msg}
}

// Internal builds a generic 500 INTERNAL_ERROR. The underlying cause is
// logged server-side, never leaked to the client.
func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternalError, Message: "internal server error"}
}
