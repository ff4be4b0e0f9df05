// Package apperr defines the typed errors domain services raise. Each error
// carries a stable machine-readable code and the HTTP status it maps to, so
// the boundary layer can translate it into the uniform error envelope
// without inspecting internals.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error type surfaced across service boundaries.
type Error struct {
	Code    string
	Message string
	Status  int
	Details []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches an underlying error without changing the public shape.
func (e *Error) WithCause(err error) *Error {
	clone := *e
	clone.cause = err
	return &clone
}

// WithDetails attaches field-level validation details.
func (e *Error) WithDetails(details []FieldError) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// New constructs an application error.
func New(status int, code, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// NotFound builds the entity-specific not-found error. "Belongs to another
// tenant" and "does not exist" intentionally share this one code.
func NotFound(entity string) *Error {
	return New(fiber.StatusNotFound, fmt.Sprintf("%s_NOT_FOUND", entity), fmt.Sprintf("%s not found", entity))
}

// Conflict builds a domain conflict error such as a duplicate unique field.
func Conflict(code, message string) *Error {
	return New(fiber.StatusConflict, code, message)
}

// Validation builds a 422 error with field details.
func Validation(details []FieldError) *Error {
	return New(fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "request validation failed").WithDetails(details)
}

// Shared sentinel errors reused across services.
var (
	ErrUnauthorized      = New(fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
	ErrInvalidCredential = New(fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	ErrPermissionDenied  = New(fiber.StatusForbidden, "PERMISSION_DENIED", "insufficient permissions")
	ErrTenantRequired    = New(fiber.StatusBadRequest, "TENANT_REQUIRED", "tenant context is required")
	ErrCSRF              = New(fiber.StatusForbidden, "CSRF_VALIDATION_FAILED", "csrf validation failed")
	ErrRateLimited       = New(fiber.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests")
	ErrInternal          = New(fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
)

// From extracts an *Error from err, falling back to ErrInternal so no raw
// internal error ever reaches the client.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err)
}
