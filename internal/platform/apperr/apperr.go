// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error taxonomy for FamVault.

Every controller operation returns either a value or an [*AppError]. The
AppError is the tagged "Err(kind, message)" half of that result: Code carries
the kind, Message the user-visible text, and the web boundary decides how a
kind is rendered (JSON envelope, redirect with a message, or a status page).

Kinds:

  - VALIDATION_ERROR: malformed or missing input, weak password.
  - NOT_FOUND: unknown email or resource.
  - CONFLICT: duplicate verified identity.
  - INVALID_CREDENTIALS: wrong password or wrong one-time code.
  - NOT_VERIFIED: login attempted before email verification.
  - EXPIRED: one-time code window elapsed.
  - DELIVERY_FAILED: email transport failure.
  - UNAUTHORIZED: missing or invalid session token.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Kept as constants so the boundary layer can switch on them.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeCredentials  = "INVALID_CREDENTIALS"
	CodeNotVerified  = "NOT_VERIFIED"
	CodeExpired      = "EXPIRED"
	CodeDelivery     = "DELIVERY_FAILED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeRateLimited  = "RATE_LIMITED"
	CodeTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// AppError is the canonical error type for the FamVault server.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients.
type AppError struct {
	// Code is a machine-readable error kind (e.g. "NOT_FOUND", "CONFLICT").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Document") // Returns "Document not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError] for a missing or invalid session.
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// InvalidCredentials creates a 401 [AppError] for a wrong password or code.
func InvalidCredentials(msg string) *AppError {
	return &AppError{
		Code:       CodeCredentials,
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NotVerified creates a 403 [AppError] for identities that have not confirmed their email.
func NotVerified(msg string) *AppError {
	return &AppError{
		Code:       CodeNotVerified,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// Expired creates a 410 [AppError] for time-boxed secrets that are no longer valid.
func Expired(msg string) *AppError {
	return &AppError{
		Code:       CodeExpired,
		Message:    msg,
		HTTPStatus: http.StatusGone,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// TooLarge creates a 413 [AppError].
func TooLarge(msg string) *AppError {
	return &AppError{
		Code:       CodeTooLarge,
		Message:    msg,
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Delivery creates a 502 [AppError] for a failed outbound email.
func Delivery(cause error) *AppError {
	return &AppError{
		Code:       CodeDelivery,
		Message:    "We could not send the email right now. Please try again.",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] of the given kind.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
