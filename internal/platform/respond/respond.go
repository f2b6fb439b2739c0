// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses. Vault
// endpoints answer with a strict JSON envelope; the form-driven auth flows
// answer with a redirect carrying a human-readable message, or a plain
// status page. Handlers pick the rendering, never the status mapping.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/pkg/pagination"
)

// MessageParam is the query parameter that carries a status message on redirects.
const MessageParam = "message"

// SuccessEnvelope is the JSON envelope for successful single-resource responses.
type SuccessEnvelope struct {
	Data interface{} `json:"data"`
}

// PaginatedEnvelope is the JSON envelope for paginated list responses.
type PaginatedEnvelope struct {
	Data interface{}     `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, data interface{}) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// Paginated writes a 200 OK response with paginated data and a metadata block.
func Paginated(writer http.ResponseWriter, data interface{}, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Data: data, Meta: metadata})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Redirect sends a 302 to target, appending message as a query parameter
// when it is not empty.
//
// Example:
//
//	respond.Redirect(w, r, "/login", "Registration successful") // /login?message=Registration+successful
func Redirect(writer http.ResponseWriter, request *http.Request, target, message string) {
	if message != "" {
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target += separator + url.Values{MessageParam: {message}}.Encode()
	}
	http.Redirect(writer, request, target, http.StatusFound)
}

// Page writes a plain-text status page.
func Page(writer http.ResponseWriter, statusCode int, message string) {
	writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	writer.Header().Set("X-Content-Type-Options", "nosniff")
	writer.WriteHeader(statusCode)
	_, _ = writer.Write([]byte(message + "\n"))
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := Classify(request, err)

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}

// ErrorPage renders err as a plain status page instead of a JSON envelope.
func ErrorPage(writer http.ResponseWriter, request *http.Request, err error) {
	appError := Classify(request, err)
	Page(writer, appError.HTTPStatus, appError.Message)
}

// Classify resolves err to an [apperr.AppError], logging anything that maps
// to a server-side failure. Unknown errors become INTERNAL_ERROR so their
// text never reaches the client.
func Classify(request *http.Request, err error) *apperr.AppError {
	logger := ctxutil.GetLogger(request.Context())

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	return appError
}
