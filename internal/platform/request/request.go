// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/sec"
	"github.com/taibuivan/famvault/internal/platform/validate"
)

// maxFormBytes bounds url-encoded form bodies. Multipart uploads set their own limit.
const maxFormBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ParseForm parses a url-encoded or multipart-free form body.

Returns:
  - error: validate.ErrInvalidForm if the body is malformed or too large
*/
func ParseForm(writer http.ResponseWriter, request *http.Request) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxFormBytes)
	if err := request.ParseForm(); err != nil {
		return validate.ErrInvalidForm
	}
	return nil
}

/*
Form returns the trimmed value of a posted form field.

Passwords are read with [Secret] instead, since surrounding spaces are significant.
*/
func Form(request *http.Request, name string) string {
	return strings.TrimSpace(request.PostFormValue(name))
}

// Secret returns a posted form field verbatim.
func Secret(request *http.Request, name string) string {
	return request.PostFormValue(name)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Session extracts the authenticated session claims from the request context.

Returns nil if the request is not authenticated.
*/
func Session(request *http.Request) *sec.SessionClaims {
	return ctxutil.GetSession(request.Context())
}

/*
RequiredSession ensures the request is authenticated and returns the claims.

Returns:
  - *sec.SessionClaims: The authenticated identity
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredSession(request *http.Request) (*sec.SessionClaims, error) {

	// Get session claims
	claims := ctxutil.GetSession(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredSession(request)
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}
