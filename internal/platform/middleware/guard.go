// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/constants"
	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/sec"
)

// Guard is a predicate evaluated before a protected handler.
//
// It returns the context the next guard (and finally the handler) runs with,
// or an error that stops the chain. Guards never write to the response.
type Guard func(request *http.Request) (context.Context, error)

// RejectFunc renders the response for a request a guard refused.
type RejectFunc func(writer http.ResponseWriter, request *http.Request, err error)

// SessionVerifier resolves a session token to the identity it asserts.
//
// Defining it here keeps the middleware free of the auth flow and lets tests
// inject a stub.
type SessionVerifier interface {
	Authenticate(context context.Context, token string) (*sec.SessionClaims, error)
}

// Protect evaluates guards in order and calls next only if all of them pass.
//
// # Flow
//  1. Each guard sees the context produced by the previous one.
//  2. The first error short-circuits to onReject.
//  3. The handler runs with the context of the last guard.
func Protect(onReject RejectFunc, guards ...Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			for _, guard := range guards {
				ctx, err := guard(request)
				if err != nil {
					onReject(writer, request, err)
					return
				}
				request = request.WithContext(ctx)
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// SessionGuard admits requests carrying a valid session cookie.
//
// The verified claims are stored in the context and the request logger is
// enriched with the user id.
func SessionGuard(verifier SessionVerifier) Guard {
	return func(request *http.Request) (context.Context, error) {
		cookie, err := request.Cookie(constants.SessionCookieName)
		if err != nil || cookie.Value == "" {
			return nil, apperr.Unauthorized("Please log in")
		}

		claims, err := verifier.Authenticate(request.Context(), cookie.Value)
		if err != nil {
			var appError *apperr.AppError
			if errors.As(err, &appError) {
				return nil, appError
			}
			return nil, apperr.Unauthorized("Session expired, please log in again")
		}

		ctx := ctxutil.WithSession(request.Context(), claims)
		logger := ctxutil.GetLogger(ctx).With(slog.String("user_id", claims.UserID))
		return ctxutil.WithLogger(ctx, logger), nil
	}
}

// SetSessionCookie stores a signed session token on the client.
//
// # Security
//
// The cookie is HttpOnly and SameSite=Lax. Secure is opt-in through
// configuration because the service may be served over plain HTTP.
func SetSessionCookie(writer http.ResponseWriter, token string, maxAgeSeconds int, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(writer http.ResponseWriter, secure bool) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
