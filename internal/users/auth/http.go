// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/constants"
	"github.com/taibuivan/famvault/internal/platform/middleware"
	requestutil "github.com/taibuivan/famvault/internal/platform/request"
	"github.com/taibuivan/famvault/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the form-driven auth endpoints.
//
// # Scope
//
// Every outcome is a redirect carrying a human-readable message, or a plain
// status page for server-side failures. There is no JSON contract here.
type Handler struct {
	authService  *Service
	cookieSecure bool
}

// NewHandler constructs a new [Handler]. cookieSecure sets the Secure flag on
// the session cookie; it is off by default because plain HTTP is assumed.
func NewHandler(service *Service, cookieSecure bool) *Handler {
	return &Handler{authService: service, cookieSecure: cookieSecure}
}

// Routes returns a [chi.Router] with the auth routes. protect wraps the
// routes that need a signed-in user.
//
// # Endpoints
//   - GET  /register, /login, /verify-otp, /forgot-password, /reset-password
//   - POST /register, /verify-otp, /resend-otp, /login, /forgot-password, /update-password
//   - POST /change-password (protected)
//   - GET  /logout
func (handler *Handler) Routes(protect func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.Get(PathRegister, handler.anonymousPage("Create your FamVault account"))
	router.Get(PathLogin, handler.anonymousPage("Log in to FamVault"))
	router.Get(PathVerifyOTP, handler.page("Enter the code we emailed you"))
	router.Get(PathForgotPassword, handler.page("Reset your password"))
	router.Get(PathResetPassword, handler.page("Choose a new password"))

	router.Post(PathRegister, handler.register)
	router.Post(PathVerifyOTP, handler.verifyOTP)
	router.Post("/resend-otp", handler.resendOTP)
	router.Post(PathLogin, handler.login)
	router.Post(PathForgotPassword, handler.forgotPassword)
	router.Post("/update-password", handler.updatePassword)
	router.Get("/logout", handler.logout)

	router.Group(func(r chi.Router) {
		r.Use(protect)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// RejectSession is the response for a request the session gate refused:
// the cookie is cleared and the client is sent to the login page.
func (handler *Handler) RejectSession(writer http.ResponseWriter, request *http.Request, err error) {
	middleware.ClearSessionCookie(writer, handler.cookieSecure)

	message := ""
	if appError := apperr.As(err); appError != nil {
		message = appError.Message
	}
	respond.Redirect(writer, request, PathLogin, message)
}

// # Pages

// page renders a plain status page showing the message query parameter.
func (handler *Handler) page(title string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		body := title
		if message := request.URL.Query().Get(respond.MessageParam); message != "" {
			body += "\n" + message
		}
		respond.Page(writer, http.StatusOK, body)
	}
}

// anonymousPage is a page that sends clients holding a session cookie home.
func (handler *Handler) anonymousPage(title string) http.HandlerFunc {
	render := handler.page(title)
	return func(writer http.ResponseWriter, request *http.Request) {
		if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
			http.Redirect(writer, request, PathHome, http.StatusFound)
			return
		}
		render(writer, request)
	}
}

// # Registration

/*
register handles the sign-up form.

POST /register

Request:
  - Form: name, email, password

Response:
  - 302 /verify-otp?email=..: Code sent
  - 302 /login: Email already verified
  - 302 /register: Validation failure
  - 502: Code stored but the email could not be sent
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.fail(writer, request, err, PathRegister)
		return
	}

	email := requestutil.Form(request, FieldEmail)
	_, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:     requestutil.Form(request, FieldName),
		Email:    email,
		Password: requestutil.Secret(request, FieldPassword),
	})

	switch {
	case err == nil:
		respond.Redirect(writer, request, withEmail(PathVerifyOTP, email), "We sent a verification code to your email")
	case errors.Is(err, ErrAlreadyVerified):
		respond.Redirect(writer, request, PathLogin, err.Error())
	default:
		handler.fail(writer, request, err, PathRegister)
	}
}

/*
verifyOTP confirms the registration code.

POST /verify-otp

Request:
  - Form: email, otp

Response:
  - 302 /login: Verified
  - 302 /register: Code expired (account removed) or unknown email
  - 302 /verify-otp?email=..: Wrong code
*/
func (handler *Handler) verifyOTP(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.fail(writer, request, err, PathVerifyOTP)
		return
	}

	email := requestutil.Form(request, FieldEmail)
	_, err := handler.authService.VerifyOTP(request.Context(), email, requestutil.Form(request, FieldOTP))

	switch {
	case err == nil:
		respond.Redirect(writer, request, PathLogin, "Verified! You can now login.")
	case errors.Is(err, ErrCodeExpired), errors.Is(err, ErrUserNotFound):
		respond.Redirect(writer, request, PathRegister, err.Error())
	case errors.Is(err, ErrAccountVerified):
		respond.Redirect(writer, request, PathLogin, err.Error())
	default:
		handler.fail(writer, request, err, withEmail(PathVerifyOTP, email))
	}
}

/*
resendOTP replaces the registration code.

POST /resend-otp

Request:
  - Form: email

Response:
  - 302 /verify-otp?email=..: New code sent, or why not
*/
func (handler *Handler) resendOTP(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.fail(writer, request, err, PathVerifyOTP)
		return
	}

	email := requestutil.Form(request, FieldEmail)
	_, err := handler.authService.ResendOTP(request.Context(), email)

	switch {
	case err == nil:
		respond.Redirect(writer, request, withEmail(PathVerifyOTP, email), "A new code has been sent to your email")
	case errors.Is(err, ErrAccountVerified):
		respond.Redirect(writer, request, PathLogin, err.Error())
	case errors.Is(err, ErrUserNotFound):
		respond.Redirect(writer, request, PathRegister, err.Error())
	default:
		handler.fail(writer, request, err, withEmail(PathVerifyOTP, email))
	}
}

// # Session

/*
login authenticates and sets the session cookie.

POST /login

Request:
  - Form: email, password

Response:
  - 302 /overview: Session established
  - 302 /login: Unknown email, unverified account or wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.fail(writer, request, err, PathLogin)
		return
	}

	result, err := handler.authService.Login(
		request.Context(),
		requestutil.Form(request, FieldEmail),
		requestutil.Secret(request, FieldPassword),
	)
	if err != nil {
		handler.fail(writer, request, err, PathLogin)
		return
	}

	middleware.SetSessionCookie(writer, result.Token, int(handler.authService.SessionTTL().Seconds()), handler.cookieSecure)
	respond.Redirect(writer, request, PathHome, "")
}

/*
logout clears the session cookie.

GET /logout

Description: Tokens are not tracked server-side, so ending the session is
purely a client-side cookie removal.
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	middleware.ClearSessionCookie(writer, handler.cookieSecure)
	respond.Redirect(writer, request, PathLogin, "")
}

// # Password Recovery

/*
forgotPassword emails a reset code.

POST /forgot-password

Request:
  - Form: email

Response:
  - 302 /reset-password?email=..: Code sent
  - 302 /forgot-password: Unknown or unverified email, or throttled
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.fail(writer, request, err, PathForgotPassword)
		return
	}

	email := requestutil.Form(request, FieldEmail)
	if _, err := handler.authService.ForgotPassword(request.Context(), email); err != nil {
		handler.fail(writer, request, err, PathForgotPassword)
		return
	}

	respond.Redirect(writer, request, withEmail(PathResetPassword, email), "We sent a reset code to your email")
}

/*
updatePassword completes a password reset.

POST /update-password

Request:
  - Form: email, otp, newPassword, confirmPassword

Response:
  - 302 /login: Password updated
  - 302 /forgot-password: Code expired
  - 302 /reset-password?email=..: Wrong code or invalid password
*/
func (handler *Handler) updatePassword(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.fail(writer, request, err, PathResetPassword)
		return
	}

	email := requestutil.Form(request, FieldEmail)
	err := handler.authService.ResetPassword(request.Context(), ResetPasswordInput{
		Email:           email,
		OTP:             requestutil.Form(request, FieldOTP),
		NewPassword:     requestutil.Secret(request, FieldNewPassword),
		ConfirmPassword: requestutil.Secret(request, FieldConfirmPassword),
	})

	switch {
	case err == nil:
		respond.Redirect(writer, request, PathLogin, "Password updated. Please log in.")
	case errors.Is(err, ErrResetCodeExpired):
		respond.Redirect(writer, request, PathForgotPassword, err.Error())
	default:
		handler.fail(writer, request, err, withEmail(PathResetPassword, email))
	}
}

/*
changePassword updates the signed-in user's password.

POST /change-password

Request:
  - Form: currentPassword, newPassword, confirmPassword

Response:
  - 302 /profile: Changed, or why not
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredSession(request)
	if err != nil {
		handler.RejectSession(writer, request, err)
		return
	}

	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.fail(writer, request, err, PathProfile)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), ChangePasswordInput{
		UserID:          claims.UserID,
		CurrentPassword: requestutil.Secret(request, FieldCurrentPassword),
		NewPassword:     requestutil.Secret(request, FieldNewPassword),
		ConfirmPassword: requestutil.Secret(request, FieldConfirmPassword),
	})
	if err != nil {
		handler.fail(writer, request, err, PathProfile)
		return
	}

	respond.Redirect(writer, request, PathProfile, "Password changed successfully")
}

// # Helpers

// fail sends client errors back to the originating form with their message.
// Server-side failures (including email delivery) render a status page.
func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error, target string) {
	appError := respond.Classify(request, err)
	if appError.HTTPStatus >= http.StatusInternalServerError {
		respond.Page(writer, appError.HTTPStatus, appError.Message)
		return
	}
	respond.Redirect(writer, request, target, appError.Message)
}

// withEmail carries the email to the next form of the flow.
func withEmail(path, email string) string {
	if email == "" {
		return path
	}
	return path + "?" + url.Values{FieldEmail: {email}}.Encode()
}
