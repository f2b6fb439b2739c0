// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/famvault/internal/platform/middleware"
	requestutil "github.com/taibuivan/famvault/internal/platform/request"
	"github.com/taibuivan/famvault/internal/platform/respond"
	"github.com/taibuivan/famvault/internal/users/auth"
)

// Handler implements the HTTP layer for profile management.
type Handler struct {
	accountService *Service
	cookieSecure   bool
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, cookieSecure bool) *Handler {
	return &Handler{accountService: service, cookieSecure: cookieSecure}
}

// RegisterRoutes adds the account endpoints to router. The caller applies
// the session gate.
//
// # Endpoints
//   - GET  /profile, /emergency-mode
//   - POST /profile, /delete-account
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get(auth.PathProfile, handler.getProfile)
	router.Post(auth.PathProfile, handler.updateProfile)
	router.Get("/emergency-mode", handler.emergencyMode)
	router.Post("/delete-account", handler.deleteAccount)
}

// # Profile

/*
GET /profile.

Response:
  - 200: Profile
  - 401: No session
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
POST /profile.

Description: Only the fields present in the form are changed.

Request (Form):
  - name, phone, dob, gender, bloodGroup, address, allergies, conditions, profilePic

Response:
  - 302: /profile with a status message
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		handler.fail(writer, request, err, auth.PathLogin)
		return
	}

	if err := requestutil.ParseForm(writer, request); err != nil {
		handler.fail(writer, request, err, auth.PathProfile)
		return
	}

	patch := ProfilePatch{
		Name:        posted(request, FieldName),
		Phone:       posted(request, FieldPhone),
		DateOfBirth: posted(request, FieldDateOfBirth),
		Gender:      posted(request, FieldGender),
		BloodGroup:  posted(request, FieldBloodGroup),
		Address:     posted(request, FieldAddress),
		Allergies:   posted(request, FieldAllergies),
		Conditions:  posted(request, FieldConditions),
		ProfilePic:  posted(request, FieldProfilePic),
	}

	if _, err := handler.accountService.UpdateProfile(request.Context(), userID, patch); err != nil {
		handler.fail(writer, request, err, auth.PathProfile)
		return
	}

	respond.Redirect(writer, request, auth.PathProfile, "Profile updated successfully")
}

// # Emergency Mode

// GET /emergency-mode returns the emergency card of the signed-in user.
func (handler *Handler) emergencyMode(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	card, err := handler.accountService.EmergencyCard(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, card)
}

// # Account Removal

// POST /delete-account deletes the user, clears the session and goes to /login.
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		handler.fail(writer, request, err, auth.PathLogin)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), userID); err != nil {
		handler.fail(writer, request, err, auth.PathProfile)
		return
	}

	middleware.ClearSessionCookie(writer, handler.cookieSecure)
	respond.Redirect(writer, request, auth.PathLogin, "Your account has been deleted")
}

// # Helpers

func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error, target string) {
	appError := respond.Classify(request, err)
	if appError.HTTPStatus >= http.StatusInternalServerError {
		respond.Page(writer, appError.HTTPStatus, appError.Message)
		return
	}
	respond.Redirect(writer, request, target, appError.Message)
}

// posted returns the form value of name, or nil when the field was not sent.
func posted(request *http.Request, name string) *string {
	if _, ok := request.PostForm[name]; !ok {
		return nil
	}
	value := request.PostForm.Get(name)
	return &value
}
