// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/famvault/internal/platform/request"
	"github.com/taibuivan/famvault/internal/platform/respond"
)

// Handler implements the HTTP layer for emergency contacts.
type Handler struct {
	service *Service
}

// NewHandler constructs a new contact [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the contact endpoints. The caller mounts
// it behind the session gate.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listContacts)
	router.Post("/", handler.createContact)
	router.Post("/{id}/delete", handler.deleteContact)

	return router
}

/*
GET /emergency-contacts.

Response:
  - 200: []Contact: Emergency services first
*/
func (handler *Handler) listContacts(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contacts, err := handler.service.List(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, contacts)
}

/*
POST /emergency-contacts.

Request (Body):
  - CreateInput JSON object

Response:
  - 201: Contact: Created object
  - 400: Validation failure
*/
func (handler *Handler) createContact(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.Create(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, contact)
}

/*
POST /emergency-contacts/{id}/delete.

Response:
  - 204: Deleted
  - 404: Not found or owned by someone else
*/
func (handler *Handler) deleteContact(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), userID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
