// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package folder

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/famvault/internal/platform/request"
	"github.com/taibuivan/famvault/internal/platform/respond"
	"github.com/taibuivan/famvault/internal/vault"
)

// Handler implements the HTTP layer for folders.
type Handler struct {
	service *Service
}

// NewHandler constructs a new folder [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the folder endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listFolders)
	router.Post("/", handler.createFolder)
	router.Post("/{id}/delete", handler.deleteFolder)

	return router
}

/*
GET /folders.

Request:
  - category: string (document|medical, optional)

Response:
  - 200: []Folder
*/
func (handler *Handler) listFolders(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var category *vault.Category
	if raw := request.URL.Query().Get("category"); raw != "" {
		parsed, err := vault.ParseCategory(raw, "")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		category = &parsed
	}

	folders, err := handler.service.List(request.Context(), userID, category)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, folders)
}

/*
POST /folders.

Request (Body):
  - CreateInput JSON object

Response:
  - 201: Folder
  - 400: Validation failure
*/
func (handler *Handler) createFolder(writer http.ResponseWriter, request *http.Request) {
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

	folder, err := handler.service.Create(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, folder)
}

/*
POST /folders/{id}/delete.

Response:
  - 204: Deleted, documents detached
  - 404: Not found or owned by someone else
*/
func (handler *Handler) deleteFolder(writer http.ResponseWriter, request *http.Request) {
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
