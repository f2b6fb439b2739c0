// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	requestutil "github.com/taibuivan/famvault/internal/platform/request"
	"github.com/taibuivan/famvault/internal/platform/respond"
	"github.com/taibuivan/famvault/internal/vault"
	"github.com/taibuivan/famvault/pkg/pagination"
)

// multipartOverhead is the allowance for form fields and boundaries on top of the file.
const multipartOverhead = 1 << 20

// Handler implements the HTTP layer for vault documents.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler constructs a new document [Handler].
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes adds the document endpoints to router. The caller applies
// the session gate.
//
// # Endpoints
//   - GET  /overview, /documents, /medical-records, /reminders
//   - POST /upload
//   - GET  /documents/{id} (redirects to the file)
//   - POST /documents/{id}/reminder, /documents/{id}/delete
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/overview", handler.overview)
	router.Post("/upload", handler.upload)
	router.Get("/medical-records", handler.listMedicalRecords)
	router.Get("/reminders", handler.listReminders)

	router.Route("/documents", func(documents chi.Router) {
		documents.Get("/", handler.listDocuments)
		documents.Get("/{id}", handler.openDocument)
		documents.Post("/{id}/reminder", handler.setReminder)
		documents.Post("/{id}/delete", handler.deleteDocument)
	})
}

// # Queries

/*
GET /overview.

Description: Landing view after login: counts per category, recently opened
documents and upcoming reminders.
*/
func (handler *Handler) overview(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	overview, err := handler.service.Overview(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, overview)
}

/*
GET /documents.

Request:
  - category: string (document|medical, optional)
  - folderId: string (optional)
  - page, limit: int

Response:
  - 200: []Document: Paginated list, newest first
*/
func (handler *Handler) listDocuments(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{}
	query := request.URL.Query()

	if raw := query.Get("category"); raw != "" {
		category, err := vault.ParseCategory(raw, "")
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		filter.Category = &category
	}
	if folderID := query.Get("folderId"); folderID != "" {
		filter.FolderID = &folderID
	}

	handler.list(writer, request, filter)
}

// GET /medical-records lists documents of the medical category.
func (handler *Handler) listMedicalRecords(writer http.ResponseWriter, request *http.Request) {
	medical := vault.CategoryMedical
	filter := Filter{Category: &medical}

	if folderID := request.URL.Query().Get("folderId"); folderID != "" {
		filter.FolderID = &folderID
	}

	handler.list(writer, request, filter)
}

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request, filter Filter) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	page := pagination.FromRequest(request)

	documents, total, err := handler.service.List(request.Context(), userID, filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, documents, pagination.NewMeta(page.Page, page.Limit, total))
}

// GET /reminders lists upcoming reminders, soonest first.
func (handler *Handler) listReminders(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	documents, err := handler.service.Reminders(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, documents)
}

/*
GET /documents/{id}.

Response:
  - 302: Presigned download URL
  - 404: Not found or owned by someone else
*/
func (handler *Handler) openDocument(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	url, err := handler.service.Open(request.Context(), userID, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.Redirect(writer, request, url, http.StatusFound)
}

// # Mutations

/*
POST /upload.

Request (multipart/form-data):
  - file: The document
  - title, category, folderId: Optional metadata

Response:
  - 201: Document
  - 400: Missing file, unsupported type or bad metadata
  - 413: File larger than the configured limit
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxUploadBytes+multipartOverhead)
	if err := request.ParseMultipartForm(multipartOverhead); err != nil {
		respond.Error(writer, request, handler.uploadError(err))
		return
	}
	defer func() { _ = request.MultipartForm.RemoveAll() }()

	file, header, err := request.FormFile("file")
	if err != nil {
		respond.Error(writer, request, ErrMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > handler.maxUploadBytes {
		respond.Error(writer, request, handler.tooLarge())
		return
	}

	document, err := handler.service.Upload(request.Context(), userID, UploadInput{
		Title:    request.FormValue("title"),
		Category: request.FormValue("category"),
		FolderID: request.FormValue("folderId"),
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, document)
}

/*
POST /documents/{id}/reminder.

Request (Body):
  - ReminderInput JSON object

Response:
  - 200: Document after the update
*/
func (handler *Handler) setReminder(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ReminderInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	document, err := handler.service.SetReminder(request.Context(), userID, requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, document)
}

// POST /documents/{id}/delete removes the file and its metadata.
func (handler *Handler) deleteDocument(writer http.ResponseWriter, request *http.Request) {
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

// # Helpers

func (handler *Handler) tooLarge() error {
	return apperr.TooLarge(fmt.Sprintf("file: Maximum upload size is %d MB", handler.maxUploadBytes>>20))
}

func (handler *Handler) uploadError(err error) error {
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		return handler.tooLarge()
	}
	return ErrMissingFile
}
