// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/storage"
	"github.com/taibuivan/famvault/internal/platform/validate"
	"github.com/taibuivan/famvault/internal/vault"
	"github.com/taibuivan/famvault/pkg/slug"
	"github.com/taibuivan/famvault/pkg/uuid"
)

const (
	// DownloadURLTTL is how long a presigned download link stays valid.
	DownloadURLTTL = 15 * time.Minute

	maxTitleLength        = 200
	maxReminderNoteLength = 200

	overviewRecentLimit   = 5
	overviewReminderLimit = 5
	reminderListLimit     = 50
	emergencyTitleLimit   = 100
)

// allowedTypes maps accepted file extensions to their stored content type.
var allowedTypes = map[string]string{
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
	"txt":  "text/plain",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Service manages vault documents and their blobs.
type Service struct {
	repository Repository
	blobs      BlobStore
	folders    FolderLookup
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, blobs BlobStore, folders FolderLookup) *Service {
	return &Service{
		repository: repository,
		blobs:      blobs,
		folders:    folders,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// # Upload

// UploadInput is a parsed upload form.
type UploadInput struct {
	Title    string
	Category string
	FolderID string
	Filename string
	Size     int64
	Body     io.ReadSeeker
}

/*
Upload stores a file and its metadata.

Description: A blank title falls back to the file name. A folder, when given,
must belong to the user and share the document's category.

Returns:
  - *Document: The stored document
  - error: Validation errors, ErrFolderNotFound or storage failures
*/
func (service *Service) Upload(context context.Context, userID string, input UploadInput) (*Document, error) {
	if input.Body == nil || input.Filename == "" {
		return nil, ErrMissingFile
	}
	if input.Size <= 0 {
		return nil, ErrEmptyFile
	}

	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.Filename)), ".")
	contentType, ok := allowedTypes[fileType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input.Filename), filepath.Ext(input.Filename))
	}
	if err := (&validate.Validator{}).MaxLen("title", title, maxTitleLength).Err(); err != nil {
		return nil, err
	}

	category, err := vault.ParseCategory(input.Category, vault.CategoryDocument)
	if err != nil {
		return nil, err
	}

	var folderID *string
	if id := strings.TrimSpace(input.FolderID); id != "" {
		target, err := service.folders.Get(context, userID, id)
		if err != nil {
			return nil, err
		}
		if target.Category != category {
			return nil, ErrFolderCategory
		}
		folderID = &target.ID
	}

	document := &Document{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        title,
		Category:     category,
		FolderID:     folderID,
		StorageKey:   storage.NewKey(userID, service.now()),
		OriginalName: filepath.Base(input.Filename),
		FileType:     fileType,
		Size:         input.Size,
	}

	if err := service.blobs.Put(context, document.StorageKey, contentType, input.Body, input.Size); err != nil {
		return nil, fmt.Errorf("document_service_blob_put_failed: %w", err)
	}

	if err := service.repository.Create(context, document); err != nil {
		if cleanupErr := service.blobs.Delete(context, document.StorageKey); cleanupErr != nil {
			ctxutil.GetLogger(context).ErrorContext(context, "document_orphaned_blob",
				slog.String("storage_key", document.StorageKey),
				slog.Any("error", cleanupErr),
			)
		}
		return nil, fmt.Errorf("document_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "document_uploaded",
		slog.String("document_id", document.ID),
		slog.String("category", string(category)),
		slog.Int64("size", document.Size),
	)
	return document, nil
}

// # Queries

// List returns a page of documents matching filter.
func (service *Service) List(context context.Context, userID string, filter Filter, limit, offset int) ([]*Document, int, error) {
	if filter.FolderID != nil && (&validate.Validator{}).UUID("folderId", *filter.FolderID).HasErrors() {
		return []*Document{}, 0, nil
	}

	documents, total, err := service.repository.List(context, userID, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("document_service_list_failed: %w", err)
	}
	return documents, total, nil
}

// Titles returns the newest documents of one category, at most
// emergencyTitleLimit of them. Used by the emergency view.
func (service *Service) Titles(context context.Context, userID string, category vault.Category) ([]*Document, error) {
	documents, _, err := service.repository.List(context, userID, Filter{Category: &category}, emergencyTitleLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("document_service_titles_failed: %w", err)
	}
	return documents, nil
}

/*
Open resolves a document to a presigned download URL and records the access.

Returns:
  - string: URL valid for DownloadURLTTL
  - error: ErrDocumentNotFound or storage failures
*/
func (service *Service) Open(context context.Context, userID, id string) (string, error) {
	document, err := service.find(context, userID, id)
	if err != nil {
		return "", err
	}

	url, err := service.blobs.PresignGet(context, document.StorageKey, downloadName(document), DownloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("document_service_presign_failed: %w", err)
	}

	if err := service.repository.Touch(context, userID, id, service.now()); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "document_touch_failed",
			slog.String("document_id", id),
			slog.Any("error", err),
		)
	}
	return url, nil
}

// Reminders returns the upcoming reminders of userID, starting today.
func (service *Service) Reminders(context context.Context, userID string) ([]*Document, error) {
	return service.upcoming(context, userID, reminderListLimit)
}

// Overview assembles the landing view shown after login.
func (service *Service) Overview(context context.Context, userID string) (*Overview, error) {
	counts, err := service.repository.Count(context, userID)
	if err != nil {
		return nil, fmt.Errorf("document_service_overview_counts_failed: %w", err)
	}

	recent, err := service.repository.ListRecent(context, userID, overviewRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("document_service_overview_recent_failed: %w", err)
	}

	reminders, err := service.upcoming(context, userID, overviewReminderLimit)
	if err != nil {
		return nil, err
	}

	return &Overview{Counts: counts, Recent: recent, Reminders: reminders}, nil
}

// # Mutations

// ReminderInput is a reminder form. Date is YYYY-MM-DD.
type ReminderInput struct {
	Enabled bool   `json:"hasReminder"`
	Date    string `json:"reminderDate"`
	Note    string `json:"reminderNote"`
}

/*
SetReminder sets or clears the reminder of a document.

Description: Disabling a reminder drops its date and note. Past dates are
accepted; they simply never show up as upcoming.
*/
func (service *Service) SetReminder(context context.Context, userID, id string, input ReminderInput) (*Document, error) {
	if _, err := service.find(context, userID, id); err != nil {
		return nil, err
	}

	reminder := Reminder{Enabled: input.Enabled}
	if input.Enabled {
		note := strings.TrimSpace(input.Note)
		date := strings.TrimSpace(input.Date)

		validator := &validate.Validator{}
		validator.Date("reminderDate", date).MaxLen("reminderNote", note, maxReminderNoteLength)
		if err := validator.Err(); err != nil {
			return nil, err
		}
		if date == "" {
			return nil, ErrReminderDate
		}

		parsed, _ := time.Parse(time.DateOnly, date)
		reminder.Date = &parsed
		reminder.Note = note
	}

	document, err := service.repository.SetReminder(context, userID, id, reminder)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("document_service_set_reminder_failed: %w", err)
	}
	return document, nil
}

// Delete removes the blob, then the row, of a document owned by userID.
func (service *Service) Delete(context context.Context, userID, id string) error {
	document, err := service.find(context, userID, id)
	if err != nil {
		return err
	}

	if err := service.blobs.Delete(context, document.StorageKey); err != nil {
		return fmt.Errorf("document_service_blob_delete_failed: %w", err)
	}

	if err := service.repository.Delete(context, userID, id); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return err
		}
		return fmt.Errorf("document_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "document_deleted", slog.String("document_id", id))
	return nil
}

// # Helpers

// find loads an owned document, treating malformed ids as missing.
func (service *Service) find(context context.Context, userID, id string) (*Document, error) {
	if (&validate.Validator{}).UUID("id", id).HasErrors() {
		return nil, ErrDocumentNotFound
	}

	document, err := service.repository.FindByID(context, userID, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("document_service_find_failed: %w", err)
	}
	return document, nil
}

// downloadName is the attachment name offered to the browser: the slugged
// title with the original extension.
func downloadName(document *Document) string {
	name := slug.From(document.Title)
	if name == "" {
		name = "document"
	}
	return name + "." + document.FileType
}

func (service *Service) upcoming(context context.Context, userID string, limit int) ([]*Document, error) {
	today := service.now().UTC().Truncate(24 * time.Hour)

	documents, err := service.repository.ListReminders(context, userID, today, limit)
	if err != nil {
		return nil, fmt.Errorf("document_service_reminders_failed: %w", err)
	}
	return documents, nil
}
