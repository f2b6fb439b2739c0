// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package document manages the files a user keeps in their vault.

A document is a row in vault.document plus a blob in object storage. The row
owns the metadata (title, category, folder, reminder); the blob is addressed
only by its storage key and is never listed on its own.

# Lifecycle

  - Upload: the blob is written first, then the row. A failed insert removes
    the blob again.
  - Open: the row's lastAccessed is bumped and the client is redirected to a
    short-lived presigned URL.
  - Delete: the blob goes first, then the row, so a row never points at
    nothing while it is still listed.
*/
package document

import (
	"context"
	"io"
	"time"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/vault"
	"github.com/taibuivan/famvault/internal/vault/folder"
)

// # Domain Entities

// Document is the metadata of one stored file.
type Document struct {
	ID           string         `json:"id"`
	UserID       string         `json:"-"`
	Title        string         `json:"title"`
	Category     vault.Category `json:"category"`
	FolderID     *string        `json:"folderId"`
	StorageKey   string         `json:"-"`
	OriginalName string         `json:"originalName"`
	FileType     string         `json:"fileType"`
	Size         int64          `json:"size"`
	HasReminder  bool           `json:"hasReminder"`
	ReminderDate *time.Time     `json:"reminderDate,omitempty"`
	ReminderNote string         `json:"reminderNote,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastAccessed time.Time      `json:"lastAccessed"`
}

// Filter narrows a document listing. Nil fields match everything.
type Filter struct {
	Category *vault.Category
	FolderID *string
}

// Reminder is the reminder part of a document, set or cleared as a whole.
type Reminder struct {
	Enabled bool
	Date    *time.Time
	Note    string
}

// Counts is the number of documents per category.
type Counts struct {
	Documents      int `json:"documents"`
	MedicalRecords int `json:"medicalRecords"`
}

// Overview is the landing view shown after login.
type Overview struct {
	Counts    Counts      `json:"counts"`
	Recent    []*Document `json:"recent"`
	Reminders []*Document `json:"reminders"`
}

// # Errors

var (
	// ErrDocumentNotFound covers both missing documents and documents of other users.
	ErrDocumentNotFound = apperr.NotFound("Document")
	ErrMissingFile      = apperr.ValidationError("file: Please choose a file to upload")
	ErrEmptyFile        = apperr.ValidationError("file: The file is empty")
	ErrUnsupportedType  = apperr.ValidationError("file: This file type is not supported")
	ErrFolderCategory   = apperr.ValidationError("folderId: Folder belongs to another category")
	ErrReminderDate     = apperr.ValidationError("reminderDate: A reminder needs a date")
)

// # Contracts

// Repository defines the persistence contract for document metadata.
//
// Every method is scoped to the owning user.
type Repository interface {

	/*
		List returns a page of documents, newest first.

		Returns:
		  - []*Document: The page
		  - int: Total matching rows
		  - error: Storage failures
	*/
	List(context context.Context, userID string, filter Filter, limit, offset int) ([]*Document, int, error)

	/*
		FindByID returns a document owned by userID.

		Returns:
		  - error: ErrDocumentNotFound
	*/
	FindByID(context context.Context, userID, id string) (*Document, error)

	// Create persists a new document row.
	Create(context context.Context, document *Document) error

	/*
		Delete removes a document row owned by userID.

		Returns:
		  - error: ErrDocumentNotFound when no owned row matched
	*/
	Delete(context context.Context, userID, id string) error

	// Touch records that a document was opened at the given time.
	Touch(context context.Context, userID, id string, at time.Time) error

	/*
		SetReminder replaces the reminder of a document owned by userID.

		Returns:
		  - *Document: Entity after the update
		  - error: ErrDocumentNotFound
	*/
	SetReminder(context context.Context, userID, id string, reminder Reminder) (*Document, error)

	// ListReminders returns documents with a reminder due at or after from, soonest first.
	ListReminders(context context.Context, userID string, from time.Time, limit int) ([]*Document, error)

	// ListRecent returns the most recently opened documents.
	ListRecent(context context.Context, userID string, limit int) ([]*Document, error)

	// Count returns the number of documents per category.
	Count(context context.Context, userID string) (Counts, error)
}

// BlobStore keeps the file bytes. Implemented by storage.S3Store.
type BlobStore interface {
	Put(context context.Context, key, contentType string, body io.ReadSeeker, size int64) error
	Delete(context context.Context, key string) error
	PresignGet(context context.Context, key, filename string, ttl time.Duration) (string, error)
}

// FolderLookup resolves a folder owned by a user. Implemented by folder.Service.
type FolderLookup interface {
	Get(context context.Context, userID, id string) (*folder.Folder, error)
}
