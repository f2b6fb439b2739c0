// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package folder manages the flat folders that group vault documents.

Folders do not nest. Deleting a folder keeps its documents; they fall back
to the general area of their category.
*/
package folder

import (
	"context"
	"time"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/vault"
)

// Folder groups documents of one category.
type Folder struct {
	ID        string         `json:"id"`
	UserID    string         `json:"-"`
	Name      string         `json:"name"`
	Category  vault.Category `json:"category"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ErrFolderNotFound covers both missing folders and folders of other users.
var ErrFolderNotFound = apperr.NotFound("Folder")

// Repository defines the persistence contract for folders.
type Repository interface {

	/*
		ListByUser returns the folders of userID, newest first.

		Returns:
		  - []*Folder: Filtered by category when one is given
		  - error: Storage failures
	*/
	ListByUser(context context.Context, userID string, category *vault.Category) ([]*Folder, error)

	/*
		FindByID returns a folder owned by userID.

		Returns:
		  - *Folder: Hydrated entity
		  - error: ErrFolderNotFound
	*/
	FindByID(context context.Context, userID, id string) (*Folder, error)

	// Create persists a new folder.
	Create(context context.Context, folder *Folder) error

	/*
		Delete removes a folder owned by userID. Its documents are detached.

		Returns:
		  - error: ErrFolderNotFound when no owned row matched
	*/
	Delete(context context.Context, userID, id string) error
}
