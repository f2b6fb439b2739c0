// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package folder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/validate"
	"github.com/taibuivan/famvault/internal/vault"
	"github.com/taibuivan/famvault/pkg/uuid"
)

const maxNameLength = 100

// Service manages vault folders.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// List returns the folders of userID, optionally of a single category.
func (service *Service) List(context context.Context, userID string, category *vault.Category) ([]*Folder, error) {
	folders, err := service.repository.ListByUser(context, userID, category)
	if err != nil {
		return nil, fmt.Errorf("folder_service_list_failed: %w", err)
	}
	return folders, nil
}

/*
Get returns a folder owned by userID.

Description: Used by the document service to check a target folder before
filing a document into it.
*/
func (service *Service) Get(context context.Context, userID, id string) (*Folder, error) {
	if (&validate.Validator{}).UUID("folderId", id).HasErrors() {
		return nil, ErrFolderNotFound
	}

	folder, err := service.repository.FindByID(context, userID, id)
	if err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("folder_service_get_failed: %w", err)
	}
	return folder, nil
}

// CreateInput holds the fields of a new folder.
type CreateInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Create adds a folder to the vault of userID. Category defaults to document.
func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Folder, error) {
	name := strings.TrimSpace(input.Name)
	if err := (&validate.Validator{}).Required("name", name).MaxLen("name", name, maxNameLength).Err(); err != nil {
		return nil, err
	}

	category, err := vault.ParseCategory(input.Category, vault.CategoryDocument)
	if err != nil {
		return nil, err
	}

	folder := &Folder{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     name,
		Category: category,
	}
	if err := service.repository.Create(context, folder); err != nil {
		return nil, fmt.Errorf("folder_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "folder_created", slog.String("folder_id", folder.ID))
	return folder, nil
}

// Delete removes a folder owned by userID. Its documents stay in the vault.
func (service *Service) Delete(context context.Context, userID, id string) error {
	if (&validate.Validator{}).UUID("id", id).HasErrors() {
		return ErrFolderNotFound
	}

	if err := service.repository.Delete(context, userID, id); err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			return err
		}
		return fmt.Errorf("folder_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "folder_deleted", slog.String("folder_id", id))
	return nil
}
