// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/validate"
	"github.com/taibuivan/famvault/pkg/uuid"
)

// phonePattern accepts digits with the usual separators and an optional leading plus.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-.]{1,24}$`)

const (
	maxNameLength         = 100
	maxRelationshipLength = 50
)

// Service manages the contacts of a vault.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// List returns the contacts of userID.
func (service *Service) List(context context.Context, userID string) ([]*Contact, error) {
	contacts, err := service.repository.ListByUser(context, userID)
	if err != nil {
		return nil, fmt.Errorf("contact_service_list_failed: %w", err)
	}
	return contacts, nil
}

// CreateInput holds the fields of a new contact.
type CreateInput struct {
	Name               string `json:"name"`
	Relationship       string `json:"relationship"`
	Phone              string `json:"phone"`
	IsEmergencyService bool   `json:"isEmergencyService"`
}

/*
Create adds a contact to the vault of userID.

Returns:
  - *Contact: The stored contact
  - error: Validation errors or storage failures
*/
func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Contact, error) {
	name := strings.TrimSpace(input.Name)
	relationship := strings.TrimSpace(input.Relationship)
	phone := strings.TrimSpace(input.Phone)

	validator := &validate.Validator{}
	validator.Required("name", name).MaxLen("name", name, maxNameLength).
		MaxLen("relationship", relationship, maxRelationshipLength).
		Required("phone", phone).
		Custom("phone", phone != "" && !phonePattern.MatchString(phone), "Invalid phone number")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	contact := &Contact{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               name,
		Relationship:       relationship,
		Phone:              phone,
		IsEmergencyService: input.IsEmergencyService,
	}
	if err := service.repository.Create(context, contact); err != nil {
		return nil, fmt.Errorf("contact_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "contact_created", slog.String("contact_id", contact.ID))
	return contact, nil
}

// Delete removes a contact owned by userID.
func (service *Service) Delete(context context.Context, userID, id string) error {
	if (&validate.Validator{}).UUID("id", id).HasErrors() {
		return ErrContactNotFound
	}

	if err := service.repository.Delete(context, userID, id); err != nil {
		if errors.Is(err, ErrContactNotFound) {
			return err
		}
		return fmt.Errorf("contact_service_delete_failed: %w", err)
	}
	return nil
}
