// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/validate"
	"github.com/taibuivan/famvault/internal/vault"
	"github.com/taibuivan/famvault/internal/vault/document"
	"github.com/taibuivan/famvault/pkg/slice"
)

const (
	maxNameLength    = 100
	maxPhoneLength   = 30
	maxAddressLength = 300
	maxMedicalLength = 500
	maxPictureLength = 500
)

// # Service Layer

// Service orchestrates profile reads and writes and the emergency card.
type Service struct {
	repository Repository
	remover    AccountRemover
	contacts   ContactLister
	records    RecordLister
	now        func() time.Time
}

// NewService constructs a new [Service].
func NewService(repository Repository, remover AccountRemover, contacts ContactLister, records RecordLister) *Service {
	return &Service{
		repository: repository,
		remover:    remover,
		contacts:   contacts,
		records:    records,
		now:        time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (service *Service) WithClock(now func() time.Time) *Service {
	service.now = now
	return service
}

// # Profile Management

// GetProfile returns the profile of userID.
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	profile, err := service.repository.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return profile, nil
}

/*
UpdateProfile applies a partial set of changes to the profile of userID.

Description: Values are trimmed before validation. Gender and blood group must
be one of the accepted values, and a date of birth must be a past calendar date.

Returns:
  - *Profile: The profile after the update
  - error: Validation errors, ErrEmptyPatch or ErrProfileNotFound
*/
func (service *Service) UpdateProfile(context context.Context, userID string, patch ProfilePatch) (*Profile, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	for _, field := range []*string{
		patch.Name, patch.Phone, patch.DateOfBirth, patch.Gender, patch.BloodGroup,
		patch.Address, patch.Allergies, patch.Conditions, patch.ProfilePic,
	} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}

	if err := service.validate(patch); err != nil {
		return nil, err
	}

	profile, err := service.repository.Update(context, userID, patch)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_profile_updated")
	return profile, nil
}

func (service *Service) validate(patch ProfilePatch) error {
	validator := &validate.Validator{}

	if patch.Name != nil {
		validator.Required(FieldName, *patch.Name).MaxLen(FieldName, *patch.Name, maxNameLength)
	}
	if patch.Phone != nil {
		validator.MaxLen(FieldPhone, *patch.Phone, maxPhoneLength)
	}
	if patch.DateOfBirth != nil {
		validator.Date(FieldDateOfBirth, *patch.DateOfBirth)
		if parsed, err := time.Parse(time.DateOnly, *patch.DateOfBirth); err == nil {
			validator.Custom(FieldDateOfBirth, parsed.After(service.now()), "Date of birth cannot be in the future")
		}
	}
	if patch.Gender != nil {
		validator.OneOf(FieldGender, *patch.Gender, Genders...)
	}
	if patch.BloodGroup != nil {
		validator.OneOf(FieldBloodGroup, *patch.BloodGroup, BloodGroups...)
	}
	if patch.Address != nil {
		validator.MaxLen(FieldAddress, *patch.Address, maxAddressLength)
	}
	if patch.Allergies != nil {
		validator.MaxLen(FieldAllergies, *patch.Allergies, maxMedicalLength)
	}
	if patch.Conditions != nil {
		validator.MaxLen(FieldConditions, *patch.Conditions, maxMedicalLength)
	}
	if patch.ProfilePic != nil {
		validator.MaxLen(FieldProfilePic, *patch.ProfilePic, maxPictureLength)
	}

	return validator.Err()
}

// # Emergency Mode

/*
EmergencyCard assembles what a first responder needs: blood group, allergies,
conditions, the emergency contacts and the titles of the medical records.
*/
func (service *Service) EmergencyCard(context context.Context, userID string) (*EmergencyCard, error) {
	profile, err := service.GetProfile(context, userID)
	if err != nil {
		return nil, err
	}

	contacts, err := service.contacts.List(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_emergency_contacts_failed: %w", err)
	}

	records, err := service.records.Titles(context, userID, vault.CategoryMedical)
	if err != nil {
		return nil, fmt.Errorf("account_service_emergency_records_failed: %w", err)
	}

	titles := slice.Map(records, func(record *document.Document) string { return record.Title })
	if titles == nil {
		titles = []string{}
	}

	return &EmergencyCard{
		Name:           profile.Name,
		BloodGroup:     profile.BloodGroup,
		Allergies:      profile.Allergies,
		Conditions:     profile.Conditions,
		Contacts:       contacts,
		MedicalRecords: titles,
	}, nil
}

// # Account Removal

/*
DeleteAccount removes the user row.

Description: Vault rows and blobs of the user are left in place; the session
token stops resolving to a user once the row is gone.
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {
	if err := service.remover.DeleteByID(context, userID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "user_account_deleted")
	return nil
}
