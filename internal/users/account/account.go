// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the profile half of the user record.

The credential half (email, password, verification) belongs to the auth
package. This package lets a signed-in user read and edit their profile, shows
the emergency card built from the profile and the vault, and deletes the
account.

# Architecture

  - Repository: profile columns of users.account (Postgres).
  - Service: profile rules and the emergency card.
  - Handler: JSON reads, form posts answered with redirects.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/vault"
	"github.com/taibuivan/famvault/internal/vault/contact"
	"github.com/taibuivan/famvault/internal/vault/document"
)

// # Domain Entities

// Profile is the editable view of a FamVault account.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DateOfBirth string    `json:"dob"`
	Gender      string    `json:"gender"`
	BloodGroup  string    `json:"bloodGroup"`
	Address     string    `json:"address"`
	Allergies   string    `json:"allergies"`
	Conditions  string    `json:"conditions"`
	ProfilePic  string    `json:"profilePic"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
// An empty DateOfBirth clears the date.
type ProfilePatch struct {
	Name        *string
	Phone       *string
	DateOfBirth *string
	Gender      *string
	BloodGroup  *string
	Address     *string
	Allergies   *string
	Conditions  *string
	ProfilePic  *string
}

// IsEmpty reports whether the patch changes nothing.
func (patch ProfilePatch) IsEmpty() bool {
	return patch == ProfilePatch{}
}

// EmergencyCard is the read-only view shown in emergency mode.
type EmergencyCard struct {
	Name           string             `json:"name"`
	BloodGroup     string             `json:"bloodGroup"`
	Allergies      string             `json:"allergies"`
	Conditions     string             `json:"conditions"`
	Contacts       []*contact.Contact `json:"contacts"`
	MedicalRecords []string           `json:"medicalRecords"`
}

// # Vocabulary

// Accepted gender values and the blood group default.
const (
	GenderMale        = "Male"
	GenderFemale      = "Female"
	GenderOther       = "Other"
	GenderUndisclosed = "Prefer not to say"
	BloodGroupUnknown = "Unknown"
)

// Genders lists every accepted gender value.
var Genders = []string{GenderMale, GenderFemale, GenderOther, GenderUndisclosed}

// BloodGroups lists every accepted blood group.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-", BloodGroupUnknown}

// # Form Fields

const (
	FieldName        = "name"
	FieldPhone       = "phone"
	FieldDateOfBirth = "dob"
	FieldGender      = "gender"
	FieldBloodGroup  = "bloodGroup"
	FieldAddress     = "address"
	FieldAllergies   = "allergies"
	FieldConditions  = "conditions"
	FieldProfilePic  = "profilePic"
)

// # Errors

var (
	ErrProfileNotFound = apperr.NotFound("Account")
	ErrEmptyPatch      = apperr.ValidationError("Nothing to update")
)

// # Contracts

// Repository is the persistence contract for profiles.
type Repository interface {
	/*
		FindByID loads the profile of a user.

		Returns:
		  - *Profile: The profile
		  - error: ErrProfileNotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Profile, error)

	/*
		Update applies the non-nil fields of patch and returns the result.

		Returns:
		  - *Profile: The profile after the update
		  - error: ErrProfileNotFound or storage failures
	*/
	Update(context context.Context, id string, patch ProfilePatch) (*Profile, error)
}

// AccountRemover deletes the user row. Satisfied by the auth user store.
type AccountRemover interface {
	DeleteByID(context context.Context, id string) error
}

// ContactLister lists the emergency contacts of a user.
type ContactLister interface {
	List(context context.Context, userID string) ([]*contact.Contact, error)
}

// RecordLister lists the documents of a user in one category.
type RecordLister interface {
	Titles(context context.Context, userID string, category vault.Category) ([]*document.Document, error)
}
