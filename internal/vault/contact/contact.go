// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package contact manages the emergency contacts kept in a user's vault.

Contacts are plain address-book entries. Those flagged as emergency services
(ambulance, poison control) are listed ahead of personal contacts in the
emergency view.
*/
package contact

import (
	"context"
	"time"

	"github.com/taibuivan/famvault/internal/platform/apperr"
)

// # Domain Entities

// Contact is a person or service to call in an emergency.
type Contact struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"-"`
	Name               string    `json:"name"`
	Relationship       string    `json:"relationship"`
	Phone              string    `json:"phone"`
	IsEmergencyService bool      `json:"isEmergencyService"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ErrContactNotFound covers both missing contacts and contacts of other users.
var ErrContactNotFound = apperr.NotFound("Contact")

// # Repository Contracts

// Repository defines the persistence contract for contacts.
//
// Every method is scoped to the owning user.
type Repository interface {

	/*
		ListByUser returns the contacts of userID, emergency services first.

		Returns:
		  - []*Contact: Possibly empty list
		  - error: Storage failures
	*/
	ListByUser(context context.Context, userID string) ([]*Contact, error)

	/*
		Create persists a new contact.

		Returns:
		  - error: Storage failures
	*/
	Create(context context.Context, contact *Contact) error

	/*
		Delete removes a contact owned by userID.

		Returns:
		  - error: ErrContactNotFound when no owned row matched
	*/
	Delete(context context.Context, userID, id string) error
}
