// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Credential Store

// UserRepository defines the data access contract for credential records.
//
// Each call is atomic on a single row. Nothing spans users, and deleting a
// user does not cascade to vault data.
type UserRepository interface {

	/*
		FindByEmail returns the account registered under email.

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict when the email is already taken
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateByID applies patch and returns the updated row.

		Returns:
		  - *User: Entity after the update
		  - error: ErrUserNotFound or storage failures
	*/
	UpdateByID(context context.Context, id string, patch UserPatch) (*User, error)

	/*
		DeleteByEmail removes the account registered under email.

		Returns:
		  - error: ErrUserNotFound or storage failures
	*/
	DeleteByEmail(context context.Context, email string) error

	/*
		DeleteByID removes the account with the given ID.

		Returns:
		  - error: ErrUserNotFound or storage failures
	*/
	DeleteByID(context context.Context, id string) error
}

// # Volatile Data Access

// CodeThrottle limits how often a one-time code can be sent to one address.
type CodeThrottle interface {

	/*
		Acquire claims the send slot for email and purpose.

		Returns:
		  - time.Duration: Zero when the slot was claimed, otherwise the wait left
		  - error: Backend failures (callers fail open)
	*/
	Acquire(context context.Context, email, purpose string) (time.Duration, error)

	// Release frees a claimed slot so a failed send can be retried at once.
	Release(context context.Context, email, purpose string) error
}
