// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the identity and session lifecycle of FamVault.

It owns the credential half of the user record and the state machine that
moves an identity through registration, email verification, login and
password recovery:

	Anonymous -> Unverified -> Verified -> Authenticated
	Verified -> PasswordResetPending -> Verified

# Architecture

  - Service: the auth flow controller. Every operation returns a value or an
    [*apperr.AppError] describing why the transition was refused.
  - UserRepository: the credential store (Postgres).
  - CodeThrottle: resend cooldown for one-time codes (Redis).
  - Handler: form posts in, redirects with a status message out.

The one-time code is not a separate entity. It is a hash and an expiry kept on
the user row, present only while a code is outstanding.
*/
package auth

import "time"

// # Domain Entities

// User is the credential view of a FamVault account.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsVerified   bool       `json:"isVerified"`
	OTPHash      string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// HasPendingCode reports whether a one-time code is outstanding.
func (user *User) HasPendingCode() bool {
	return user.OTPHash != "" && user.OTPExpiresAt != nil
}

// UserPatch is a partial update. Nil fields are left untouched.
//
// ClearOTP removes both OTP fields and takes precedence over OTPHash and
// OTPExpiresAt.
type UserPatch struct {
	PasswordHash *string
	IsVerified   *bool
	OTPHash      *string
	OTPExpiresAt *time.Time
	ClearOTP     bool
}

// # Field Identifiers

// Form field names accepted by the auth routes.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldOTP             = "otp"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
)
