// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "github.com/taibuivan/famvault/internal/platform/apperr"

// Refusal reasons of the auth flow. Each carries the message shown to the user.
//
// Several of these reveal whether an email is registered. That disclosure is
// part of the product behavior.
var (
	ErrUserNotFound     = apperr.NotFound("User")
	ErrAlreadyVerified  = apperr.Conflict("Email already exists")
	ErrAccountVerified  = apperr.Conflict("Account is already verified. Please log in.")
	ErrNotVerified      = apperr.NotVerified("Please verify your account first.")
	ErrWrongPassword    = apperr.InvalidCredentials("Wrong password")
	ErrWrongCurrent     = apperr.InvalidCredentials("Current password is incorrect")
	ErrInvalidCode      = apperr.InvalidCredentials("Invalid code. Check your email.")
	ErrCodeExpired      = apperr.Expired("OTP expired. Please register again.")
	ErrResetCodeExpired = apperr.Expired("Reset code expired. Please request a new one.")
	ErrPasswordMismatch = apperr.ValidationError("Passwords do not match")
	ErrWeakPassword     = apperr.ValidationError("Password must be at least 8 characters")
	ErrPasswordTooLong  = apperr.ValidationError("Password must be at most 72 bytes")
	ErrInvalidEmail     = apperr.ValidationError("Please enter a valid email address")
	ErrMissingCode      = apperr.ValidationError("Please enter the code from your email")
	ErrInvalidSession   = apperr.Unauthorized("Session expired, please log in again")
)
