// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Credential Constraints

const (
	// MinPasswordLength is the shortest password accepted, in characters.
	MinPasswordLength = 8

	// MaxPasswordBytes is the longest password bcrypt can hash without truncation.
	MaxPasswordBytes = 72

	// MaxNameLength bounds the display name given at registration.
	MaxNameLength = 100
)

// # Navigation

// Redirect targets of the form flows.
const (
	PathHome           = "/overview"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathVerifyOTP      = "/verify-otp"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
	PathProfile        = "/profile"
)
