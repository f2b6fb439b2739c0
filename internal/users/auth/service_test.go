// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/users/auth"
)

/*
TestRegister_CreatesUnverifiedUser verifies a fresh sign-up stores a pending
code and emails it.
*/
func TestRegister_CreatesUnverifiedUser(t *testing.T) {
	h := newHarness(t)

	user, err := h.service.Register(context.Background(), auth.RegisterInput{
		Name: "A", Email: "a@x.com", Password: "password1",
	})
	require.NoError(t, err)

	assert.False(t, user.IsVerified)
	assert.True(t, user.HasPendingCode())
	assert.Equal(t, h.now.Add(10*time.Minute), *user.OTPExpiresAt)
	assert.NotEqual(t, "password1", user.PasswordHash)

	require.Equal(t, 1, h.outbox.sent())
	code := h.outbox.lastCode(t, "a@x.com")
	assert.Len(t, code, 6)
	assert.NotEqual(t, code, user.OTPHash)
	assert.Zero(t, h.throttle.calls)
}

/*
TestRegister_Validation covers the input checks that run before any lookup.
*/
func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input auth.RegisterInput
		want  error
	}{
		{"bad_email", auth.RegisterInput{Email: "not-an-email", Password: "password1"}, auth.ErrInvalidEmail},
		{"blank_email", auth.RegisterInput{Email: "", Password: "password1"}, auth.ErrInvalidEmail},
		{"short_password", auth.RegisterInput{Email: "a@x.com", Password: "short"}, auth.ErrWeakPassword},
		{"long_password", auth.RegisterInput{Email: "a@x.com", Password: strings.Repeat("p", 73)}, auth.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			_, err := h.service.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, h.users.count())
			assert.Zero(t, h.outbox.sent())
		})
	}
}

/*
TestRegister_VerifiedEmailRejected ensures a verified identity is never overwritten.
*/
func TestRegister_VerifiedEmailRejected(t *testing.T) {
	h := newHarness(t)
	original := h.registerVerified(t, "a@x.com", "password1")
	sentBefore := h.outbox.sent()

	_, err := h.service.Register(context.Background(), auth.RegisterInput{
		Name: "Mallory", Email: "a@x.com", Password: "password2",
	})
	assert.ErrorIs(t, err, auth.ErrAlreadyVerified)
	assert.Equal(t, sentBefore, h.outbox.sent())

	stored, err := h.users.FindByID(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, original.PasswordHash, stored.PasswordHash)
}

/*
TestRegister_OverwritesUnverified checks a repeated sign-up reuses the record
and invalidates the previous code.
*/
func TestRegister_OverwritesUnverified(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.codes.pin("111111", "222222")

	first, err := h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	require.Equal(t, "111111", h.outbox.lastCode(t, "a@x.com"))

	second, err := h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password2"})
	require.NoError(t, err)
	require.Equal(t, "222222", h.outbox.lastCode(t, "a@x.com"))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, h.users.count())
	assert.NotEqual(t, first.PasswordHash, second.PasswordHash)

	_, err = h.service.VerifyOTP(ctx, "a@x.com", "111111")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	_, err = h.service.VerifyOTP(ctx, "a@x.com", "222222")
	require.NoError(t, err)

	_, err = h.service.Login(ctx, "a@x.com", "password2")
	assert.NoError(t, err)
}

/*
TestRegister_DeliveryFailure keeps the stored code when the email cannot be sent.
*/
func TestRegister_DeliveryFailure(t *testing.T) {
	h := newHarness(t)
	h.outbox.fail = errSMTPDown
	ctx := context.Background()

	_, err := h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeDelivery))
	assert.ErrorIs(t, err, errSMTPDown)

	stored, err := h.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)
	assert.True(t, stored.HasPendingCode())

	h.outbox.fail = nil
	_, err = h.service.ResendOTP(ctx, "a@x.com")
	require.NoError(t, err)

	_, err = h.service.VerifyOTP(ctx, "a@x.com", h.outbox.lastCode(t, "a@x.com"))
	assert.NoError(t, err)
}

/*
TestVerifyOTP_WrongCode leaves the account unverified with its code intact.
*/
func TestVerifyOTP_WrongCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	_, err = h.service.VerifyOTP(ctx, "a@x.com", "000000")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	stored, err := h.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)
	assert.True(t, stored.HasPendingCode())

	_, err = h.service.VerifyOTP(ctx, "a@x.com", "  ")
	assert.ErrorIs(t, err, auth.ErrMissingCode)
}

/*
TestVerifyOTP_Success marks the account verified and clears the code.
*/
func TestVerifyOTP_Success(t *testing.T) {
	h := newHarness(t)
	user := h.registerVerified(t, "a@x.com", "password1")

	assert.True(t, user.IsVerified)
	assert.False(t, user.HasPendingCode())
	assert.Empty(t, user.OTPHash)
	assert.Nil(t, user.OTPExpiresAt)

	_, err := h.service.VerifyOTP(context.Background(), "a@x.com", "123456")
	assert.ErrorIs(t, err, auth.ErrAccountVerified)
}

/*
TestVerifyOTP_ExpiredReclaimsUser deletes the unverified account once its code
has expired, even when the submitted code is correct.
*/
func TestVerifyOTP_ExpiredReclaimsUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	code := h.outbox.lastCode(t, "a@x.com")

	h.advance(10*time.Minute + time.Second)

	_, err = h.service.VerifyOTP(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, auth.ErrCodeExpired)
	assert.Zero(t, h.users.count())
	assert.Equal(t, []string{"email:a@x.com"}, h.users.deletes)

	_, err = h.service.VerifyOTP(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	assert.NoError(t, err)
}

/*
TestVerifyOTP_AtExpiryBoundary accepts a code submitted exactly at its expiry instant.
*/
func TestVerifyOTP_AtExpiryBoundary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	h.advance(10 * time.Minute)

	_, err = h.service.VerifyOTP(ctx, "a@x.com", h.outbox.lastCode(t, "a@x.com"))
	assert.NoError(t, err)
}

/*
TestResendOTP covers the resend rules and the replacement of the old code.
*/
func TestResendOTP(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.ResendOTP(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	h.codes.pin("111111", "222222")

	_, err = h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	h.advance(5 * time.Minute)
	user, err := h.service.ResendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, h.now.Add(10*time.Minute), *user.OTPExpiresAt)
	assert.Equal(t, 1, h.throttle.calls)
	require.Equal(t, "222222", h.outbox.lastCode(t, "a@x.com"))

	_, err = h.service.VerifyOTP(ctx, "a@x.com", "111111")
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	_, err = h.service.VerifyOTP(ctx, "a@x.com", "222222")
	require.NoError(t, err)

	_, err = h.service.ResendOTP(ctx, "a@x.com")
	assert.ErrorIs(t, err, auth.ErrAccountVerified)
}

/*
TestResendOTP_Throttle refuses a send inside the cooldown and fails open on
throttle errors.
*/
func TestResendOTP_Throttle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	sentBefore := h.outbox.sent()

	h.throttle.wait = 1500 * time.Millisecond
	_, err = h.service.ResendOTP(ctx, "a@x.com")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeRateLimited))
	assert.Contains(t, err.Error(), "2s")
	assert.Equal(t, sentBefore, h.outbox.sent())

	h.throttle.wait = 0
	h.throttle.err = errors.New("redis: connection refused")
	_, err = h.service.ResendOTP(ctx, "a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, sentBefore+1, h.outbox.sent())
}

/*
TestResendOTP_DeliveryFailureFreesSlot lets the user retry straight after a
failed send, while a delivered code still starts the cooldown.
*/
func TestResendOTP_DeliveryFailureFreesSlot(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := newHarnessWithThrottle(t, auth.NewCodeThrottle(client, time.Minute))
	ctx := context.Background()

	_, err := h.service.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)

	h.outbox.fail = errSMTPDown
	_, err = h.service.ResendOTP(ctx, "a@x.com")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeDelivery))
	assert.False(t, server.Exists("auth:otp_cooldown:verify:a@x.com"))

	h.outbox.fail = nil
	h.codes.pin("333333")
	_, err = h.service.ResendOTP(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "333333", h.outbox.lastCode(t, "a@x.com"))

	_, err = h.service.ResendOTP(ctx, "a@x.com")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeRateLimited))

	_, err = h.service.VerifyOTP(ctx, "a@x.com", "333333")
	assert.NoError(t, err)
}

/*
TestForgotPassword_DeliveryFailureReleasesSlot hands the cooldown slot back
when the reset email cannot be sent.
*/
func TestForgotPassword_DeliveryFailureReleasesSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerVerified(t, "a@x.com", "password1")

	h.outbox.fail = errSMTPDown
	_, err := h.service.ForgotPassword(ctx, "a@x.com")
	require.Error(t, err)
	assert.Equal(t, 1, h.throttle.calls)
	assert.Equal(t, 1, h.throttle.released)

	h.outbox.fail = nil
	_, err = h.service.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, h.throttle.released)
}

/*
TestLogin covers the outcomes of a login attempt, in the order they are checked.
*/
func TestLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.Login(ctx, "ghost@x.com", "password1")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = h.service.Register(ctx, auth.RegisterInput{Name: "B", Email: "b@x.com", Password: "password1"})
	require.NoError(t, err)

	// Unverified wins over a wrong password.
	_, err = h.service.Login(ctx, "b@x.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrNotVerified)
	_, err = h.service.Login(ctx, "b@x.com", "password1")
	assert.ErrorIs(t, err, auth.ErrNotVerified)

	user := h.registerVerified(t, "a@x.com", "password1")

	_, err = h.service.Login(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrWrongPassword)

	result, err := h.service.Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	claims, err := h.service.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, user.ID, claims.UserID)
}

/*
TestAuthenticate_Rejects ensures malformed and forged tokens are refused.
*/
func TestAuthenticate_Rejects(t *testing.T) {
	h := newHarness(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := h.service.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrInvalidSession, token)
	}
}

/*
TestForgotPassword covers who may request a reset code.
*/
func TestForgotPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.service.ForgotPassword(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	_, err = h.service.Register(ctx, auth.RegisterInput{Name: "B", Email: "b@x.com", Password: "password1"})
	require.NoError(t, err)
	_, err = h.service.ForgotPassword(ctx, "b@x.com")
	assert.ErrorIs(t, err, auth.ErrNotVerified)

	h.registerVerified(t, "a@x.com", "password1")
	user, err := h.service.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, user.HasPendingCode())
	assert.Equal(t, "Reset your FamVault password", h.outbox.messages[len(h.outbox.messages)-1].Subject)
}

/*
TestForgotPassword_ReplacesCode invalidates the earlier reset code once a new
one is sent.
*/
func TestForgotPassword_ReplacesCode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerVerified(t, "a@x.com", "password1")

	h.codes.pin("444444", "555555")
	_, err := h.service.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	_, err = h.service.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, "555555", h.outbox.lastCode(t, "a@x.com"))

	err = h.service.ResetPassword(ctx, auth.ResetPasswordInput{
		Email: "a@x.com", OTP: "444444", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCode)

	err = h.service.ResetPassword(ctx, auth.ResetPasswordInput{
		Email: "a@x.com", OTP: "555555", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
	})
	require.NoError(t, err)

	_, err = h.service.Login(ctx, "a@x.com", "newpassword1")
	assert.NoError(t, err)
}

/*
TestResetPassword walks the reset completion outcomes.
*/
func TestResetPassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerVerified(t, "a@x.com", "password1")

	_, err := h.service.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	code := h.outbox.lastCode(t, "a@x.com")

	tests := []struct {
		name  string
		input auth.ResetPasswordInput
		want  error
	}{
		{"mismatch", auth.ResetPasswordInput{Email: "a@x.com", OTP: code, NewPassword: "newpassword1", ConfirmPassword: "newpassword2"}, auth.ErrPasswordMismatch},
		{"weak", auth.ResetPasswordInput{Email: "a@x.com", OTP: code, NewPassword: "short", ConfirmPassword: "short"}, auth.ErrWeakPassword},
		{"wrong_code", auth.ResetPasswordInput{Email: "a@x.com", OTP: "000000", NewPassword: "newpassword1", ConfirmPassword: "newpassword1"}, auth.ErrInvalidCode},
		{"missing_code", auth.ResetPasswordInput{Email: "a@x.com", NewPassword: "newpassword1", ConfirmPassword: "newpassword1"}, auth.ErrMissingCode},
		{"unknown_email", auth.ResetPasswordInput{Email: "ghost@x.com", OTP: code, NewPassword: "newpassword1", ConfirmPassword: "newpassword1"}, auth.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, h.service.ResetPassword(ctx, tt.input), tt.want)
		})
	}

	err = h.service.ResetPassword(ctx, auth.ResetPasswordInput{
		Email: "a@x.com", OTP: code, NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
	})
	require.NoError(t, err)

	_, err = h.service.Login(ctx, "a@x.com", "password1")
	assert.ErrorIs(t, err, auth.ErrWrongPassword)
	_, err = h.service.Login(ctx, "a@x.com", "newpassword1")
	assert.NoError(t, err)

	// The code is single use.
	err = h.service.ResetPassword(ctx, auth.ResetPasswordInput{
		Email: "a@x.com", OTP: code, NewPassword: "newpassword2", ConfirmPassword: "newpassword2",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

/*
TestResetPassword_ExpiredKeepsUser clears the code but never deletes a
verified account.
*/
func TestResetPassword_ExpiredKeepsUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.registerVerified(t, "a@x.com", "password1")

	_, err := h.service.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	code := h.outbox.lastCode(t, "a@x.com")

	h.advance(11 * time.Minute)

	err = h.service.ResetPassword(ctx, auth.ResetPasswordInput{
		Email: "a@x.com", OTP: code, NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
	})
	assert.ErrorIs(t, err, auth.ErrResetCodeExpired)

	stored, err := h.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.False(t, stored.HasPendingCode())

	_, err = h.service.Login(ctx, "a@x.com", "password1")
	assert.NoError(t, err)
}

/*
TestChangePassword requires the current password before replacing the hash.
*/
func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.registerVerified(t, "a@x.com", "password1")

	err := h.service.ChangePassword(ctx, auth.ChangePasswordInput{
		UserID: user.ID, CurrentPassword: "wrong-password", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
	})
	assert.ErrorIs(t, err, auth.ErrWrongCurrent)

	err = h.service.ChangePassword(ctx, auth.ChangePasswordInput{
		UserID: user.ID, CurrentPassword: "password1", NewPassword: "newpassword1", ConfirmPassword: "other",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)

	err = h.service.ChangePassword(ctx, auth.ChangePasswordInput{
		UserID: "missing", CurrentPassword: "password1", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
	})
	assert.ErrorIs(t, err, auth.ErrUserNotFound)

	stored, err := h.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)

	err = h.service.ChangePassword(ctx, auth.ChangePasswordInput{
		UserID: user.ID, CurrentPassword: "password1", NewPassword: "newpassword1", ConfirmPassword: "newpassword1",
	})
	require.NoError(t, err)

	_, err = h.service.Login(ctx, "a@x.com", "newpassword1")
	assert.NoError(t, err)
}
