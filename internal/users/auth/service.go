// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/mail"
	"github.com/taibuivan/famvault/internal/platform/sec"
	"github.com/taibuivan/famvault/internal/platform/validate"
	"github.com/taibuivan/famvault/pkg/pointer"
	"github.com/taibuivan/famvault/pkg/uuid"
)

// # Contracts & Types

// PasswordHasher performs one-way hashing of passwords.
type PasswordHasher interface {
	Hash(plainText string) (string, error)
	Verify(plainText, existingHash string) bool
}

// CodeIssuer generates and checks one-time codes.
type CodeIssuer interface {
	Issue() (*sec.OTP, error)
	Verify(code, hash string, expiresAt *time.Time) sec.Outcome
	TTL() time.Duration
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(email, userID string) (string, error)
	Verify(token string) (*sec.SessionClaims, error)
	TTL() time.Duration
}

// Service is the auth flow controller.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, code
// handling or token issuance must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	codeThrottle   CodeThrottle
	hasher         PasswordHasher
	codes          CodeIssuer
	tokens         TokenIssuer
	mailer         mail.Sender
}

// NewService constructs a new [Service]. A nil throttle disables the resend cooldown.
func NewService(
	userRepo UserRepository,
	throttle CodeThrottle,
	hasher PasswordHasher,
	codes CodeIssuer,
	tokens TokenIssuer,
	mailer mail.Sender,
) *Service {
	return &Service{
		userRepository: userRepo,
		codeThrottle:   throttle,
		hasher:         hasher,
		codes:          codes,
		tokens:         tokens,
		mailer:         mailer,
	}
}

// SessionTTL reports the lifetime of issued session tokens; zero means no expiry.
func (service *Service) SessionTTL() time.Duration {
	return service.tokens.TTL()
}

// # Registration Flow

// RegisterInput holds the fields of the registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

/*
Register creates an unverified account, or refreshes one that was never
verified, and emails it a verification code.

Description: A second registration for the same unverified email overwrites
the password and the code; it never creates a duplicate. The code is stored
before the email is sent, so a delivery failure leaves a valid but undelivered
code that /resend-otp can replace.

Returns:
  - *User: The unverified account
  - err: ErrAlreadyVerified, validation errors, or apperr.Delivery
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	name := strings.TrimSpace(input.Name)

	if err := checkEmail(input.Email); err != nil {
		return nil, err
	}
	if err := checkPassword(input.Password); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, apperr.ValidationError(fmt.Sprintf("Name must be at most %d characters", MaxNameLength))
	}

	existing, err := service.findByEmail(context, input.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsVerified {
		return nil, ErrAlreadyVerified
	}

	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	code, err := service.codes.Issue()
	if err != nil {
		return nil, fmt.Errorf("auth_service_otp_issue_failed: %w", err)
	}

	user, err := service.saveRegistration(context, existing, name, input.Email, passwordHash, code)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "auth_registered",
		slog.String("email", user.Email),
		slog.Bool("reused", existing != nil),
	)

	if err := service.sendCode(context, user, code.Code, mail.PurposeVerify); err != nil {
		return nil, err
	}

	return user, nil
}

// saveRegistration writes the pending account. A concurrent registration
// that won the insert is overwritten (last write wins) unless it has since
// been verified.
func (service *Service) saveRegistration(context context.Context, existing *User, name, email, passwordHash string, code *sec.OTP) (*User, error) {
	patch := UserPatch{
		PasswordHash: &passwordHash,
		OTPHash:      &code.Hash,
		OTPExpiresAt: &code.ExpiresAt,
	}

	if existing == nil {
		user := &User{
			ID:           uuid.New(),
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			IsVerified:   false,
			OTPHash:      code.Hash,
			OTPExpiresAt: &code.ExpiresAt,
		}

		err := service.userRepository.Create(context, user)
		if err == nil {
			return user, nil
		}
		if !apperr.HasCode(err, apperr.CodeConflict) {
			return nil, fmt.Errorf("auth_service_register_failed: %w", err)
		}

		existing, err = service.findByEmail(context, email)
		if err != nil {
			return nil, err
		}
		if existing.IsVerified {
			return nil, ErrAlreadyVerified
		}
	}

	user, err := service.userRepository.UpdateByID(context, existing.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_update_failed: %w", err)
	}
	return user, nil
}

/*
VerifyOTP confirms the registration code of an unverified account.

Description: An expired code deletes the unverified account outright, so the
email has to register again. A wrong code changes nothing.

Returns:
  - *User: The verified account
  - err: ErrInvalidCode, ErrCodeExpired, ErrUserNotFound or ErrAccountVerified
*/
func (service *Service) VerifyOTP(context context.Context, email, code string) (*User, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMissingCode
	}

	user, err := service.findByEmail(context, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrAccountVerified
	}

	logger := ctxutil.GetLogger(context)

	switch service.codes.Verify(code, user.OTPHash, user.OTPExpiresAt) {
	case sec.OutcomeExpired:
		if err := service.userRepository.DeleteByEmail(context, user.Email); err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("auth_service_reclaim_failed: %w", err)
		}
		logger.InfoContext(context, "auth_otp_expired_user_reclaimed", slog.String("email", email))
		return nil, ErrCodeExpired

	case sec.OutcomeMismatch:
		logger.WarnContext(context, "auth_otp_mismatch", slog.String("email", email))
		return nil, ErrInvalidCode
	}

	verified, err := service.userRepository.UpdateByID(context, user.ID, UserPatch{
		IsVerified: pointer.To(true),
		ClearOTP:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("auth_service_verify_failed: %w", err)
	}

	logger.InfoContext(context, "auth_verified", slog.String("email", email))
	return verified, nil
}

/*
ResendOTP replaces the registration code of an unverified account.

Description: The new code overwrites the old one, which stops working at once.
Sends are limited by the code throttle.
*/
func (service *Service) ResendOTP(context context.Context, email string) (*User, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	user, err := service.findByEmail(context, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrAccountVerified
	}

	return service.reissueCode(context, user, mail.PurposeVerify)
}

// # Authentication Flow

// LoginResult is an established session.
type LoginResult struct {
	Token string
	User  *User
}

/*
Login checks credentials and issues a session token asserting {email, userId}.

Description: An unverified account is refused before its password is looked
at, so the answer does not depend on whether the password was right.

Returns:
  - *LoginResult: Signed token and the account
  - err: ErrUserNotFound, ErrNotVerified or ErrWrongPassword
*/
func (service *Service) Login(context context.Context, email, password string) (*LoginResult, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	user, err := service.findByEmail(context, email)
	if err != nil {
		return nil, err
	}

	logger := ctxutil.GetLogger(context)

	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	if !service.hasher.Verify(password, user.PasswordHash) {
		logger.WarnContext(context, "auth_login_failed", slog.String("email", email))
		return nil, ErrWrongPassword
	}

	token, err := service.tokens.Issue(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	logger.InfoContext(context, "auth_login_succeeded", slog.String("email", email))
	return &LoginResult{Token: token, User: user}, nil
}

/*
Authenticate is the session gate used in front of every protected route.

Returns:
  - *sec.SessionClaims: The identity asserted by the token
  - err: ErrInvalidSession for a missing, malformed, forged or expired token
*/
func (service *Service) Authenticate(context context.Context, token string) (*sec.SessionClaims, error) {
	claims, err := service.tokens.Verify(token)
	if err != nil {
		ctxutil.GetLogger(context).DebugContext(context, "auth_session_rejected", slog.String("reason", err.Error()))
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// # Password Recovery

/*
ForgotPassword emails a reset code to a verified account.

Description: Any previous code is overwritten. Unverified accounts are told
to finish verification first.
*/
func (service *Service) ForgotPassword(context context.Context, email string) (*User, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	user, err := service.findByEmail(context, email)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	return service.reissueCode(context, user, mail.PurposeReset)
}

// ResetPasswordInput holds the fields of the password reset completion form.
type ResetPasswordInput struct {
	Email           string
	OTP             string
	NewPassword     string
	ConfirmPassword string
}

/*
ResetPassword sets a new password once the emailed reset code is confirmed.

Description: An expired code only clears the code fields. Verified accounts
are never deleted by this flow.

Returns:
  - err: ErrPasswordMismatch, ErrWeakPassword, ErrInvalidCode or ErrResetCodeExpired
*/
func (service *Service) ResetPassword(context context.Context, input ResetPasswordInput) error {
	if err := checkEmail(input.Email); err != nil {
		return err
	}
	code := strings.TrimSpace(input.OTP)
	if code == "" {
		return ErrMissingCode
	}
	if err := checkNewPassword(input.NewPassword, input.ConfirmPassword); err != nil {
		return err
	}

	user, err := service.findByEmail(context, input.Email)
	if err != nil {
		return err
	}
	if !user.IsVerified {
		return ErrNotVerified
	}

	logger := ctxutil.GetLogger(context)

	switch service.codes.Verify(code, user.OTPHash, user.OTPExpiresAt) {
	case sec.OutcomeExpired:
		if _, err := service.userRepository.UpdateByID(context, user.ID, UserPatch{ClearOTP: true}); err != nil {
			return fmt.Errorf("auth_service_clear_otp_failed: %w", err)
		}
		logger.InfoContext(context, "auth_reset_code_expired", slog.String("email", input.Email))
		return ErrResetCodeExpired

	case sec.OutcomeMismatch:
		logger.WarnContext(context, "auth_otp_mismatch", slog.String("email", input.Email))
		return ErrInvalidCode
	}

	passwordHash, err := service.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if _, err := service.userRepository.UpdateByID(context, user.ID, UserPatch{
		PasswordHash: &passwordHash,
		ClearOTP:     true,
	}); err != nil {
		return fmt.Errorf("auth_service_reset_password_failed: %w", err)
	}

	logger.InfoContext(context, "auth_password_reset", slog.String("email", input.Email))
	return nil
}

// ChangePasswordInput holds the fields of the authenticated change form.
type ChangePasswordInput struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

/*
ChangePassword replaces the password of a signed-in user.

Description: The stored hash is untouched unless the current password matches.
Existing session tokens stay valid; they carry no password-derived state.
*/
func (service *Service) ChangePassword(context context.Context, input ChangePasswordInput) error {
	if err := checkNewPassword(input.NewPassword, input.ConfirmPassword); err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(context, input.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("auth_service_find_user_failed: %w", err)
	}

	if !service.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		return ErrWrongCurrent
	}

	passwordHash, err := service.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if _, err := service.userRepository.UpdateByID(context, user.ID, UserPatch{PasswordHash: &passwordHash}); err != nil {
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "auth_password_changed", slog.String("user_id", user.ID))
	return nil
}

// # Helpers

// findByEmail passes ErrUserNotFound through and wraps anything else.
func (service *Service) findByEmail(context context.Context, email string) (*User, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_find_user_failed: %w", err)
	}
	return user, nil
}

// reissueCode overwrites the outstanding code of user and emails the new one.
func (service *Service) reissueCode(context context.Context, user *User, purpose mail.Purpose) (*User, error) {
	if err := service.acquireSendSlot(context, user.Email, purpose); err != nil {
		return nil, err
	}

	code, err := service.codes.Issue()
	if err != nil {
		service.releaseSendSlot(context, user.Email, purpose)
		return nil, fmt.Errorf("auth_service_otp_issue_failed: %w", err)
	}

	updated, err := service.userRepository.UpdateByID(context, user.ID, UserPatch{
		OTPHash:      &code.Hash,
		OTPExpiresAt: &code.ExpiresAt,
	})
	if err != nil {
		service.releaseSendSlot(context, user.Email, purpose)
		return nil, fmt.Errorf("auth_service_otp_store_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "auth_code_issued",
		slog.String("email", user.Email),
		slog.String("purpose", string(purpose)),
	)

	if err := service.sendCode(context, updated, code.Code, purpose); err != nil {
		service.releaseSendSlot(context, user.Email, purpose)
		return nil, err
	}
	return updated, nil
}

// acquireSendSlot enforces the resend cooldown. Throttle failures fail open.
func (service *Service) acquireSendSlot(context context.Context, email string, purpose mail.Purpose) error {
	if service.codeThrottle == nil {
		return nil
	}

	wait, err := service.codeThrottle.Acquire(context, email, string(purpose))
	if err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_code_throttle_unavailable", slog.Any("error", err))
		return nil
	}
	if wait > 0 {
		return apperr.RateLimited(int(math.Ceil(wait.Seconds())))
	}
	return nil
}

// releaseSendSlot hands back a slot claimed for a send that never happened.
func (service *Service) releaseSendSlot(context context.Context, email string, purpose mail.Purpose) {
	if service.codeThrottle == nil {
		return
	}

	if err := service.codeThrottle.Release(context, email, string(purpose)); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "auth_code_throttle_release_failed", slog.Any("error", err))
	}
}

// sendCode emails a one-time code. Persisted state is left as is on failure.
func (service *Service) sendCode(context context.Context, user *User, code string, purpose mail.Purpose) error {
	message := mail.OTPMessage(user.Name, user.Email, code, purpose, service.codes.TTL())

	if err := service.mailer.Send(context, message); err != nil {
		ctxutil.GetLogger(context).ErrorContext(context, "auth_otp_delivery_failed",
			slog.String("email", user.Email),
			slog.String("purpose", string(purpose)),
			slog.Any("error", err),
		)
		return apperr.Delivery(err)
	}
	return nil
}

// checkEmail rejects blank or malformed addresses.
func checkEmail(email string) error {
	validator := &validate.Validator{}
	if validator.Required(FieldEmail, email).Email(FieldEmail, email).HasErrors() {
		return ErrInvalidEmail
	}
	return nil
}

// checkPassword enforces the length rules on a new password.
func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// checkNewPassword applies checkPassword and the confirmation match.
func checkNewPassword(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return checkPassword(password)
}
