// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// otpMin and otpSpan bound codes to the inclusive range 100000-999999.
	otpMin  = 100000
	otpSpan = 900000
)

// Clock returns the current time. Injected so expiry can be tested.
type Clock func() time.Time

// Outcome is the result of checking a submitted one-time code.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeExpired
	OutcomeMismatch
)

// String implements fmt.Stringer for log output.
func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeValid:
		return "valid"
	case OutcomeExpired:
		return "expired"
	default:
		return "mismatch"
	}
}

// OTP is a freshly issued one-time code. Code goes to the user by email;
// only Hash and ExpiresAt are persisted.
type OTP struct {
	Code      string
	Hash      string
	ExpiresAt time.Time
}

// OTPIssuer generates, hashes and checks 6-digit numeric codes.
type OTPIssuer struct {
	hasher *Hasher
	ttl    time.Duration
	now    Clock
}

// NewOTPIssuer returns an issuer whose codes live for ttl.
func NewOTPIssuer(hasher *Hasher, ttl time.Duration) *OTPIssuer {
	return &OTPIssuer{hasher: hasher, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source and returns the issuer.
func (issuer *OTPIssuer) WithClock(now Clock) *OTPIssuer {
	issuer.now = now
	return issuer
}

// TTL reports how long issued codes remain valid.
func (issuer *OTPIssuer) TTL() time.Duration {
	return issuer.ttl
}

// Issue draws a code uniformly from 100000-999999 and hashes it.
func (issuer *OTPIssuer) Issue() (*OTP, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return nil, fmt.Errorf("sec: otp entropy failed: %w", err)
	}

	code := fmt.Sprintf("%06d", otpMin+n.Int64())
	hash, err := issuer.hasher.Hash(code)
	if err != nil {
		return nil, err
	}

	return &OTP{
		Code:      code,
		Hash:      hash,
		ExpiresAt: issuer.now().Add(issuer.ttl),
	}, nil
}

// Verify checks a submitted code against the stored hash and expiry.
//
// Expiry is evaluated first: a correct code submitted late is Expired.
// A missing hash or expiry means no code is outstanding and yields Mismatch.
func (issuer *OTPIssuer) Verify(code, hash string, expiresAt *time.Time) Outcome {
	if hash == "" || expiresAt == nil {
		return OutcomeMismatch
	}
	if issuer.now().After(*expiresAt) {
		return OutcomeExpired
	}
	if !issuer.hasher.Verify(code, hash) {
		return OutcomeMismatch
	}
	return OutcomeValid
}
