// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/famvault/internal/platform/sec"
)

var testSecret = []byte(strings.Repeat("x", 32))

/*
TestHasher_RoundTrip verifies hashing is one-way and verification succeeds
only for the original secret.
*/
func TestHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, hasher.Verify("correct horse", hash))
	assert.False(t, hasher.Verify("wrong horse", hash))
	assert.False(t, hasher.Verify("correct horse", ""))
}

/*
TestHasher_Salted ensures two hashes of the same secret differ.
*/
func TestHasher_Salted(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same")
	require.NoError(t, err)
	second, err := hasher.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestOTPIssuer_Issue checks code format, range and expiry.
*/
func TestOTPIssuer_Issue(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := sec.NewOTPIssuer(sec.NewHasher(bcrypt.MinCost), 10*time.Minute).
		WithClock(func() time.Time { return fixed })

	for range 20 {
		otp, err := issuer.Issue()
		require.NoError(t, err)

		require.Len(t, otp.Code, 6)
		value, err := strconv.Atoi(otp.Code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, value, 100000)
		assert.LessOrEqual(t, value, 999999)

		assert.NotEqual(t, otp.Code, otp.Hash)
		assert.Equal(t, fixed.Add(10*time.Minute), otp.ExpiresAt)
	}
}

/*
TestOTPIssuer_Verify covers the three outcomes, including precedence of
expiry over a correct code.
*/
func TestOTPIssuer_Verify(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := sec.NewOTPIssuer(sec.NewHasher(bcrypt.MinCost), 10*time.Minute).
		WithClock(func() time.Time { return current })

	otp, err := issuer.Issue()
	require.NoError(t, err)

	assert.Equal(t, sec.OutcomeValid, issuer.Verify(otp.Code, otp.Hash, &otp.ExpiresAt))
	assert.Equal(t, sec.OutcomeMismatch, issuer.Verify("000000", otp.Hash, &otp.ExpiresAt))
	assert.Equal(t, sec.OutcomeMismatch, issuer.Verify(otp.Code, "", &otp.ExpiresAt))
	assert.Equal(t, sec.OutcomeMismatch, issuer.Verify(otp.Code, otp.Hash, nil))

	current = current.Add(11 * time.Minute)
	assert.Equal(t, sec.OutcomeExpired, issuer.Verify(otp.Code, otp.Hash, &otp.ExpiresAt))
	assert.Equal(t, sec.OutcomeExpired, issuer.Verify("000000", otp.Hash, &otp.ExpiresAt))
}

/*
TestTokenService_RoundTrip verifies issued claims come back intact.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	tokens, err := sec.NewTokenService(testSecret, "famvault", time.Hour)
	require.NoError(t, err)

	token, err := tokens.Issue("a@x.com", "user-1")
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotNil(t, claims.ExpiresAt)
}

/*
TestTokenService_Rejects covers tampered, foreign and expired tokens.
*/
func TestTokenService_Rejects(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens, err := sec.NewTokenService(testSecret, "famvault", time.Hour)
	require.NoError(t, err)
	tokens.WithClock(func() time.Time { return current })

	token, err := tokens.Issue("a@x.com", "user-1")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Verify("not-a-token")
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := tokens.Verify("")
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("other_secret", func(t *testing.T) {
		other, err := sec.NewTokenService([]byte(strings.Repeat("y", 32)), "famvault", time.Hour)
		require.NoError(t, err)
		_, err = other.Verify(token)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := tokens.Verify(token[:len(token)-2] + "zz")
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		current = current.Add(2 * time.Hour)
		_, err := tokens.Verify(token)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})
}

/*
TestTokenService_NoExpiry ensures a zero ttl omits the exp claim.
*/
func TestTokenService_NoExpiry(t *testing.T) {
	tokens, err := sec.NewTokenService(testSecret, "famvault", 0)
	require.NoError(t, err)

	token, err := tokens.Issue("a@x.com", "user-1")
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

/*
TestNewTokenService_Invalid rejects empty secrets and negative lifetimes.
*/
func TestNewTokenService_Invalid(t *testing.T) {
	_, err := sec.NewTokenService(nil, "famvault", time.Hour)
	assert.Error(t, err)

	_, err = sec.NewTokenService(testSecret, "famvault", -time.Second)
	assert.Error(t, err)
}
