// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives: password and one-time-code
// hashing, code generation, and session token signing.
//
// # Architecture
//
// This package isolates security-sensitive code from the auth flow. It is
// injected into the flow controller through narrow interfaces.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("sec: invalid session token")

// SessionClaims is the payload of a session token: {email, userId}.
type SessionClaims struct {
	jwt.RegisteredClaims

	Email  string `json:"email"`
	UserID string `json:"userid"`
}

// TokenService signs and verifies HS256 session tokens with a server secret.
//
// A zero ttl issues tokens without an expiry claim. Such tokens stay valid
// until the secret is rotated.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    Clock
}

// NewTokenService creates a new TokenService.
func NewTokenService(secret []byte, issuer string, ttl time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("sec: session secret is empty")
	}
	if ttl < 0 {
		return nil, errors.New("sec: session ttl must not be negative")
	}
	return &TokenService{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source and returns the service.
func (service *TokenService) WithClock(now Clock) *TokenService {
	service.now = now
	return service
}

// TTL reports the token lifetime; zero means tokens never expire.
func (service *TokenService) TTL() time.Duration {
	return service.ttl
}

// Issue mints a signed token asserting the given identity.
func (service *TokenService) Issue(email, userID string) (string, error) {
	currentTime := service.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			Issuer:   service.issuer,
			IssuedAt: jwt.NewNumericDate(currentTime),
		},
		Email:  email,
		UserID: userID,
	}
	if service.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(currentTime.Add(service.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify checks the signature, issuer and expiry of a token string.
func (service *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return service.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
