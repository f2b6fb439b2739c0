// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// Hasher performs one-way salted hashing of secrets with bcrypt.
//
// It is used for both account passwords and one-time codes, so neither is
// ever persisted in a recoverable form.
type Hasher struct {
	cost int
}

// NewHasher returns a [Hasher] with the given bcrypt cost. Out-of-range
// costs fall back to [DefaultCost].
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of a plain-text secret.
func (hasher *Hasher) Hash(plainText string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainText), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash secret: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text secret with its stored hash in constant time.
func (hasher *Hasher) Verify(plainText, existingHash string) bool {
	if existingHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainText)) == nil
}
