// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/sha3"
)

// Default credentials accepted before the install is initialized, so the
// administrator can reach the init endpoint on a fresh database.
const (
	DefaultUser = "admin"
	DefaultPass = "admin"
)

// NewSalt generates the anonymization secret mixed into visitor fingerprints.
// 32 bytes of entropy, base64-encoded for storage as text.
func NewSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// HashVisitor derives the anonymized visitor ID from a caller-supplied
// fingerprint and the currently active salt. The raw fingerprint is never
// persisted; after the salt rotates, the same fingerprint produces an
// unrelated ID.
func HashVisitor(fingerprint, salt string) string {
	sum := sha3.Sum256([]byte(fingerprint + salt))
	return hex.EncodeToString(sum[:])
}

// HashPassword hashes the admin password for storage.
func HashPassword(pass string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether pass matches the stored bcrypt hash.
func CheckPassword(hashed, pass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pass)) == nil
}

// CheckDefault compares a credential pair against the built-in pre-init pair
// in constant time.
func CheckDefault(user, pass string) bool {
	u := subtle.ConstantTimeCompare([]byte(user), []byte(DefaultUser))
	p := subtle.ConstantTimeCompare([]byte(pass), []byte(DefaultPass))
	return u&p == 1
}
