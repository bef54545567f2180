package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password hashing schemes
const (
	HashSHA256 = "sha256"
	HashBcrypt = "bcrypt"
)

// PasswordHasher writes hashes in one scheme and verifies any supported one
type PasswordHasher struct {
	scheme string
}

// NewPasswordHasher returns a hasher writing scheme. Unsalted SHA-256 hex
// stays the default so existing Auditors rows keep verifying.
func NewPasswordHasher(scheme string) *PasswordHasher {
	if scheme != HashBcrypt {
		scheme = HashSHA256
	}
	return &PasswordHasher{scheme: scheme}
}

// Hash hashes password with the configured scheme
func (h *PasswordHasher) Hash(password string) (string, error) {
	if h.scheme == HashBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return string(b), err
	}
	return sha256Hex(password), nil
}

// Verify detects the stored scheme from its format
func (h *PasswordHasher) Verify(password, stored string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	want := sha256Hex(password)
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(want)) == 1
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
