// Package cryptox implements password hashing for locally stored accounts.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

// DeriveKey stretches password with argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// NewSalt returns a fresh random salt, base64 encoded for storage.
func NewSalt() string {
	return base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(SaltSize))
}

// HashPassword derives the stored hash of password with the given encoded salt.
func HashPassword(password, salt string) (string, error) {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	return base64.StdEncoding.EncodeToString(DeriveKey(pw, rawSalt)), nil
}

// VerifyPassword reports whether password hashes to hash under salt.
// The comparison runs in constant time.
func VerifyPassword(password, salt, hash string) bool {
	got, err := HashPassword(password, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(hash)) == 1
}
