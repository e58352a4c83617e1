package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const legacyDigestLength = sha256.Size * 2

// HashPassword returns a salted bcrypt digest. Any password length is
// accepted; see prehash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// LegacyDigest is the unsalted SHA-256 hex digest written by the old server.
func LegacyDigest(password string) string {
	hash := sha256.Sum256([]byte(password))
	return hex.EncodeToString(hash[:])
}

func ValidatePassword(password string) bool {
	return len(password) >= 1
}

// CheckPassword verifies password against a stored digest. legacy is true
// when the digest is an unsalted SHA-256 value that should be rehashed.
func CheckPassword(digest, password string) (ok bool, legacy bool) {
	if digest == "" {
		return false, false
	}
	if isLegacyDigest(digest) {
		want := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(digest)), []byte(want)) == 1, true
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), prehash(password)) == nil, false
}

// prehash maps a password of any length to 44 bytes, under bcrypt's
// 72-byte input limit, so no suffix is ever truncated.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func isLegacyDigest(digest string) bool {
	if len(digest) != legacyDigestLength {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}
