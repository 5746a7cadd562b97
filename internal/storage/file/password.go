package file

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashing parameters. Changing pbkdf2Iterations invalidates stored
// hashes, so existing records must be rehashed on next login if it is raised.
const (
	pbkdf2Iterations = 120_000
	pbkdf2KeyLen     = 64
	saltLen          = 16
)

// HashPassword derives a PBKDF2-SHA512 hash with a fresh random salt.
//
// Postcondition: Returns base64-encoded hash and salt, or a non-nil error if
// the system's entropy source fails.
func HashPassword(password string) (hash, salt string, err error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generating salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), raw, pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(raw), nil
}

// VerifyPassword re-derives the hash and compares in constant time.
//
// Postcondition: Returns true iff password matches; malformed salt or hash
// encodings verify as false.
func VerifyPassword(password, salt, hash string) bool {
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return false
	}
	rawHash, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return false
	}
	key := pbkdf2.Key([]byte(password), rawSalt, pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return subtle.ConstantTimeCompare(key, rawHash) == 1
}
