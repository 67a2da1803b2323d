// Package passwords wraps bcrypt hashing and verification of account
// passwords. Plaintexts and hashes are never logged.
package passwords

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/dkurosov/authguard/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt work factor. 12 keeps a single verification in the
// tens of milliseconds on current hardware.
const hashCost = 12

// MaxPasswordBytes is bcrypt's input limit: longer inputs are rejected rather
// than silently truncated.
const MaxPasswordBytes = 72

// DummyHash is a bcrypt hash of random process-local bytes. Login flows
// compare against it when no credential exists, so "unknown email" and "wrong
// password" take comparable time.
var DummyHash = makeDummyHash()

func makeDummyHash() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	h, err := bcrypt.GenerateFromPassword(b, hashCost)
	if err != nil {
		// unreachable for a 32-byte input; fail loudly rather than
		// hand out an empty hash
		panic(err)
	}
	return string(h)
}

// Hash applies bcrypt to the plaintext after trimming leading/trailing
// whitespace. It fails with common.ErrHashingFailed for over-long input or an
// underlying primitive error.
func Hash(plaintext string) (string, error) {
	p := strings.TrimSpace(plaintext)
	if len(p) > MaxPasswordBytes {
		return "", fmt.Errorf("%w: password exceeds %d bytes", common.ErrHashingFailed, MaxPasswordBytes)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(p), hashCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrHashingFailed, err)
	}
	return string(h), nil
}

// Verify reports whether plaintext matches the stored hash. A wrong password
// is (false, nil); an error is returned only for a malformed stored hash,
// which indicates corrupted storage rather than a bad login attempt.
func Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(plaintext)))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrMalformedHash, err)
	}
}
