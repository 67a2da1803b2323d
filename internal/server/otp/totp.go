// Package otp generates and verifies time-windowed numeric codes used for
// account verification and password flows.
//
// A code is derived from (secret, time step) where the step index is
// floor(unix(now) / window). Within one window the code is stable; Verify
// tolerates no clock skew, so a code straddling a step boundary is only
// honoured through the issue-time record kept by the caller.
package otp

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	otplib "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Digits is the fixed width of generated codes.
const Digits = 6

// Engine derives per-credential codes from a single process-wide secret
// loaded at startup. The secret is never rotated at runtime.
type Engine struct {
	secret []byte
	window time.Duration
}

// NewEngine validates the shared secret and validity window. A missing secret
// or non-positive window is a configuration error and must abort startup.
func NewEngine(secret []byte, window time.Duration) (*Engine, error) {
	if len(secret) == 0 {
		return nil, errors.New("otp: shared secret is empty")
	}
	if window < time.Second {
		return nil, fmt.Errorf("otp: validity window %v too short", window)
	}
	return &Engine{secret: secret, window: window}, nil
}

// Window returns the configured validity window.
func (e *Engine) Window() time.Duration {
	return e.window
}

// Generate returns the code for the given credential at now.
func (e *Engine) Generate(credentialID string, now time.Time) string {
	return Generate(e.credentialSecret(credentialID), e.window, now)
}

// Verify reports whether candidate is the credential's code for the current
// time step. Zero skew: only the step containing now is checked.
func (e *Engine) Verify(credentialID, candidate string, now time.Time) bool {
	return Verify(e.credentialSecret(credentialID), candidate, e.window, now)
}

// credentialSecret derives a per-credential secret so that two accounts never
// share a code within the same window. Deriving keeps the secret material
// process-wide configuration instead of per-row storage.
func (e *Engine) credentialSecret(credentialID string) []byte {
	mac := hmac.New(sha256.New, e.secret)
	mac.Write([]byte(credentialID))
	return mac.Sum(nil)
}

func validateOpts(window time.Duration) totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(window / time.Second),
		Skew:      0,
		Digits:    otplib.DigitsSix,
		Algorithm: otplib.AlgorithmSHA256,
	}
}

func encodeSecret(secret []byte) string {
	return base32.StdEncoding.EncodeToString(secret)
}

// Generate computes the zero-padded decimal code for the time step
// containing now.
func Generate(secret []byte, window time.Duration, now time.Time) string {
	code, err := totp.GenerateCodeCustom(encodeSecret(secret), now, validateOpts(window))
	if err != nil {
		// the secret is encoded locally and the opts are fixed, so the
		// library has nothing left to reject
		panic(fmt.Sprintf("otp: code generation failed: %v", err))
	}
	return code
}

// Verify recomputes the code for the step containing now and compares it
// against candidate in constant time. Candidates that are not exactly Digits
// decimal characters return false, never an error.
func Verify(secret []byte, candidate string, window time.Duration, now time.Time) bool {
	if !WellFormed(candidate) {
		return false
	}
	ok, err := totp.ValidateCustom(candidate, encodeSecret(secret), now, validateOpts(window))
	return err == nil && ok
}

// WellFormed reports whether s has the exact width and decimal alphabet of a
// generated code.
func WellFormed(s string) bool {
	if len(s) != Digits {
		return false
	}
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Matches compares a candidate against an issued code in constant time.
func Matches(candidate, issued string) bool {
	if !WellFormed(candidate) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(issued)) == 1
}
