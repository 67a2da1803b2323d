// Package common defines shared constants and sentinel errors used across
// the authguard server and client layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal       = errors.New("internal error")
	ErrorUnavailable    = errors.New("service unavailable")
	ErrValidation       = errors.New("validation failed")
	ErrEmailTaken       = errors.New("email already registered")
	ErrWrongCredentials = errors.New("wrong email or password")

	// Account status gates.
	ErrAccountNotVerified = errors.New("account not verified")
	ErrAccountDisabled    = errors.New("account disabled")

	// One-time-code errors. A single sentinel on purpose: callers must not
	// learn whether a code was unknown, expired, or bound to another purpose.
	ErrInvalidCode = errors.New("invalid code")

	// Password change/reset errors.
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrHashingFailed    = errors.New("hashing failed")
	ErrMalformedHash    = errors.New("malformed password hash")

	// Token lifecycle errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenSignature   = errors.New("token signature invalid")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalidated = errors.New("token invalidated")
)
