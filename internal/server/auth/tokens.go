// Package auth issues and validates the signed session tokens of the server.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dkurosov/authguard/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenKind separates short-lived access tokens from longer-lived refresh
// tokens. A token of one kind never validates as the other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the signed claim bundle carried by every token.
type Claims struct {
	jwt.RegisteredClaims
	Email string    `json:"email"`
	Kind  TokenKind `json:"kind"`
}

// TokenService mints and validates HMAC-SHA-512 signed tokens. The signing
// key is loaded once at startup and shared read-only across requests.
type TokenService struct {
	key             []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
}

// NewTokenService validates the signing key and the validity presets. Access
// validity must be strictly shorter than refresh validity.
func NewTokenService(key []byte, accessValidity, refreshValidity time.Duration) (*TokenService, error) {
	if len(key) == 0 {
		return nil, errors.New("auth: signing key is empty")
	}
	if accessValidity <= 0 || refreshValidity <= 0 {
		return nil, errors.New("auth: token validity must be positive")
	}
	if accessValidity >= refreshValidity {
		return nil, fmt.Errorf("auth: access validity %v must be shorter than refresh validity %v",
			accessValidity, refreshValidity)
	}
	return &TokenService{key: key, accessValidity: accessValidity, refreshValidity: refreshValidity}, nil
}

// Issue signs a token of the given kind for the subject credential. The
// claims carry issued-at = now and expires-at = now + the kind's validity.
func (s *TokenService) Issue(subjectID, email string, kind TokenKind, now time.Time) (string, error) {
	validity := s.accessValidity
	if kind == KindRefresh {
		validity = s.refreshValidity
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email: email,
		Kind:  kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature first, then expiry, then the token kind.
// It returns common.ErrTokenSignature for tampered or malformed tokens,
// common.ErrTokenExpired for tokens at or past their expiry, and
// common.ErrInvalidToken for a kind mismatch.
func (s *TokenService) Validate(token string, kind TokenKind, now time.Time) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenMalformed):
		return nil, common.ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, common.ErrTokenExpired
	default:
		return nil, common.ErrTokenSignature
	}

	// the library treats now == exp as still valid; the contract here is
	// that a token is invalid from the instant it expires
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, common.ErrTokenExpired
	}
	if claims.Kind != kind {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
