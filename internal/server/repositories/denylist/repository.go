// Package denylist persists tokens explicitly invalidated before their
// natural expiry (logout support).
package denylist

import (
	"context"
	"time"
)

type Repository interface {
	// Add denylists a raw token string until its natural expiry.
	Add(ctx context.Context, token string, expiresAt time.Time) error

	// Contains reports whether the token has been denylisted.
	Contains(ctx context.Context, token string) (bool, error)

	// DeleteExpired removes entries whose tokens have expired anyway.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
