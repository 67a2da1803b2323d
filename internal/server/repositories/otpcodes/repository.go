// Package otpcodes persists the single outstanding one-time code per
// (credential, purpose). Redeemed codes are deleted, so replay fails.
package otpcodes

import (
	"context"
	"time"

	"github.com/dkurosov/authguard/internal/server/models"
)

type Repository interface {
	// Upsert stores the outstanding code, replacing any previous one for
	// the same credential and purpose.
	Upsert(ctx context.Context, code *models.OTPCode) error

	// FindByCode looks up an outstanding code by its value and purpose.
	// Returns common.ErrorNotFound when no such code exists.
	FindByCode(ctx context.Context, code string, purpose models.OTPPurpose) (*models.OTPCode, error)

	// Delete removes the outstanding code for a credential and purpose.
	Delete(ctx context.Context, credentialID string, purpose models.OTPPurpose) error

	// DeleteExpired removes codes whose window has passed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
