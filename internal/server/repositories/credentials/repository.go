// Package credentials persists account records.
package credentials

import (
	"context"

	"github.com/dkurosov/authguard/internal/server/models"
)

// Repository is the small, concrete interface the credential lifecycle needs;
// no generic CRUD.
type Repository interface {
	// InsertIfAbsent inserts the credential unless its email is already
	// taken. The uniqueness check and the insert are one atomic statement
	// (INSERT ... ON CONFLICT DO NOTHING); the bool result is false when
	// the email was taken.
	InsertIfAbsent(ctx context.Context, c *models.Credential) (bool, error)

	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
	FindByID(ctx context.Context, id string) (*models.Credential, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateStatus(ctx context.Context, id string, status models.Status) error
	UpdateProfile(ctx context.Context, id, firstName, lastName string) error
}
