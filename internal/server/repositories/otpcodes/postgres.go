package otpcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dkurosov/authguard/internal/common"
	"github.com/dkurosov/authguard/internal/dbx"
	"github.com/dkurosov/authguard/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, code *models.OTPCode) error {
	query := `
		INSERT INTO otp_codes (credential_id, purpose, code, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (credential_id, purpose)
		DO UPDATE SET code = EXCLUDED.code, issued_at = EXCLUDED.issued_at, expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query,
		code.CredentialID, code.Purpose, code.Code, code.IssuedAt, code.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByCode(ctx context.Context, code string, purpose models.OTPPurpose) (*models.OTPCode, error) {
	query := `
		SELECT credential_id, purpose, code, issued_at, expires_at
		FROM otp_codes
		WHERE code = $1 AND purpose = $2
	`
	rec := &models.OTPCode{}
	err := r.db.QueryRowContext(ctx, query, code, purpose).
		Scan(&rec.CredentialID, &rec.Purpose, &rec.Code, &rec.IssuedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, credentialID string, purpose models.OTPPurpose) error {
	query := `
		DELETE FROM otp_codes
		WHERE credential_id = $1 AND purpose = $2
	`
	if _, err := r.db.ExecContext(ctx, query, credentialID, purpose); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM otp_codes
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
