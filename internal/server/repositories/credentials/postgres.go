package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkurosov/authguard/internal/common"
	"github.com/dkurosov/authguard/internal/dbx"
	"github.com/dkurosov/authguard/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, c *models.Credential) (bool, error) {
	query := `
		INSERT INTO credentials (id, email, password_hash, first_name, last_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		c.ID, c.Email, c.PasswordHash, c.FirstName, c.LastName, c.Status)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, status, created_at, updated_at
		FROM credentials
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Credential, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, status, created_at, updated_at
		FROM credentials
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE credentials
		SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, passwordHash)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	query := `
		UPDATE credentials
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, status)
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, firstName, lastName string) error {
	query := `
		UPDATE credentials
		SET first_name = $2, last_name = $3, updated_at = now()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, firstName, lastName)
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Credential, error) {
	c := &models.Credential{}
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName,
		&c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
