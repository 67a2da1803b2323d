package otpcodes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkurosov/authguard/internal/common"
	"github.com/dkurosov/authguard/internal/server/models"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, func() { db.Close() }
}

func TestUpsert(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	code := &models.OTPCode{
		CredentialID: "id-1",
		Purpose:      models.PurposeAccountVerification,
		Code:         "123456",
		IssuedAt:     issued,
		ExpiresAt:    issued.Add(5 * time.Minute),
	}

	mock.ExpectExec(`INSERT INTO otp_codes`).
		WithArgs(code.CredentialID, code.Purpose, code.Code, code.IssuedAt, code.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), code); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByCode(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"credential_id", "purpose", "code", "issued_at", "expires_at"}).
		AddRow("id-1", models.PurposePasswordReset, "654321", issued, issued.Add(5*time.Minute))

	mock.ExpectQuery(`SELECT credential_id, purpose, code, issued_at, expires_at`).
		WithArgs("654321", models.PurposePasswordReset).
		WillReturnRows(rows)

	rec, err := repo.FindByCode(context.Background(), "654321", models.PurposePasswordReset)
	if err != nil {
		t.Fatalf("FindByCode error: %v", err)
	}
	if rec.CredentialID != "id-1" || rec.Code != "654321" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestFindByCodeNotFound(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	mock.ExpectQuery(`SELECT credential_id, purpose, code, issued_at, expires_at`).
		WithArgs("000000", models.PurposePasswordReset).
		WillReturnRows(sqlmock.NewRows([]string{"credential_id", "purpose", "code", "issued_at", "expires_at"}))

	_, err := repo.FindByCode(context.Background(), "000000", models.PurposePasswordReset)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, closeFn := newMock(t)
	defer closeFn()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`DELETE FROM otp_codes`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted rows, got %d", n)
	}
}
