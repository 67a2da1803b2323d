package credentials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkurosov/authguard/internal/common"
	"github.com/dkurosov/authguard/internal/server/models"
)

func TestInsertIfAbsent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRepository(db)
	cred := &models.Credential{
		ID:           "id-1",
		Email:        "a@x.com",
		PasswordHash: "$2a$12$hash",
		Status:       models.StatusInactive,
	}

	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(cred.ID, cred.Email, cred.PasswordHash, "", "", cred.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.InsertIfAbsent(context.Background(), cred)
	if err != nil {
		t.Fatalf("InsertIfAbsent error: %v", err)
	}
	if !inserted {
		t.Fatalf("expected insert to report success")
	}

	// conflicting email: ON CONFLICT DO NOTHING affects zero rows
	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs(cred.ID, cred.Email, cred.PasswordHash, "", "", cred.Status).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err = repo.InsertIfAbsent(context.Background(), cred)
	if err != nil {
		t.Fatalf("InsertIfAbsent error: %v", err)
	}
	if inserted {
		t.Fatalf("expected conflict to report false")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name", "status", "created_at", "updated_at",
	}).AddRow("id-1", "a@x.com", "$2a$12$hash", "Ada", "Lovelace", "active", now, now)

	mock.ExpectQuery(`SELECT .+ FROM credentials`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	cred, err := repo.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if cred.ID != "id-1" || cred.Status != models.StatusActive {
		t.Fatalf("unexpected credential: %+v", cred)
	}

	mock.ExpectQuery(`SELECT .+ FROM credentials`).
		WithArgs("missing@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.FindByEmail(context.Background(), "missing@x.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRepository(db)

	mock.ExpectExec(`UPDATE credentials`).
		WithArgs("missing-id", models.StatusActive).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), "missing-id", models.StatusActive)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}
