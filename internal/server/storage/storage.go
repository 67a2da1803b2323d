// Package storage opens the PostgreSQL backend, runs migrations, and hands
// out repositories bound to either the pool or a transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkurosov/authguard/internal/dbx"
	"github.com/dkurosov/authguard/internal/server/migrations"
	"github.com/dkurosov/authguard/internal/server/repositories/credentials"
	"github.com/dkurosov/authguard/internal/server/repositories/denylist"
	"github.com/dkurosov/authguard/internal/server/repositories/otpcodes"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Repos constructs repositories over a pool or transaction handle, so
// services can run multi-statement flows inside dbx.WithTx.
type Repos interface {
	Credentials(db dbx.DBTX) credentials.Repository
	OTPCodes(db dbx.DBTX) otpcodes.Repository
	Denylist(db dbx.DBTX) denylist.Repository
}

// Postgres is the production Repos implementation over a pgx stdlib pool.
type Postgres struct {
	db *sql.DB
}

func Open(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) DB() *sql.DB {
	return p.db
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewPostgresRepository(db)
}

func (p *Postgres) OTPCodes(db dbx.DBTX) otpcodes.Repository {
	return otpcodes.NewPostgresRepository(db)
}

func (p *Postgres) Denylist(db dbx.DBTX) denylist.Repository {
	return denylist.NewPostgresRepository(db)
}

// RunMigrations applies the embedded goose migrations.
func (p *Postgres) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, p.db, "."); err != nil {
		return err
	}
	return nil
}
