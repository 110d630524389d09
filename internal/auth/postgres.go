package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"greetly.org/internal/store"
)

// Schema for the auth_users table lives in schema.sql next to this file.

const pgUniqueViolation = "23505"

var _ UserStore = (*PGUserStore)(nil)

// PGUserStore implements UserStore on PostgreSQL. Authorities are stored
// as the codec's space-joined text form.
type PGUserStore struct {
	db *sql.DB
}

func NewPGUserStore(db *sql.DB) *PGUserStore {
	return &PGUserStore{db: db}
}

func (s *PGUserStore) GetByID(ctx context.Context, id int64) (store.Entity[AuthUser], error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, password_hash, company_id, authorities from auth_users where id=$1`, id)
	return scanUser(row)
}

func (s *PGUserStore) GetByUsername(ctx context.Context, username string) (store.Entity[AuthUser], error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, password_hash, company_id, authorities from auth_users where username=$1`, username)
	return scanUser(row)
}

func (s *PGUserStore) Save(ctx context.Context, user AuthUser) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`insert into auth_users(username, password_hash, company_id, authorities)
		 values($1,$2,$3,$4) returning id`,
		user.Username, user.PasswordHash, user.CompanyID, EncodeAuthorities(user.Authorities),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func scanUser(row *sql.Row) (store.Entity[AuthUser], error) {
	var (
		e           store.Entity[AuthUser]
		authorities string
	)
	if err := row.Scan(&e.ID, &e.Value.Username, &e.Value.PasswordHash, &e.Value.CompanyID, &authorities); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Entity[AuthUser]{}, ErrNotFound
		}
		return store.Entity[AuthUser]{}, err
	}
	e.Value.Authorities = DecodeAuthorities(authorities)
	return e, nil
}
