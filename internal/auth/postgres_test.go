package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGUserStoreGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "company_id", "authorities"}).
		AddRow(int64(7), "alice", "hash", "acme", "ADMIN USER")
	mock.ExpectQuery("select id, username, password_hash, company_id, authorities from auth_users where id=").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	store := NewPGUserStore(db)
	got, err := store.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != 7 || got.Value.Username != "alice" || !got.Value.IsAdmin() {
		t.Fatalf("unexpected entity: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGUserStoreGetByUsernameNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select id, username, password_hash, company_id, authorities from auth_users where username=").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "company_id", "authorities"}))

	store := NewPGUserStore(db)
	if _, err := store.GetByUsername(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGUserStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("insert into auth_users").
		WithArgs("alice", "hash", "acme", "USER").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	store := NewPGUserStore(db)
	id, err := store.Save(context.Background(), NewAuthUser("alice", "hash", "acme", nil))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id != 3 {
		t.Fatalf("id = %d, want 3", id)
	}
}

func TestPGUserStoreSaveDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("insert into auth_users").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	store := NewPGUserStore(db)
	if _, err := store.Save(context.Background(), NewAuthUser("alice", "hash", "acme", nil)); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}
