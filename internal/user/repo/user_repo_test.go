package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/inkwell-labs/blog-core/internal/user/entity"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestCreate_ReturnsGeneratedFields(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("a@x.com", "a@x.com", nil, "hash", "bcrypt:12").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	algo := "bcrypt:12"
	u := &entity.User{
		Username:     "a@x.com",
		Email:        "a@x.com",
		PasswordHash: "hash",
		PasswordAlgo: &algo,
	}
	if err := r.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != 7 {
		t.Fatalf("id not filled: %d", u.ID)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not filled: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	cols := []string{"id", "username", "email", "name", "password_hash", "password_algo", "created_at", "updated_at"}
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE email=\$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "a@x.com", "a@x.com", nil, "hash", nil, now, now))

	u, err := r.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.ID != 1 || u.Email != "a@x.com" || u.PasswordHash != "hash" {
		t.Fatalf("row mapping broken: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByEmail_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email=\$1`).
		WithArgs("missing@x.com").
		WillReturnError(sql.ErrNoRows)

	if _, err := r.GetByEmail(context.Background(), "missing@x.com"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("got %v want sql.ErrNoRows", err)
	}
}

func TestUpdateProfile_RewritesUsernameWithEmail(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	cols := []string{"id", "username", "email", "name", "password_hash", "password_algo", "created_at", "updated_at"}
	now := time.Now()
	email := "b@x.com"
	mock.ExpectQuery(`UPDATE users SET`).
		WithArgs(int64(1), "b@x.com", nil).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "b@x.com", "b@x.com", nil, "hash", nil, now, now))

	u, err := r.UpdateProfile(context.Background(), 1, &email, nil)
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if u.Username != u.Email {
		t.Fatalf("username and email diverged: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
