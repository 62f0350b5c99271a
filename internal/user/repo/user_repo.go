package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/inkwell-labs/blog-core/internal/user/entity"
)

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email CITEXT NOT NULL UNIQUE,
  name TEXT,
  password_hash TEXT NOT NULL,
  password_algo TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Name         *string   `db:"name"`
	PasswordHash string    `db:"password_hash"`
	PasswordAlgo *string   `db:"password_algo"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row *userRow) toEntity() *entity.User {
	return &entity.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		Name:         row.Name,
		PasswordHash: row.PasswordHash,
		PasswordAlgo: row.PasswordAlgo,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

const userColumns = `id, username, email, name, password_hash, password_algo, created_at, updated_at`

// Create inserts a new user row and fills in the generated id and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (username, email, name, password_hash, password_algo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, q, u.Username, u.Email, u.Name, u.PasswordHash, u.PasswordAlgo)
	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// GetByEmail returns a user matched by email (case-insensitive due to citext)
// or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, q, email); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// GetByID fetches a full user row or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var row userRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// ExistsByUsername reports whether a user with the given username exists.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, username); err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateProfile applies a partial profile update. A non-nil email rewrites
// username in the same statement so the two columns never diverge. Returns
// the updated row or sql.ErrNoRows.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, email, name *string) (*entity.User, error) {
	const q = `UPDATE users SET
		email = COALESCE($2, email),
		username = COALESCE($2, username),
		name = COALESCE($3, name),
		updated_at = NOW()
	WHERE id=$1
	RETURNING ` + userColumns
	var row userRow
	if err := r.db.GetContext(ctx, &row, q, id, email, name); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}
