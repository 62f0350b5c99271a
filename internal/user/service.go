package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-labs/blog-core/internal/apperr"
	"github.com/inkwell-labs/blog-core/internal/user/entity"
	userrepo "github.com/inkwell-labs/blog-core/internal/user/repo"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (hash string, algo string, err error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", "", err
	}
	return string(h), fmt.Sprintf("bcrypt:%d", cost), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Repository is the persistence surface the service needs. *repo.UserRepo
// satisfies it; tests substitute fakes.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, email, name *string) (*entity.User, error)
}

var (
	ErrMissingFields  = apperr.New(apperr.KindValidation, "Please provide all required fields")
	ErrInvalidEmail   = apperr.New(apperr.KindValidation, "invalid email address")
	ErrEmailTaken     = apperr.New(apperr.KindConflict, "User with this email already exists")
	ErrBadCredentials = apperr.New(apperr.KindUnauthorized, "invalid credentials")
	ErrUserNotFound   = apperr.New(apperr.KindNotFound, "user not found")
	ErrEmptyUpdate    = apperr.New(apperr.KindValidation, "no fields to update")
)

// Service orchestrates registration, authentication and profile flows.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

func NewService(db *sqlx.DB, r Repository, hasher PasswordHasher) *Service {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &Service{repo: r, hasher: hasher}
}

// uniqueViolation reports whether err is a Postgres unique-constraint error,
// the losing side of a registration race.
func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrMissingFields
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Register creates a user with a hashed password. Email doubles as username.
func (s *Service) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingFields
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByUsername(ctx, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, algo, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	u := &entity.User{
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		PasswordAlgo: &algo,
	}
	if n := strings.TrimSpace(name); n != "" {
		u.Name = &n
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if uniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	return u, nil
}

// Authenticate verifies a password credential by email. Unknown email and
// wrong password fail identically to avoid user enumeration.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	return u, nil
}

// UpdateProfile applies a partial update to the caller's own record.
// The target is always "self"; there is no id parameter by design.
func (s *Service) UpdateProfile(ctx context.Context, id int64, email, name *string) (*entity.User, error) {
	if email == nil && name == nil {
		return nil, ErrEmptyUpdate
	}
	if email != nil {
		normalized, err := normalizeEmail(*email)
		if err != nil {
			return nil, err
		}
		email = &normalized
	}
	u, err := s.repo.UpdateProfile(ctx, id, email, name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrUserNotFound
		case uniqueViolation(err):
			return nil, ErrEmailTaken
		}
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	return u, nil
}
