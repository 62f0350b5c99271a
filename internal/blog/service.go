package blog

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/inkwell-labs/blog-core/internal/apperr"
	"github.com/inkwell-labs/blog-core/internal/blog/entity"
	blogrepo "github.com/inkwell-labs/blog-core/internal/blog/repo"
	"github.com/inkwell-labs/blog-core/pkg/utilities"
)

// Repository is the persistence surface the service needs. *repo.BlogRepo
// satisfies it; tests substitute fakes.
type Repository interface {
	Create(ctx context.Context, b *entity.Blog) error
	ListByAuthor(ctx context.Context, authorID int64) ([]*entity.Blog, error)
	GetForAuthor(ctx context.Context, id string, authorID int64) (*entity.Blog, error)
	GetByID(ctx context.Context, id string) (*entity.Blog, error)
	Update(ctx context.Context, id string, title, content *string) (*entity.Blog, error)
	Delete(ctx context.Context, id string) (int64, error)
}

var (
	ErrMissingFields = apperr.New(apperr.KindValidation, "title and content are required")
	ErrNotFound      = apperr.New(apperr.KindNotFound, "blog not found")
	ErrEditForbidden = apperr.New(apperr.KindForbidden, "You do not have permission to edit this blog")
	ErrDelForbidden  = apperr.New(apperr.KindForbidden, "You do not have permission to delete this blog")
)

// Service implements owner-scoped blog CRUD. Every operation takes the
// authenticated author id explicitly; there is no ambient request state.
type Service struct {
	repo Repository
}

func NewService(db *sqlx.DB, r Repository) *Service {
	if r == nil {
		r = blogrepo.NewBlogRepo(db)
	}
	return &Service{repo: r}
}

// Create stores a new post. The author is always the caller; any author
// supplied in a request body never reaches this layer.
func (s *Service) Create(ctx context.Context, authorID int64, title, content string) (*entity.Blog, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrMissingFields
	}
	b := &entity.Blog{
		ID:       utilities.NewKSUID(),
		Title:    title,
		Content:  content,
		AuthorID: authorID,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	// re-read through the join so the author projection is populated
	created, err := s.repo.GetForAuthor(ctx, b.ID, authorID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	return created, nil
}

// List returns all posts owned by the caller, newest first.
func (s *Service) List(ctx context.Context, authorID int64) ([]*entity.Blog, error) {
	out, err := s.repo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	return out, nil
}

// Get performs the ownership-scoped lookup: a post owned by someone else
// is indistinguishable from a missing one.
func (s *Service) Get(ctx context.Context, id string, authorID int64) (*entity.Blog, error) {
	b, err := s.repo.GetForAuthor(ctx, id, authorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	return b, nil
}

// Update applies a partial update after an explicit ownership check.
// Unlike Get, non-owners receive a forbidden error here; the contract
// deliberately reveals existence on the mutate paths.
func (s *Service) Update(ctx context.Context, id string, authorID int64, title, content *string) (*entity.Blog, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	if existing.AuthorID != authorID {
		return nil, ErrEditForbidden
	}
	updated, err := s.repo.Update(ctx, id, title, content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperr.Wrap(apperr.KindInternal, "", err)
	}
	return updated, nil
}

// Delete removes a post after the same ownership check as Update.
func (s *Service) Delete(ctx context.Context, id string, authorID int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return apperr.Wrap(apperr.KindInternal, "", err)
	}
	if existing.AuthorID != authorID {
		return ErrDelForbidden
	}
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
