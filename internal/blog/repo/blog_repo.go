package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/inkwell-labs/blog-core/internal/blog/entity"
	userentity "github.com/inkwell-labs/blog-core/internal/user/entity"
)

// BlogRepo provides data access for the blogs table using sqlx.
type BlogRepo struct {
	db *sqlx.DB
}

func NewBlogRepo(db *sqlx.DB) *BlogRepo { return &BlogRepo{db: db} }

// EnsureTable creates the blogs table if not exists (idempotent).
func (r *BlogRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS blogs (
  id VARCHAR(32) PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL DEFAULT '',
  author_id BIGINT NOT NULL REFERENCES users(id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_blogs_author_created ON blogs(author_id, created_at DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

type blogRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	Content        string    `db:"content"`
	AuthorID       int64     `db:"author_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	AuthorUsername string    `db:"author_username"`
	AuthorEmail    string    `db:"author_email"`
	AuthorName     *string   `db:"author_name"`
}

func (row *blogRow) toEntity() *entity.Blog {
	author := userentity.PublicUser{
		ID:       row.AuthorID,
		Username: row.AuthorUsername,
		Email:    row.AuthorEmail,
	}
	if row.AuthorName != nil {
		author.Name = *row.AuthorName
	}
	return &entity.Blog{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		AuthorID:  row.AuthorID,
		Author:    author,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const joinedColumns = `b.id, b.title, b.content, b.author_id, b.created_at, b.updated_at,
		u.username AS author_username, u.email AS author_email, u.name AS author_name`

// Create inserts a new blog row and fills in the generated timestamps.
func (r *BlogRepo) Create(ctx context.Context, b *entity.Blog) error {
	const q = `INSERT INTO blogs (id, title, content, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, q, b.ID, b.Title, b.Content, b.AuthorID)
	return row.Scan(&b.CreatedAt, &b.UpdatedAt)
}

// ListByAuthor returns all posts owned by authorID, newest first.
func (r *BlogRepo) ListByAuthor(ctx context.Context, authorID int64) ([]*entity.Blog, error) {
	const q = `SELECT ` + joinedColumns + `
		FROM blogs b JOIN users u ON u.id = b.author_id
		WHERE b.author_id=$1
		ORDER BY b.created_at DESC`
	var rows []blogRow
	if err := r.db.SelectContext(ctx, &rows, q, authorID); err != nil {
		return nil, err
	}
	out := make([]*entity.Blog, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out, nil
}

// GetForAuthor is the ownership-scoped lookup: a post that exists but
// belongs to someone else surfaces as sql.ErrNoRows.
func (r *BlogRepo) GetForAuthor(ctx context.Context, id string, authorID int64) (*entity.Blog, error) {
	const q = `SELECT ` + joinedColumns + `
		FROM blogs b JOIN users u ON u.id = b.author_id
		WHERE b.id=$1 AND b.author_id=$2`
	var row blogRow
	if err := r.db.GetContext(ctx, &row, q, id, authorID); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// GetByID fetches a post regardless of owner, for the explicit ownership
// check on the mutate paths.
func (r *BlogRepo) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	const q = `SELECT ` + joinedColumns + `
		FROM blogs b JOIN users u ON u.id = b.author_id
		WHERE b.id=$1`
	var row blogRow
	if err := r.db.GetContext(ctx, &row, q, id); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// Update applies a partial update to title/content and refreshes
// updated_at. Author and created_at are never touched.
func (r *BlogRepo) Update(ctx context.Context, id string, title, content *string) (*entity.Blog, error) {
	const q = `WITH updated AS (
		UPDATE blogs SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			updated_at = NOW()
		WHERE id=$1
		RETURNING id, title, content, author_id, created_at, updated_at
	)
	SELECT b.id, b.title, b.content, b.author_id, b.created_at, b.updated_at,
		u.username AS author_username, u.email AS author_email, u.name AS author_name
	FROM updated b JOIN users u ON u.id = b.author_id`
	var row blogRow
	if err := r.db.GetContext(ctx, &row, q, id, title, content); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

// Delete removes a post permanently. Returns the number of rows removed.
func (r *BlogRepo) Delete(ctx context.Context, id string) (int64, error) {
	const q = `DELETE FROM blogs WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
