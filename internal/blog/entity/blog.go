package entity

import (
	"time"

	userentity "github.com/inkwell-labs/blog-core/internal/user/entity"
)

// Blog represents a row in the `blogs` table. Author fields are populated
// on reads via a join; AuthorID is immutable after creation.
type Blog struct {
	ID        string
	Title     string
	Content   string
	AuthorID  int64
	Author    userentity.PublicUser
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlogDTO is the projection exposed over the API.
type BlogDTO struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Content   string                `json:"content"`
	Author    userentity.PublicUser `json:"author"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// DTO maps a blog to its API projection.
func (b *Blog) DTO() BlogDTO {
	return BlogDTO{
		ID:        b.ID,
		Title:     b.Title,
		Content:   b.Content,
		Author:    b.Author,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
