package blog

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/inkwell-labs/blog-core/internal/blog/entity"
	userentity "github.com/inkwell-labs/blog-core/internal/user/entity"
)

// memRepo is an in-memory Repository used by service and handler tests.
type memRepo struct {
	mu    sync.Mutex
	blogs map[string]*entity.Blog
	// authors known to the fake join
	authors map[int64]userentity.PublicUser
	clock   time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		blogs:   map[string]*entity.Blog{},
		authors: map[int64]userentity.PublicUser{},
		clock:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memRepo) addAuthor(id int64, email string) {
	m.authors[id] = userentity.PublicUser{ID: id, Username: email, Email: email}
}

func (m *memRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memRepo) joined(b *entity.Blog) *entity.Blog {
	out := *b
	out.Author = m.authors[b.AuthorID]
	return &out
}

func (m *memRepo) Create(ctx context.Context, b *entity.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	m.blogs[b.ID] = &cp
	return nil
}

func (m *memRepo) ListByAuthor(ctx context.Context, authorID int64) ([]*entity.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Blog
	for _, b := range m.blogs {
		if b.AuthorID == authorID {
			out = append(out, m.joined(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memRepo) GetForAuthor(ctx context.Context, id string, authorID int64) (*entity.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blogs[id]
	if !ok || b.AuthorID != authorID {
		return nil, sql.ErrNoRows
	}
	return m.joined(b), nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*entity.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blogs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m.joined(b), nil
}

func (m *memRepo) Update(ctx context.Context, id string, title, content *string) (*entity.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blogs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if title != nil {
		b.Title = *title
	}
	if content != nil {
		b.Content = *content
	}
	b.UpdatedAt = m.tick()
	return m.joined(b), nil
}

func (m *memRepo) Delete(ctx context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blogs[id]; !ok {
		return 0, nil
	}
	delete(m.blogs, id)
	return 1, nil
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	repo.addAuthor(1, "a@x.com")
	repo.addAuthor(2, "b@x.com")
	return NewService(nil, repo), repo
}

func TestCreate(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	b, err := s.Create(context.Background(), 1, "T", "C")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if b.ID == "" {
		t.Fatalf("expected generated id")
	}
	if b.AuthorID != 1 || b.Author.ID != 1 {
		t.Fatalf("author must be the caller: %+v", b)
	}
	if !b.CreatedAt.Equal(b.UpdatedAt) {
		t.Fatalf("created and updated must match at creation")
	}
}

func TestCreate_RequiresTitleAndContent(t *testing.T) {
	t.Parallel()

	s, repo := newTestService(t)
	for _, tc := range []struct{ title, content string }{
		{"", "C"},
		{"T", ""},
		{"  ", "C"},
	} {
		if _, err := s.Create(context.Background(), 1, tc.title, tc.content); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("(%q,%q): got %v want ErrMissingFields", tc.title, tc.content, err)
		}
	}
	if len(repo.blogs) != 0 {
		t.Fatalf("nothing may be persisted on validation failure")
	}
}

func TestList_OwnerScopedNewestFirst(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	first, _ := s.Create(context.Background(), 1, "t1", "c")
	second, _ := s.Create(context.Background(), 1, "t2", "c")
	third, _ := s.Create(context.Background(), 1, "t3", "c")
	if _, err := s.Create(context.Background(), 2, "other", "c"); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, err := s.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("list must contain only the caller's posts: %d", len(got))
	}
	wantOrder := []string{third.ID, second.ID, first.ID}
	for i, b := range got {
		if b.ID != wantOrder[i] {
			t.Fatalf("order: got %s at %d want %s", b.ID, i, wantOrder[i])
		}
	}
}

func TestGet_ForeignPostIsNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	b, _ := s.Create(context.Background(), 1, "T", "C")

	if _, err := s.Get(context.Background(), b.ID, 1); err != nil {
		t.Fatalf("owner Get error: %v", err)
	}
	// the read path does not distinguish "not yours" from "missing"
	if _, err := s.Get(context.Background(), b.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign Get: got %v want ErrNotFound", err)
	}
	if _, err := s.Get(context.Background(), "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing Get: got %v want ErrNotFound", err)
	}
}

func TestUpdate_PartialAndIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	b, _ := s.Create(context.Background(), 1, "T", "C")

	title := "T2"
	got, err := s.Update(context.Background(), b.ID, 1, &title, nil)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Title != "T2" || got.Content != "C" {
		t.Fatalf("partial update broken: %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("updated_at must advance")
	}

	// same values again: same stored state, timestamp still advances
	again, err := s.Update(context.Background(), b.ID, 1, &title, nil)
	if err != nil {
		t.Fatalf("second Update error: %v", err)
	}
	if again.Title != got.Title || again.Content != got.Content {
		t.Fatalf("repeated update changed state: %+v", again)
	}
	if !again.UpdatedAt.After(got.UpdatedAt) {
		t.Fatalf("updated_at must advance on every mutation")
	}
}

func TestUpdate_NonOwnerForbiddenAndUnchanged(t *testing.T) {
	t.Parallel()

	s, repo := newTestService(t)
	b, _ := s.Create(context.Background(), 1, "T", "C")

	title := "hijacked"
	if _, err := s.Update(context.Background(), b.ID, 2, &title, nil); !errors.Is(err, ErrEditForbidden) {
		t.Fatalf("got %v want ErrEditForbidden", err)
	}
	if repo.blogs[b.ID].Title != "T" {
		t.Fatalf("post must stay unchanged after forbidden update")
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t)
	title := "T"
	if _, err := s.Update(context.Background(), "missing", 1, &title, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s, repo := newTestService(t)
	b, _ := s.Create(context.Background(), 1, "T", "C")

	if err := s.Delete(context.Background(), b.ID, 2); !errors.Is(err, ErrDelForbidden) {
		t.Fatalf("foreign delete: got %v want ErrDelForbidden", err)
	}
	if _, ok := repo.blogs[b.ID]; !ok {
		t.Fatalf("foreign delete must not remove the post")
	}

	if err := s.Delete(context.Background(), "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing delete: got %v want ErrNotFound", err)
	}

	if err := s.Delete(context.Background(), b.ID, 1); err != nil {
		t.Fatalf("owner delete error: %v", err)
	}
	if _, ok := repo.blogs[b.ID]; ok {
		t.Fatalf("post must be removed")
	}
}
