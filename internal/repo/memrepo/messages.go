package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// Messages implements both repo.Threads and repo.Posts over shared
// in-memory maps under one mutex, so that thread.PostCount stays
// exactly equal to the number of non-deleted posts in the thread
// across every create/delete.
type Messages struct {
	mu           sync.Mutex
	threads      map[int]*domain.Thread
	posts        map[int]*domain.Post
	nextThreadID int
	nextPostID   int
}

// NewMessages creates an empty Messages repository.
func NewMessages() *Messages {
	return &Messages{
		threads:      make(map[int]*domain.Thread),
		posts:        make(map[int]*domain.Post),
		nextThreadID: 1,
		nextPostID:   1,
	}
}

func (r *Messages) GetByID(_ context.Context, id int) (domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return domain.Thread{}, hobbserrors.NotFound("thread")
	}
	return *t, nil
}

func (r *Messages) ListByBoard(_ context.Context, boardID int) ([]domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Thread, 0)
	for _, t := range r.threads {
		if t.BoardID == boardID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Messages) CreateWithPost(_ context.Context, t domain.Thread, body string) (domain.Thread, domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := t.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	t.ID = r.nextThreadID
	r.nextThreadID++
	t.CreatedAt = now
	t.UpdatedAt = now
	t.PostCount = 1

	p := domain.Post{
		ID:        r.nextPostID,
		BoardID:   t.BoardID,
		ThreadID:  t.ID,
		AuthorID:  t.AuthorID,
		Body:      body,
		CreatedAt: now,
	}
	r.nextPostID++

	r.threads[t.ID] = &t
	r.posts[p.ID] = &p
	return t, p, nil
}

// Delete cascades to every post in the thread.
func (r *Messages) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.threads[id]; !ok {
		return hobbserrors.NotFound("thread")
	}
	for pid, p := range r.posts {
		if p.ThreadID == id {
			delete(r.posts, pid)
		}
	}
	delete(r.threads, id)
	return nil
}

// --- repo.Posts ---

func (r *Messages) GetPostByID(_ context.Context, id int) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return domain.Post{}, hobbserrors.NotFound("post")
	}
	return *p, nil
}

func (r *Messages) ListPostsByBoard(_ context.Context, boardID int) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Post, 0)
	for _, p := range r.posts {
		if p.BoardID == boardID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Messages) ListPostsByThread(_ context.Context, threadID int) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Post, 0)
	for _, p := range r.posts {
		if p.ThreadID == threadID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Reply atomically appends a post to a thread and increments the
// thread's PostCount under the same lock.
func (r *Messages) Reply(_ context.Context, threadID int, authorID int, body string) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.threads[threadID]
	if !ok {
		return domain.Post{}, hobbserrors.NotFound("thread")
	}

	now := time.Now()
	p := domain.Post{
		ID:        r.nextPostID,
		BoardID:   t.BoardID,
		ThreadID:  threadID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: now,
	}
	r.nextPostID++
	r.posts[p.ID] = &p
	t.PostCount++
	t.UpdatedAt = now
	return p, nil
}

func (r *Messages) CreateFlat(_ context.Context, boardID, authorID int, title, body string) (domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := domain.Post{
		ID:        r.nextPostID,
		BoardID:   boardID,
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
	r.nextPostID++
	r.posts[p.ID] = &p
	return p, nil
}

// DeletePost removes a post, atomically decrementing its thread's
// PostCount when it belongs to one.
func (r *Messages) DeletePost(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return hobbserrors.NotFound("post")
	}
	delete(r.posts, id)
	if p.ThreadID != 0 {
		if t, ok := r.threads[p.ThreadID]; ok {
			t.PostCount--
		}
	}
	return nil
}

func (r *Messages) MaxPostID(_ context.Context, boardID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, p := range r.posts {
		if p.BoardID == boardID && p.ID > max {
			max = p.ID
		}
	}
	return max, nil
}

// Threads returns a view exposing the repo.Threads subset of this type.
func (r *Messages) Threads() *ThreadsView { return &ThreadsView{m: r} }

// Posts returns a view exposing the repo.Posts subset of this type.
func (r *Messages) Posts() *PostsView { return &PostsView{m: r} }

// ThreadsView adapts Messages to the repo.Threads interface's exact
// method set (GetByID/ListByBoard/CreateWithPost/Delete already match;
// this wrapper exists so Messages itself doesn't need to pick between
// two GetByID/Delete signatures for Threads vs Posts).
type ThreadsView struct{ m *Messages }

func (v *ThreadsView) GetByID(ctx context.Context, id int) (domain.Thread, error) {
	return v.m.GetByID(ctx, id)
}
func (v *ThreadsView) ListByBoard(ctx context.Context, boardID int) ([]domain.Thread, error) {
	return v.m.ListByBoard(ctx, boardID)
}
func (v *ThreadsView) CreateWithPost(ctx context.Context, t domain.Thread, body string) (domain.Thread, domain.Post, error) {
	return v.m.CreateWithPost(ctx, t, body)
}
func (v *ThreadsView) Delete(ctx context.Context, id int) error {
	return v.m.Delete(ctx, id)
}

// PostsView adapts Messages to the repo.Posts interface.
type PostsView struct{ m *Messages }

func (v *PostsView) GetByID(ctx context.Context, id int) (domain.Post, error) {
	return v.m.GetPostByID(ctx, id)
}
func (v *PostsView) ListByBoard(ctx context.Context, boardID int) ([]domain.Post, error) {
	return v.m.ListPostsByBoard(ctx, boardID)
}
func (v *PostsView) ListByThread(ctx context.Context, threadID int) ([]domain.Post, error) {
	return v.m.ListPostsByThread(ctx, threadID)
}
func (v *PostsView) Reply(ctx context.Context, threadID int, authorID int, body string) (domain.Post, error) {
	return v.m.Reply(ctx, threadID, authorID, body)
}
func (v *PostsView) CreateFlat(ctx context.Context, boardID, authorID int, title, body string) (domain.Post, error) {
	return v.m.CreateFlat(ctx, boardID, authorID, title, body)
}
func (v *PostsView) Delete(ctx context.Context, id int) error {
	return v.m.DeletePost(ctx, id)
}
func (v *PostsView) MaxPostID(ctx context.Context, boardID int) (int, error) {
	return v.m.MaxPostID(ctx, boardID)
}
