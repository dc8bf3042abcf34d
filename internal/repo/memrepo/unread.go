package memrepo

import (
	"context"
	"sync"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

type unreadKey struct {
	userID  int
	boardID int
}

// Unread tracks per-(user,board) read positions.
type Unread struct {
	mu         sync.Mutex
	byKey      map[unreadKey]domain.ReadPosition
	maxPostID  func(ctx context.Context, boardID int) (int, error)
	postsAfter func(ctx context.Context, boardID, afterID int) (int, error)
}

// NewUnread creates an Unread repository. maxPostID and postsAfter are
// callbacks into the Posts repository so Unread never needs its own
// copy of post data (avoiding a second source of truth).
func NewUnread(
	maxPostID func(ctx context.Context, boardID int) (int, error),
	postsAfter func(ctx context.Context, boardID, afterID int) (int, error),
) *Unread {
	return &Unread{
		byKey:      make(map[unreadKey]domain.ReadPosition),
		maxPostID:  maxPostID,
		postsAfter: postsAfter,
	}
}

func (r *Unread) Get(_ context.Context, userID, boardID int) (domain.ReadPosition, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.byKey[unreadKey{userID, boardID}]
	return pos, ok, nil
}

func (r *Unread) MarkRead(_ context.Context, userID, boardID, postID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := unreadKey{userID, boardID}
	existing := r.byKey[k]
	if postID > existing.LastReadPostID {
		r.byKey[k] = domain.ReadPosition{
			UserID:         userID,
			BoardID:        boardID,
			LastReadPostID: postID,
			LastReadAt:     time.Now(),
		}
	}
	return nil
}

func (r *Unread) MarkAllRead(ctx context.Context, userID, boardID int) error {
	max, err := r.maxPostID(ctx, boardID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[unreadKey{userID, boardID}] = domain.ReadPosition{
		UserID:         userID,
		BoardID:        boardID,
		LastReadPostID: max,
		LastReadAt:     time.Now(),
	}
	return nil
}

func (r *Unread) CountUnread(ctx context.Context, userID, boardID int) (int, error) {
	r.mu.Lock()
	pos, ok := r.byKey[unreadKey{userID, boardID}]
	r.mu.Unlock()

	after := 0
	if ok {
		after = pos.LastReadPostID
	}
	return r.postsAfter(ctx, boardID, after)
}
