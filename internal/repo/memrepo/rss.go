package memrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

type rssKey struct {
	userID int
	feedID int
}

// RSS is an in-memory feed/item/read-position repository. Fetching is
// an external collaborator; this only stores what the fetcher would
// have produced.
type RSS struct {
	mu    sync.Mutex
	feeds map[int]domain.RSSFeed
	items map[int][]domain.RSSItem // feedID -> items
	pos   map[rssKey]domain.RSSReadPosition
}

func NewRSS(feeds ...domain.RSSFeed) *RSS {
	r := &RSS{
		feeds: make(map[int]domain.RSSFeed),
		items: make(map[int][]domain.RSSItem),
		pos:   make(map[rssKey]domain.RSSReadPosition),
	}
	for _, f := range feeds {
		r.feeds[f.ID] = f
	}
	return r
}

func (r *RSS) ListFeeds(_ context.Context) ([]domain.RSSFeed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RSSFeed, 0, len(r.feeds))
	for _, f := range r.feeds {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RSS) ListItems(_ context.Context, feedID int) ([]domain.RSSItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := append([]domain.RSSItem(nil), r.items[feedID]...)
	sort.Slice(items, func(i, j int) bool { return items[i].Published.After(items[j].Published) })
	return items, nil
}

func (r *RSS) ReadPosition(_ context.Context, userID, feedID int) (domain.RSSReadPosition, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pos[rssKey{userID, feedID}]
	return p, ok, nil
}

func (r *RSS) MarkRead(_ context.Context, userID, feedID, itemID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := rssKey{userID, feedID}
	existing := r.pos[k]
	if itemID > existing.LastReadItemID {
		r.pos[k] = domain.RSSReadPosition{UserID: userID, FeedID: feedID, LastReadItemID: itemID}
	}
	return nil
}
