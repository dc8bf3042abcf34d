package memrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// Boards is a static in-memory board list. Boards are seeded once at
// startup and not mutated by screen handlers; board administration
// belongs to the persistence layer's own tooling.
type Boards struct {
	mu   sync.RWMutex
	byID map[int]domain.Board
}

// NewBoards creates a Boards repository pre-seeded with the given
// boards.
func NewBoards(boards ...domain.Board) *Boards {
	b := &Boards{byID: make(map[int]domain.Board)}
	for _, board := range boards {
		b.byID[board.ID] = board
	}
	return b
}

func (r *Boards) GetByID(_ context.Context, id int) (domain.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byID[id]
	if !ok {
		return domain.Board{}, hobbserrors.NotFound("board")
	}
	return b, nil
}

func (r *Boards) List(_ context.Context) ([]domain.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Board, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}
