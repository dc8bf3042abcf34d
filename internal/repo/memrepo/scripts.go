package memrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// Scripts is an in-memory script-metadata repository. Running scripts
// is the scripting runtime's concern; this only lists and
// permission-gates them.
type Scripts struct {
	mu   sync.Mutex
	byID map[int]domain.ScriptMeta
}

func NewScripts(scripts ...domain.ScriptMeta) *Scripts {
	s := &Scripts{byID: make(map[int]domain.ScriptMeta)}
	for _, sc := range scripts {
		s.byID[sc.ID] = sc
	}
	return s
}

func (r *Scripts) List(_ context.Context) ([]domain.ScriptMeta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ScriptMeta, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Scripts) GetByID(_ context.Context, id int) (domain.ScriptMeta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return domain.ScriptMeta{}, hobbserrors.NotFound("script")
	}
	return s, nil
}
