// Package memrepo implements the internal/repo contracts over
// in-memory maps, one mutex per store. It backs the tests and gives a
// freshly built hobbsd something to run against before a persistent
// backend is wired in.
package memrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// Users is an in-memory Users repository. The first user ever created
// is promoted to SysOp under the same lock that inserts it.
type Users struct {
	mu     sync.Mutex
	byID   map[int]*domain.User
	nextID int
}

// NewUsers creates an empty Users repository.
func NewUsers() *Users {
	return &Users{byID: make(map[int]*domain.User), nextID: 1}
}

func (r *Users) GetByID(_ context.Context, id int) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, hobbserrors.NotFound("user")
	}
	return *u, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if strings.EqualFold(u.Username, username) {
			return *u, nil
		}
	}
	return domain.User{}, hobbserrors.NotFound("user")
}

// Create inserts a new user, assigning it the next ID. If this is the
// first user ever created, its role is atomically forced to SysOp.
func (r *Users) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if strings.EqualFold(existing.Username, u.Username) {
			return domain.User{}, hobbserrors.Validation("username already exists")
		}
	}

	if len(r.byID) == 0 {
		u.Role = domain.RoleSysOp
	}

	u.ID = r.nextID
	r.nextID++
	r.byID[u.ID] = &u
	return u, nil
}

func (r *Users) Update(_ context.Context, id int, update domain.UserUpdate) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, hobbserrors.NotFound("user")
	}
	if update.IsEmpty() {
		return *u, nil
	}

	// The last-SysOp invariant spans the whole users map, so it is
	// enforced here, under the same lock that performs the mutation.
	if update.Role != nil && *update.Role != domain.RoleSysOp && u.Role == domain.RoleSysOp {
		if r.countActiveSysOpsLocked() <= 1 {
			return domain.User{}, hobbserrors.ErrLastSysOp
		}
	}
	if update.IsActive != nil && !*update.IsActive && u.Role == domain.RoleSysOp {
		if r.countActiveSysOpsLocked() <= 1 {
			return domain.User{}, hobbserrors.ErrLastSysOp
		}
	}

	if update.Nickname != nil {
		u.Nickname = *update.Nickname
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	if update.Profile != nil {
		u.Profile = *update.Profile
	}
	if update.Encoding != nil {
		u.Encoding = *update.Encoding
	}
	if update.Language != nil {
		u.Language = *update.Language
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	if update.LastLogin != nil {
		u.LastLogin = *update.LastLogin
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	return *u, nil
}

func (r *Users) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *Users) CountActiveSysOps(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countActiveSysOpsLocked(), nil
}

func (r *Users) countActiveSysOpsLocked() int {
	n := 0
	for _, u := range r.byID {
		if u.Role == domain.RoleSysOp && u.IsActive {
			n++
		}
	}
	return n
}

func (r *Users) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, nil
}
