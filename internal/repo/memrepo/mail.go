package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// Mail is an in-memory private-message repository. Physical deletion
// only happens once both deletion flags are set.
type Mail struct {
	mu     sync.Mutex
	byID   map[int]*domain.Mail
	nextID int
}

func NewMail() *Mail {
	return &Mail{byID: make(map[int]*domain.Mail), nextID: 1}
}

func (r *Mail) GetByID(_ context.Context, id int) (domain.Mail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return domain.Mail{}, hobbserrors.NotFound("mail")
	}
	return *m, nil
}

func (r *Mail) Inbox(_ context.Context, recipientID int) ([]domain.Mail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Mail, 0)
	for _, m := range r.byID {
		if m.RecipientID == recipientID && !m.DeletedByRecipient {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Mail) Sent(_ context.Context, senderID int) ([]domain.Mail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Mail, 0)
	for _, m := range r.byID {
		if m.SenderID == senderID && !m.DeletedBySender {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Mail) Send(_ context.Context, m domain.Mail) (domain.Mail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID
	r.nextID++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.byID[m.ID] = &m
	return m, nil
}

func (r *Mail) MarkRead(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return hobbserrors.NotFound("mail")
	}
	m.IsRead = true
	return nil
}

// DeleteForSide flags one side's deletion and physically purges the
// row once both sides have flagged it.
func (r *Mail) DeleteForSide(_ context.Context, id int, asRecipient bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return hobbserrors.NotFound("mail")
	}
	if asRecipient {
		m.DeletedByRecipient = true
	} else {
		m.DeletedBySender = true
	}
	if m.PurgeEligible() {
		delete(r.byID, id)
	}
	return nil
}
