package memrepo

import (
	"context"
	"strings"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

// Admin composes the other in-memory repositories to answer the
// cross-cutting read-model queries the admin screens use: per-user
// post/file/mail aggregate counts and username search.
type Admin struct {
	users    *Users
	messages *Messages
	files    *Files
	mail     *Mail
}

func NewAdmin(users *Users, messages *Messages, files *Files, mail *Mail) *Admin {
	return &Admin{users: users, messages: messages, files: files, mail: mail}
}

func (a *Admin) UserDetail(ctx context.Context, userID int) (domain.UserDetail, error) {
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UserDetail{}, err
	}

	detail := domain.UserDetail{User: u}

	a.messages.mu.Lock()
	for _, p := range a.messages.posts {
		if p.AuthorID == userID {
			detail.PostCount++
		}
	}
	a.messages.mu.Unlock()

	a.files.mu.Lock()
	for _, f := range a.files.files {
		if f.UploaderID == userID {
			detail.FileCount++
		}
	}
	a.files.mu.Unlock()

	a.mail.mu.Lock()
	for _, m := range a.mail.byID {
		if m.SenderID == userID {
			detail.MailSentCount++
		}
		if m.RecipientID == userID {
			detail.MailReceivedCount++
		}
	}
	a.mail.mu.Unlock()

	return detail, nil
}

func (a *Admin) SearchUsers(ctx context.Context, query string) ([]domain.User, error) {
	all, err := a.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return all, nil
	}
	q := strings.ToLower(query)
	out := make([]domain.User, 0)
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Nickname), q) {
			out = append(out, u)
		}
	}
	return out, nil
}
