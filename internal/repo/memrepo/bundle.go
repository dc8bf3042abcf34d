package memrepo

import (
	"context"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	"github.com/hobbs-bbs/hobbs/internal/repo"
)

// New builds a complete repo.Repositories backed by in-memory maps,
// wiring Unread's callbacks into the shared Messages store so post
// counts and unread counts never drift apart.
func New(boards ...domain.Board) repo.Repositories {
	users := NewUsers()
	messages := NewMessages()
	files := NewFiles()
	mail := NewMail()
	boardsRepo := NewBoards(boards...)

	unread := NewUnread(
		func(ctx context.Context, boardID int) (int, error) {
			return messages.MaxPostID(ctx, boardID)
		},
		func(ctx context.Context, boardID, afterID int) (int, error) {
			posts, err := messages.ListPostsByBoard(ctx, boardID)
			if err != nil {
				return 0, err
			}
			n := 0
			for _, p := range posts {
				if p.ID > afterID {
					n++
				}
			}
			return n, nil
		},
	)

	return repo.Repositories{
		Users:   users,
		Boards:  boardsRepo,
		Threads: messages.Threads(),
		Posts:   messages.Posts(),
		Unread:  unread,
		Mail:    mail,
		Files:   files,
		RSS:     NewRSS(),
		Scripts: NewScripts(),
		Admin:   NewAdmin(users, messages, files, mail),
	}
}
