// Package repo defines the repository capability bundle the screen
// handlers consume: a set of small interfaces whose methods return
// domain DTOs, so storage backends and in-memory test doubles are
// interchangeable. Implementations must provide at least
// read-committed isolation; operations spanning multiple rows (post
// create/delete + thread post_count, role-change + last-SysOp check)
// must be internally atomic, with the check and the mutation performed
// in a single repository call.
package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

// Users is the user repository contract.
type Users interface {
	GetByID(ctx context.Context, id int) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	Update(ctx context.Context, id int, update domain.UserUpdate) (domain.User, error)
	Count(ctx context.Context) (int, error)
	CountActiveSysOps(ctx context.Context) (int, error)
	List(ctx context.Context) ([]domain.User, error)
}

// Boards is the board repository contract.
type Boards interface {
	GetByID(ctx context.Context, id int) (domain.Board, error)
	List(ctx context.Context) ([]domain.Board, error)
}

// Threads is the thread repository contract. CreateWithPost and Delete
// must maintain the post-count invariant atomically.
type Threads interface {
	GetByID(ctx context.Context, id int) (domain.Thread, error)
	ListByBoard(ctx context.Context, boardID int) ([]domain.Thread, error)
	// CreateWithPost atomically creates a thread and its first post,
	// setting PostCount to 1.
	CreateWithPost(ctx context.Context, t domain.Thread, body string) (domain.Thread, domain.Post, error)
	// Delete cascades to all posts in the thread.
	Delete(ctx context.Context, id int) error
}

// Posts is the post repository contract. Reply/Create on a threaded
// post must atomically increment the parent thread's PostCount; Delete
// must atomically decrement it when ThreadID is set.
type Posts interface {
	GetByID(ctx context.Context, id int) (domain.Post, error)
	ListByBoard(ctx context.Context, boardID int) ([]domain.Post, error)
	ListByThread(ctx context.Context, threadID int) ([]domain.Post, error)
	// Reply atomically creates a post in an existing thread and
	// increments the thread's post_count.
	Reply(ctx context.Context, threadID int, authorID int, body string) (domain.Post, error)
	// CreateFlat creates a standalone titled post on a Flat board.
	CreateFlat(ctx context.Context, boardID, authorID int, title, body string) (domain.Post, error)
	// Delete removes a post, atomically decrementing its thread's
	// post_count when the post belongs to a thread.
	Delete(ctx context.Context, id int) error
	MaxPostID(ctx context.Context, boardID int) (int, error)
}

// Unread is the read-position repository contract. A board's unread
// count is the number of posts whose id exceeds the stored position.
type Unread interface {
	Get(ctx context.Context, userID, boardID int) (domain.ReadPosition, bool, error)
	MarkRead(ctx context.Context, userID, boardID, postID int) error
	// MarkAllRead sets the position to the maximum post id in the board.
	MarkAllRead(ctx context.Context, userID, boardID int) error
	CountUnread(ctx context.Context, userID, boardID int) (int, error)
}

// Mail is the private-message repository contract.
type Mail interface {
	GetByID(ctx context.Context, id int) (domain.Mail, error)
	Inbox(ctx context.Context, recipientID int) ([]domain.Mail, error)
	Sent(ctx context.Context, senderID int) ([]domain.Mail, error)
	Send(ctx context.Context, m domain.Mail) (domain.Mail, error)
	MarkRead(ctx context.Context, id int) error
	// DeleteForSide sets the recipient's deletion flag when asRecipient is
	// true and the sender's otherwise, purging the row once both sides
	// have flagged it.
	DeleteForSide(ctx context.Context, id int, asRecipient bool) error
}

// Files is the file/folder repository contract.
type Files interface {
	GetFolder(ctx context.Context, id uuid.UUID) (domain.Folder, error)
	ListFolders(ctx context.Context, parentID uuid.UUID) ([]domain.Folder, error)
	ListFiles(ctx context.Context, folderID uuid.UUID) ([]domain.File, error)
	CreateFolder(ctx context.Context, f domain.Folder) (domain.Folder, error)
	CreateFile(ctx context.Context, f domain.File) (domain.File, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
	RecordDownload(ctx context.Context, id uuid.UUID) error
}

// RSS is the feed/item repository contract.
type RSS interface {
	ListFeeds(ctx context.Context) ([]domain.RSSFeed, error)
	ListItems(ctx context.Context, feedID int) ([]domain.RSSItem, error)
	ReadPosition(ctx context.Context, userID, feedID int) (domain.RSSReadPosition, bool, error)
	MarkRead(ctx context.Context, userID, feedID, itemID int) error
}

// Scripts is the script-metadata repository contract.
type Scripts interface {
	List(ctx context.Context) ([]domain.ScriptMeta, error)
	GetByID(ctx context.Context, id int) (domain.ScriptMeta, error)
}

// Admin bundles the cross-cutting read-model queries admin screens use.
type Admin interface {
	UserDetail(ctx context.Context, userID int) (domain.UserDetail, error)
	SearchUsers(ctx context.Context, query string) ([]domain.User, error)
}

// Repositories bundles every repository contract the screen handlers
// may need. A ScreenContext carries one of these.
type Repositories struct {
	Users   Users
	Boards  Boards
	Threads Threads
	Posts   Posts
	Unread  Unread
	Mail    Mail
	Files   Files
	RSS     RSS
	Scripts Scripts
	Admin   Admin
}
