package domain

import "time"

// BoardType distinguishes threaded discussion boards from flat posting
// boards.
type BoardType int

const (
	BoardThread BoardType = iota
	BoardFlat
)

// Board is a message area. Invariants: inactive boards are invisible to
// non-sysops; a user with role R may read iff R >= MinReadRole, write
// iff R >= MinWriteRole.
type Board struct {
	ID           int
	Name         string
	Description  string
	BoardType    BoardType
	MinReadRole  Role
	MinWriteRole Role
	IsActive     bool
	SortOrder    int
	CreatedAt    time.Time
}

// CanRead reports whether a user with the given role may read this board.
func (b Board) CanRead(role Role) bool {
	return role.AtLeast(b.MinReadRole)
}

// CanWrite reports whether a user with the given role may post to this
// board.
func (b Board) CanWrite(role Role) bool {
	return role.AtLeast(b.MinWriteRole)
}

// Visible reports whether the board should appear in listings for the
// given role: inactive boards are invisible to everyone except SysOps.
func (b Board) Visible(role Role) bool {
	if !b.IsActive {
		return role == RoleSysOp
	}
	return true
}

// Thread groups posts within a Thread-type board.
type Thread struct {
	ID        int
	BoardID   int
	Title     string
	AuthorID  int
	PostCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Post is a single message. A thread-post has ThreadID set and Title
// empty; a flat-post has ThreadID unset (0) and Title set.
type Post struct {
	ID        int
	BoardID   int
	ThreadID  int // 0 means "no thread" (flat board post)
	AuthorID  int
	Title     string
	Body      string
	CreatedAt time.Time
}

// IsThreadPost reports whether this post belongs to a thread.
func (p Post) IsThreadPost() bool {
	return p.ThreadID != 0
}

// ReadPosition is a user's high-water mark of the largest post id
// considered read within a board. Unique on (UserID, BoardID).
type ReadPosition struct {
	UserID         int
	BoardID        int
	LastReadPostID int
	LastReadAt     time.Time
}
