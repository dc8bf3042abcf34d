package domain

import "time"

// RSSFeed is a subscribed feed source. Fetching the feed itself is an
// external collaborator; the core only persists and reads
// feed/item/read-position rows.
type RSSFeed struct {
	ID        int
	Name      string
	URL       string
	MinRole   Role
	IsActive  bool
	CreatedAt time.Time
}

// RSSItem is a single fetched entry.
type RSSItem struct {
	ID        int
	FeedID    int
	Title     string
	Link      string
	Published time.Time
	FetchedAt time.Time
}

// RSSReadPosition mirrors ReadPosition for RSS feeds: the highest
// RSSItem.ID a user has viewed within a feed.
type RSSReadPosition struct {
	UserID         int
	FeedID         int
	LastReadItemID int
}

// ScriptMeta describes a Lua script the admin has registered as a
// door/utility. Execution is the scripting runtime's concern; the core
// only tracks metadata needed to list and permission-gate scripts.
type ScriptMeta struct {
	ID        int
	Name      string
	Path      string
	MinRole   Role
	IsActive  bool
	CreatedAt time.Time
}
