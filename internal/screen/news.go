package screen

import (
	"strconv"
	"strings"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

// runNews is the News-state entry handler: lists subscribed RSS feeds
// visible to the session's role, then a feed's items, tracking a
// per-user read position the same way boards track ReadPosition.
func runNews(c *ScreenContext) (ScreenResult, error) {
	role := currentRole(c)
	feeds, err := c.Deps.Repos.RSS.ListFeeds(ctxOf(c))
	if err != nil {
		return Back(), c.SendLine(c.T("error.database"))
	}
	visible := make([]domain.RSSFeed, 0, len(feeds))
	for _, f := range feeds {
		if f.IsActive && role.AtLeast(f.MinRole) {
			visible = append(visible, f)
		}
	}

	offset := 0
	for {
		page, hasNext, hasPrev := paginate(visible, offset)
		if err := showFeedPage(c, page, hasNext, hasPrev); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}
		action, sel := parsePageChoice(input)
		switch action {
		case pageNext:
			if hasNext {
				offset += PageSize
			}
		case pagePrev:
			if hasPrev {
				offset -= PageSize
			}
		case pageQuit:
			return Back(), nil
		case pageSelect:
			if sel < 1 || sel > len(page) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return Back(), err
				}
				continue
			}
			if err := runFeedItems(c, page[sel-1]); err != nil {
				return Back(), err
			}
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}

func showFeedPage(c *ScreenContext, page []domain.RSSFeed, hasNext, hasPrev bool) error {
	var b strings.Builder
	b.WriteString("\n=== News Feeds ===\n")
	for i, f := range page {
		b.WriteString(strconv.Itoa(i+1) + ". " + f.Name + "\n")
	}
	writePagerFooter(&b, hasNext, hasPrev)
	return c.Send(b.String())
}

func runFeedItems(c *ScreenContext, feed domain.RSSFeed) error {
	items, err := c.Deps.Repos.RSS.ListItems(ctxOf(c), feed.ID)
	if err != nil {
		return c.SendLine(c.T("error.database"))
	}

	var lastRead int
	if c.Sess.UserID != nil {
		if pos, ok, err := c.Deps.Repos.RSS.ReadPosition(ctxOf(c), *c.Sess.UserID, feed.ID); err == nil && ok {
			lastRead = pos.LastReadItemID
		}
	}

	offset := 0
	for {
		page, hasNext, hasPrev := paginate(items, offset)
		var b strings.Builder
		b.WriteString("\n=== " + feed.Name + " ===\n")
		for i, it := range page {
			unread := ""
			if it.ID > lastRead {
				unread = " *"
			}
			b.WriteString(strconv.Itoa(i+1) + ". " + it.Title + unread + "\n")
		}
		writePagerFooter(&b, hasNext, hasPrev)
		if err := c.Send(b.String()); err != nil {
			return err
		}

		if err := c.Send("> "); err != nil {
			return err
		}
		input, err := c.ReadLine()
		if err != nil {
			return err
		}
		action, sel := parsePageChoice(input)
		switch action {
		case pageNext:
			if hasNext {
				offset += PageSize
			}
		case pagePrev:
			if hasPrev {
				offset -= PageSize
				if offset < 0 {
					offset = 0
				}
			}
		case pageQuit:
			return nil
		case pageSelect:
			if sel < 1 || sel > len(page) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return err
				}
				continue
			}
			item := page[sel-1]
			if err := c.SendLine("\nLink: " + item.Link); err != nil {
				return err
			}
			if c.Sess.UserID != nil {
				if err := c.Deps.Repos.RSS.MarkRead(ctxOf(c), *c.Sess.UserID, feed.ID, item.ID); err != nil {
					return c.SendLine(c.T("error.database"))
				}
				if item.ID > lastRead {
					lastRead = item.ID
				}
			}
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return err
			}
		}
	}
}
