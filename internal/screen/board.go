package screen

import (
	"strconv"
	"strings"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	"github.com/hobbs-bbs/hobbs/internal/ratelimit"
)

// runBoardList is the Board-state entry handler: lists visible boards,
// paginated, and drops into either the thread list (Thread-type) or the
// flat post list (Flat-type) for a selection.
func runBoardList(c *ScreenContext) (ScreenResult, error) {
	role := currentRole(c)
	boards, err := c.Deps.Repos.Boards.List(ctxOf(c))
	if err != nil {
		return Back(), c.SendLine(c.T("error.database"))
	}

	visible := make([]domain.Board, 0, len(boards))
	for _, b := range boards {
		if b.Visible(role) {
			visible = append(visible, b)
		}
	}

	offset := 0
	for {
		page, hasNext, hasPrev := paginate(visible, offset)
		if err := showBoardPage(c, page, hasNext, hasPrev); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}

		trimmed := strings.TrimSpace(input)
		if upper := strings.ToUpper(trimmed); strings.HasPrefix(upper, "A") && c.Sess.UserID != nil {
			if err := runMarkAllRead(c, page, trimmed[1:]); err != nil {
				return Back(), err
			}
			continue
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
			return Back(), nil
		case pageSelect:
			if sel < 1 || sel > len(page) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return Back(), err
				}
				continue
			}
			board := page[sel-1]
			if !board.CanRead(role) {
				if err := c.SendLine(c.T("error.permission")); err != nil {
					return Back(), err
				}
				continue
			}
			var result ScreenResult
			var err error
			if board.BoardType == domain.BoardThread {
				result, err = runThreadList(c, board)
			} else {
				result, err = runFlatPostList(c, board)
			}
			if err != nil {
				return Back(), err
			}
			if result.Kind != ResultBack {
				return result, nil
			}
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}

func showBoardPage(c *ScreenContext, page []domain.Board, hasNext, hasPrev bool) error {
	var b strings.Builder
	b.WriteString("\n=== Boards ===\n")
	role := currentRole(c)
	for i, board := range page {
		unread := ""
		if c.Sess.UserID != nil {
			if n, err := c.Deps.Repos.Unread.CountUnread(ctxOf(c), *c.Sess.UserID, board.ID); err == nil && n > 0 {
				unread = " (" + strconv.Itoa(n) + " unread)"
			}
		}
		kind := "Flat"
		if board.BoardType == domain.BoardThread {
			kind = "Thread"
		}
		locked := ""
		if !board.CanWrite(role) {
			locked = " [read-only]"
		}
		b.WriteString(strconv.Itoa(i+1) + ". " + board.Name + " [" + kind + "]" + locked + unread + "\n")
	}
	if c.Sess.UserID != nil {
		b.WriteString("\nA#=mark all read")
	}
	writePagerFooter(&b, hasNext, hasPrev)
	return c.Send(b.String())
}

func writePagerFooter(b *strings.Builder, hasNext, hasPrev bool) {
	b.WriteString("\n")
	if hasNext {
		b.WriteString("[N]ext  ")
	}
	if hasPrev {
		b.WriteString("[P]rev  ")
	}
	b.WriteString("#=select  [Q]uit\n")
}

// runMarkAllRead implements the "A#"=mark-all-read board-list action
// (repo.Unread.MarkAllRead), setting the caller's read position to the
// highest post id on the selected board.
func runMarkAllRead(c *ScreenContext, page []domain.Board, indexStr string) error {
	n, err := strconv.Atoi(indexStr)
	if err != nil || n < 1 || n > len(page) {
		return c.SendLine(c.T("error.not_found"))
	}
	board := page[n-1]
	if err := c.Deps.Repos.Unread.MarkAllRead(ctxOf(c), *c.Sess.UserID, board.ID); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	return c.SendLine("Marked all read for " + board.Name + ".")
}

// runThreadList shows a Thread-type board's threads and lets the user
// open one or start a new one.
func runThreadList(c *ScreenContext, board domain.Board) (ScreenResult, error) {
	role := currentRole(c)
	offset := 0
	for {
		threads, err := c.Deps.Repos.Threads.ListByBoard(ctxOf(c), board.ID)
		if err != nil {
			return Back(), c.SendLine(c.T("error.database"))
		}

		page, hasNext, hasPrev := paginate(threads, offset)
		if err := showThreadPage(c, board, page, hasNext, hasPrev); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}

		upper := strings.ToUpper(strings.TrimSpace(input))
		if upper == "W" && board.CanWrite(role) {
			if result, err := runCreateThread(c, board); err != nil {
				return Back(), err
			} else if result.Kind != ResultBack {
				return result, nil
			}
			continue
		}

		action, sel := parsePageChoice(input)
		switch action {
		case pageQuit:
			return Back(), nil
		case pageSelect:
			if sel < 1 || sel > len(page) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return Back(), err
				}
				continue
			}
			if result, err := runThreadView(c, board, page[sel-1]); err != nil {
				return Back(), err
			} else if result.Kind != ResultBack {
				return result, nil
			}
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
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}

func showThreadPage(c *ScreenContext, board domain.Board, page []domain.Thread, hasNext, hasPrev bool) error {
	var b strings.Builder
	b.WriteString("\n=== " + board.Name + " ===\n")
	for i, t := range page {
		b.WriteString(strconv.Itoa(i+1) + ". " + t.Title + " (" + strconv.Itoa(t.PostCount) + " posts)\n")
	}
	b.WriteString("\n")
	if board.CanWrite(currentRole(c)) {
		b.WriteString("[W]rite new thread  ")
	}
	writePagerFooter(&b, hasNext, hasPrev)
	return c.Send(b.String())
}

// runCreateThread gates on write permission and the post-create rate
// limiter, then reads a title and a multi-line body terminated by a
// lone ".".
func runCreateThread(c *ScreenContext, board domain.Board) (ScreenResult, error) {
	if c.Sess.UserID == nil {
		return Back(), c.SendLine(c.T("menu.login_required"))
	}
	userID := *c.Sess.UserID
	if result, retryAfter := c.Deps.Limiters.Check(userID, ratelimit.KindPostCreate); result == ratelimit.Denied {
		recordRateLimited(c, ratelimit.KindPostCreate)
		return Back(), c.SendLine(rateLimitMessage(c, retryAfter))
	}

	if err := c.Send("Title: "); err != nil {
		return Back(), err
	}
	title, err := c.ReadLine()
	if err != nil {
		return Back(), err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Back(), nil
	}

	body, err := readMultilineBody(c)
	if err != nil {
		return Back(), err
	}
	if body == "" {
		return Back(), nil
	}

	_, _, err = c.Deps.Repos.Threads.CreateWithPost(ctxOf(c), domain.Thread{
		BoardID:  board.ID,
		Title:    title,
		AuthorID: userID,
	}, body)
	if err != nil {
		return Back(), c.SendLine(c.T("error.database"))
	}
	c.Deps.Limiters.Record(userID, ratelimit.KindPostCreate)
	return Back(), nil
}

// runThreadView shows a thread's posts in order, marks the highest
// displayed post id as read, and offers reply/delete.
func runThreadView(c *ScreenContext, board domain.Board, thread domain.Thread) (ScreenResult, error) {
	for {
		posts, err := c.Deps.Repos.Posts.ListByThread(ctxOf(c), thread.ID)
		if err != nil {
			return Back(), c.SendLine(c.T("error.database"))
		}
		if err := showPosts(c, posts); err != nil {
			return Back(), err
		}
		if len(posts) > 0 && c.Sess.UserID != nil {
			highest := posts[len(posts)-1].ID
			_ = c.Deps.Repos.Unread.MarkRead(ctxOf(c), *c.Sess.UserID, board.ID, highest)
		}

		role := currentRole(c)
		prompt := ""
		if board.CanWrite(role) {
			prompt = "[R]eply  "
		}
		if err := c.Send("\n" + prompt + "[D]elete  [Q]uit\n> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}
		switch strings.ToUpper(strings.TrimSpace(input)) {
		case "R":
			if !board.CanWrite(role) || c.Sess.UserID == nil {
				if err := c.SendLine(c.T("error.permission")); err != nil {
					return Back(), err
				}
				continue
			}
			if err := runReply(c, thread); err != nil {
				return Back(), err
			}
		case "D":
			deleted, err := runDeleteThread(c, thread)
			if err != nil {
				return Back(), err
			}
			if !deleted {
				continue
			}
			return Back(), nil
		case "Q", "":
			return Back(), nil
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}

func runReply(c *ScreenContext, thread domain.Thread) error {
	userID := *c.Sess.UserID
	if result, retryAfter := c.Deps.Limiters.Check(userID, ratelimit.KindPostCreate); result == ratelimit.Denied {
		recordRateLimited(c, ratelimit.KindPostCreate)
		return c.SendLine(rateLimitMessage(c, retryAfter))
	}
	body, err := readMultilineBody(c)
	if err != nil {
		return err
	}
	if body == "" {
		return nil
	}
	if _, err := c.Deps.Repos.Posts.Reply(ctxOf(c), thread.ID, userID, body); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	c.Deps.Limiters.Record(userID, ratelimit.KindPostCreate)
	return nil
}

// runDeleteThread deletes a thread (cascading to its posts) when the
// caller is the author or at least a SubOp. Returns whether the thread
// was actually deleted so the caller can stay in the view on denial.
func runDeleteThread(c *ScreenContext, thread domain.Thread) (bool, error) {
	if c.Sess.UserID == nil {
		return false, c.SendLine(c.T("error.permission"))
	}
	if *c.Sess.UserID != thread.AuthorID && !currentRole(c).AtLeast(domain.RoleSubOp) {
		return false, c.SendLine(c.T("error.permission"))
	}
	if err := c.Deps.Repos.Threads.Delete(ctxOf(c), thread.ID); err != nil {
		return false, c.SendLine(c.T("error.database"))
	}
	return true, nil
}

// runFlatPostList shows a Flat-type board's independent titled posts.
func runFlatPostList(c *ScreenContext, board domain.Board) (ScreenResult, error) {
	role := currentRole(c)
	offset := 0
	for {
		posts, err := c.Deps.Repos.Posts.ListByBoard(ctxOf(c), board.ID)
		if err != nil {
			return Back(), c.SendLine(c.T("error.database"))
		}
		page, hasNext, hasPrev := paginate(posts, offset)
		if err := showFlatPostPage(c, board, page, hasNext, hasPrev); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}
		upper := strings.ToUpper(strings.TrimSpace(input))
		if upper == "W" && board.CanWrite(role) {
			if err := runCreateFlatPost(c, board); err != nil {
				return Back(), err
			}
			continue
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
			return Back(), nil
		case pageSelect:
			if sel < 1 || sel > len(page) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return Back(), err
				}
				continue
			}
			post := page[sel-1]
			if err := showPosts(c, []domain.Post{post}); err != nil {
				return Back(), err
			}
			if c.Sess.UserID != nil {
				_ = c.Deps.Repos.Unread.MarkRead(ctxOf(c), *c.Sess.UserID, board.ID, post.ID)
			}
			if err := c.Send(c.T("common.press_enter")); err != nil {
				return Back(), err
			}
			if _, err := c.ReadLine(); err != nil {
				return Back(), err
			}
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}

func showFlatPostPage(c *ScreenContext, board domain.Board, page []domain.Post, hasNext, hasPrev bool) error {
	var b strings.Builder
	b.WriteString("\n=== " + board.Name + " ===\n")
	for i, p := range page {
		b.WriteString(strconv.Itoa(i+1) + ". " + p.Title + "\n")
	}
	b.WriteString("\n")
	if board.CanWrite(currentRole(c)) {
		b.WriteString("[W]rite new post  ")
	}
	writePagerFooter(&b, hasNext, hasPrev)
	return c.Send(b.String())
}

func runCreateFlatPost(c *ScreenContext, board domain.Board) error {
	if c.Sess.UserID == nil {
		return c.SendLine(c.T("menu.login_required"))
	}
	userID := *c.Sess.UserID
	if result, retryAfter := c.Deps.Limiters.Check(userID, ratelimit.KindPostCreate); result == ratelimit.Denied {
		recordRateLimited(c, ratelimit.KindPostCreate)
		return c.SendLine(rateLimitMessage(c, retryAfter))
	}
	if err := c.Send("Title: "); err != nil {
		return err
	}
	title, err := c.ReadLine()
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	body, err := readMultilineBody(c)
	if err != nil {
		return err
	}
	if body == "" {
		return nil
	}
	if _, err := c.Deps.Repos.Posts.CreateFlat(ctxOf(c), board.ID, userID, title, body); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	c.Deps.Limiters.Record(userID, ratelimit.KindPostCreate)
	return nil
}

func showPosts(c *ScreenContext, posts []domain.Post) error {
	var b strings.Builder
	for _, p := range posts {
		b.WriteString("\n--- " + p.CreatedAt.Format("2006-01-02 15:04") + " ---\n")
		b.WriteString(p.Body + "\n")
	}
	return c.Send(b.String())
}

// readMultilineBody reads lines until a lone "." terminates the input.
// An empty body (no lines before the terminator) cancels the
// operation, signaled by returning "".
func readMultilineBody(c *ScreenContext) (string, error) {
	if err := c.SendLine("Enter body, end with a line containing only \".\":"); err != nil {
		return "", err
	}
	var lines []string
	for {
		line, err := c.ReadLine()
		if err != nil {
			return "", err
		}
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func currentRole(c *ScreenContext) domain.Role {
	if c.Sess.UserID == nil {
		return domain.RoleGuest
	}
	user, err := c.Deps.Repos.Users.GetByID(ctxOf(c), *c.Sess.UserID)
	if err != nil {
		return domain.RoleGuest
	}
	return user.Role
}

func recordRateLimited(c *ScreenContext, kind ratelimit.Kind) {
	if c.Deps.Metrics != nil {
		c.Deps.Metrics.RecordRateLimited(string(kind))
	}
}

func rateLimitMessage(c *ScreenContext, retryAfter time.Duration) string {
	return c.TWith("error.rate_limited", map[string]string{"seconds": strconv.Itoa(int(retryAfter.Seconds()) + 1)})
}
