package screen

import (
	"strconv"
	"strings"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	"github.com/hobbs-bbs/hobbs/internal/ratelimit"
)

// runMailInbox is the Mail-state entry handler: a paginated inbox with
// compose/sent/read/delete actions. Deletion is per-side; the
// repository purges a message once both sides have deleted it.
func runMailInbox(c *ScreenContext) (ScreenResult, error) {
	if c.Sess.UserID == nil {
		return Back(), c.SendLine(c.T("menu.login_required"))
	}
	userID := *c.Sess.UserID
	viewingSent := false
	offset := 0

	for {
		var items []domain.Mail
		var err error
		if viewingSent {
			items, err = c.Deps.Repos.Mail.Sent(ctxOf(c), userID)
		} else {
			items, err = c.Deps.Repos.Mail.Inbox(ctxOf(c), userID)
		}
		if err != nil {
			return Back(), c.SendLine(c.T("error.database"))
		}

		page, hasNext, hasPrev := paginate(items, offset)
		if err := showMailPage(c, viewingSent, page, hasNext, hasPrev); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}

		switch upper := strings.ToUpper(strings.TrimSpace(input)); upper {
		case "C":
			if err := runComposeMail(c, userID); err != nil {
				return Back(), err
			}
		case "I":
			viewingSent = false
			offset = 0
		case "S":
			viewingSent = true
			offset = 0
		case "Q", "":
			return Back(), nil
		default:
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
				if err := runReadMail(c, userID, page[sel-1], viewingSent); err != nil {
					return Back(), err
				}
			default:
				if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
					return Back(), err
				}
			}
		}
	}
}

func showMailPage(c *ScreenContext, viewingSent bool, page []domain.Mail, hasNext, hasPrev bool) error {
	var b strings.Builder
	if viewingSent {
		b.WriteString("\n=== Sent Mail ===\n")
	} else {
		b.WriteString("\n=== Inbox ===\n")
	}
	for i, m := range page {
		unread := ""
		if !viewingSent && !m.IsRead {
			unread = " *"
		}
		b.WriteString(strconv.Itoa(i+1) + ". " + m.Subject + unread + "\n")
	}
	b.WriteString("\n[C]ompose  [I]nbox  [S]ent  ")
	writePagerFooter(&b, hasNext, hasPrev)
	return c.Send(b.String())
}

func runComposeMail(c *ScreenContext, senderID int) error {
	if result, retryAfter := c.Deps.Limiters.Check(senderID, ratelimit.KindMailSend); result == ratelimit.Denied {
		recordRateLimited(c, ratelimit.KindMailSend)
		return c.SendLine(rateLimitMessage(c, retryAfter))
	}

	if err := c.Send("To (username): "); err != nil {
		return err
	}
	username, err := c.ReadLine()
	if err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	recipient, err := c.Deps.Repos.Users.GetByUsername(ctxOf(c), username)
	if err != nil {
		return c.SendLine(c.T("error.not_found"))
	}

	if err := c.Send("Subject: "); err != nil {
		return err
	}
	subject, err := c.ReadLine()
	if err != nil {
		return err
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil
	}

	body, err := readMultilineBody(c)
	if err != nil {
		return err
	}
	if body == "" {
		return nil
	}

	if _, err := c.Deps.Repos.Mail.Send(ctxOf(c), domain.Mail{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Subject:     subject,
		Body:        body,
	}); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	c.Deps.Limiters.Record(senderID, ratelimit.KindMailSend)
	return nil
}

func runReadMail(c *ScreenContext, userID int, m domain.Mail, viewingSent bool) error {
	var b strings.Builder
	b.WriteString("\nSubject: " + m.Subject + "\n")
	b.WriteString(m.CreatedAt.Format("2006-01-02 15:04") + "\n\n")
	b.WriteString(m.Body + "\n\n")
	if !viewingSent && !m.IsRead {
		if err := c.Deps.Repos.Mail.MarkRead(ctxOf(c), m.ID); err != nil {
			return c.SendLine(c.T("error.database"))
		}
	}
	b.WriteString("[D]elete  [B]ack\n")
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
	if strings.ToUpper(strings.TrimSpace(input)) == "D" {
		asRecipient := userID == m.RecipientID
		if err := c.Deps.Repos.Mail.DeleteForSide(ctxOf(c), m.ID, asRecipient); err != nil {
			return c.SendLine(c.T("error.database"))
		}
	}
	return nil
}
