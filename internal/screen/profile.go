package screen

import (
	"strings"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	"github.com/hobbs-bbs/hobbs/internal/session"
)

// runProfile shows the authenticated user's profile and a small
// settings menu. Changing language/encoding persists the preference
// and returns SettingsChanged so the navigator reconfigures the
// session and line buffer.
func runProfile(c *ScreenContext) (ScreenResult, error) {
	for {
		user, err := c.Deps.Repos.Users.GetByID(ctxOf(c), *c.Sess.UserID)
		if err != nil {
			return Back(), c.SendLine(c.T("error.database"))
		}

		if err := showProfile(c, user); err != nil {
			return Back(), err
		}
		if err := c.Send("> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}

		switch strings.ToUpper(strings.TrimSpace(input)) {
		case "N":
			if err := c.Send("New nickname: "); err != nil {
				return Back(), err
			}
			nick, err := c.ReadLine()
			if err != nil {
				return Back(), err
			}
			nick = strings.TrimSpace(nick)
			if nick == "" {
				continue
			}
			if _, err := c.Deps.Repos.Users.Update(ctxOf(c), user.ID, domain.UserUpdate{Nickname: &nick}); err != nil {
				if err := c.SendLine(c.T("error.database")); err != nil {
					return Back(), err
				}
			}

		case "E":
			if err := c.Send("New email: "); err != nil {
				return Back(), err
			}
			email, err := c.ReadLine()
			if err != nil {
				return Back(), err
			}
			email = strings.TrimSpace(email)
			if _, err := c.Deps.Repos.Users.Update(ctxOf(c), user.ID, domain.UserUpdate{Email: &email}); err != nil {
				if err := c.SendLine(c.T("error.database")); err != nil {
					return Back(), err
				}
			}

		case "O":
			if c.Sess.OutputMode == session.OutputAnsi {
				c.Sess.OutputMode = session.OutputPlain
			} else {
				c.Sess.OutputMode = session.OutputAnsi
			}
			c.IO.SetPlain(c.Sess.OutputMode == session.OutputPlain)

		case "L":
			if err := runLanguageSelect(c); err != nil {
				return Back(), err
			}
			lang := c.Sess.Language
			enc := c.Sess.Encoding
			if _, err := c.Deps.Repos.Users.Update(ctxOf(c), user.ID, domain.UserUpdate{
				Language: &lang,
				Encoding: &enc,
			}); err != nil {
				return Back(), c.SendLine(c.T("error.database"))
			}
			return SettingsChanged(lang, enc, ""), nil

		case "Q", "B":
			return Back(), nil

		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}

func showProfile(c *ScreenContext, user domain.User) error {
	var b strings.Builder
	b.WriteString("\n=== Profile ===\n")
	b.WriteString("Username: " + user.Username + "\n")
	b.WriteString("Nickname: " + user.Nickname + "\n")
	b.WriteString("Email: " + user.Email + "\n")
	b.WriteString("Role: " + roleLabel(c, user.Role) + "\n")
	b.WriteString("Language: " + user.Language.String() + "\n")
	b.WriteString("Encoding: " + user.Encoding.String() + "\n")
	mode := "ANSI"
	if c.Sess.OutputMode == session.OutputPlain {
		mode = "Plain"
	}
	b.WriteString("Output: " + mode + "\n\n")
	b.WriteString("[N]ickname  [E]mail  [L]anguage/encoding  [O]utput mode  [B]ack\n")
	return c.Send(b.String())
}
