package screen

import (
	"strconv"
	"strings"

	"github.com/hobbs-bbs/hobbs/internal/domain"
	"github.com/hobbs-bbs/hobbs/internal/session"
)

// runMainMenu shows the main menu and dispatches one letter
// selection. Screens requiring authentication emit
// "menu.login_required" and stay at MainMenu for guests.
func runMainMenu(c *ScreenContext) (ScreenResult, error) {
	if err := showMainMenu(c); err != nil {
		return Stay(), err
	}
	if err := c.Send("> "); err != nil {
		return Stay(), err
	}
	input, err := c.ReadLine()
	if err != nil {
		return Stay(), err
	}

	isLoggedIn := c.Sess.UserID != nil
	isAdmin := currentUserIsAdmin(c)

	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "B":
		c.Sess.State = session.StateBoard
		return Stay(), nil
	case "C":
		c.Sess.State = session.StateChat
		return Stay(), nil
	case "M":
		if !isLoggedIn {
			return Stay(), c.SendLine(c.T("menu.login_required"))
		}
		c.Sess.State = session.StateMail
		return Stay(), nil
	case "F":
		c.Sess.State = session.StateFiles
		return Stay(), nil
	case "N":
		c.Sess.State = session.StateNews
		return Stay(), nil
	case "S":
		c.Sess.State = session.StateScript
		return Stay(), nil
	case "P":
		if !isLoggedIn {
			return Stay(), c.SendLine(c.T("menu.login_required"))
		}
		return runProfile(c)
	case "A":
		if !isAdmin {
			return Stay(), c.SendLine(c.T("menu.admin_required"))
		}
		c.Sess.State = session.StateAdmin
		return Stay(), nil
	case "H":
		return Stay(), runHelp(c)
	case "L":
		if isLoggedIn {
			return Logout(), nil
		}
		c.Sess.State = session.StateLogin
		return Stay(), nil
	case "R":
		if !isLoggedIn {
			c.Sess.State = session.StateRegistration
		}
		return Stay(), nil
	case "Q":
		return Quit(), nil
	case "":
		return Stay(), nil
	default:
		return Stay(), c.SendLine(c.TWith("menu.invalid_selection", map[string]string{"input": input}))
	}
}

// showMainMenu renders the main menu banner, gating item visibility on
// login/admin state and showing the unread-mail count for logged-in
// users.
func showMainMenu(c *ScreenContext) error {
	var b strings.Builder
	b.WriteString("\n=== " + c.Deps.Config.BBSName + " — Main Menu ===\n")

	if c.Sess.UserID != nil {
		user, err := c.Deps.Repos.Users.GetByID(ctxOf(c), *c.Sess.UserID)
		if err == nil {
			unread, _ := c.Deps.Repos.Mail.Inbox(ctxOf(c), user.ID)
			unreadCount := countUnreadMail(unread)
			b.WriteString("Logged in as " + user.Nickname + " (" + roleLabel(c, user.Role) + "), " +
				strconv.Itoa(unreadCount) + " unread mail\n")
		}
	} else if c.Sess.IsGuest {
		b.WriteString("Connected as Guest\n")
	}

	b.WriteString("Online: " + strconv.Itoa(c.Deps.Chat.ActiveCount()) + "\n\n")
	b.WriteString("[B]oards  [C]hat  [F]iles  [N]ews  [S]cripts\n")
	if c.Sess.UserID != nil {
		b.WriteString("[M]ail  [P]rofile  [L]ogout")
		if currentUserIsAdmin(c) {
			b.WriteString("  [A]dmin")
		}
		b.WriteString("\n")
	} else {
		b.WriteString("[L]ogin  [R]egister\n")
	}
	b.WriteString("[H]elp  [Q]uit\n")

	return c.Send(b.String())
}

func currentUserIsAdmin(c *ScreenContext) bool {
	if c.Sess.UserID == nil {
		return false
	}
	user, err := c.Deps.Repos.Users.GetByID(ctxOf(c), *c.Sess.UserID)
	if err != nil {
		return false
	}
	return user.Role.AtLeast(domain.RoleSubOp)
}

func roleLabel(c *ScreenContext, role domain.Role) string {
	switch role {
	case domain.RoleGuest:
		return c.T("role.guest")
	case domain.RoleMember:
		return c.T("role.member")
	case domain.RoleSubOp:
		return c.T("role.subop")
	case domain.RoleSysOp:
		return c.T("role.sysop")
	default:
		return role.String()
	}
}

func countUnreadMail(inbox []domain.Mail) int {
	n := 0
	for _, m := range inbox {
		if !m.IsRead {
			n++
		}
	}
	return n
}
