package screen

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"

	stderrors "errors"

	"github.com/hobbs-bbs/hobbs/internal/auth"
	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
)

// runAdmin is the Admin-state entry handler: a menu of cross-cutting
// management operations gated on role >= SubOp.
func runAdmin(c *ScreenContext) (ScreenResult, error) {
	admin, err := c.Deps.Repos.Users.GetByID(ctxOf(c), *c.Sess.UserID)
	if err != nil {
		return Back(), c.SendLine(c.T("error.database"))
	}
	if err := requireAdmin(admin); err != nil {
		return Back(), c.SendLine(c.T("error.permission"))
	}

	for {
		if err := c.Send("\n=== Admin ===\n[U]sers  [S]essions  [B]ack\n> "); err != nil {
			return Back(), err
		}
		input, err := c.ReadLine()
		if err != nil {
			return Back(), err
		}
		switch strings.ToUpper(strings.TrimSpace(input)) {
		case "U":
			if err := runAdminUsers(c, admin); err != nil {
				return Back(), err
			}
		case "S":
			if err := runAdminSessions(c, admin); err != nil {
				return Back(), err
			}
		case "B", "Q", "":
			return Back(), nil
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return Back(), err
			}
		}
	}
}

// runAdminUsers searches users and drills into a single user's role
// change / suspend actions.
func runAdminUsers(c *ScreenContext, admin domain.User) error {
	if err := c.Send("Search (blank = all): "); err != nil {
		return err
	}
	query, err := c.ReadLine()
	if err != nil {
		return err
	}
	users, err := c.Deps.Repos.Admin.SearchUsers(ctxOf(c), strings.TrimSpace(query))
	if err != nil {
		return c.SendLine(c.T("error.database"))
	}

	offset := 0
	for {
		page, hasNext, hasPrev := paginate(users, offset)
		var b strings.Builder
		b.WriteString("\n=== Users ===\n")
		for i, u := range page {
			status := "active"
			if !u.IsActive {
				status = "suspended"
			}
			b.WriteString(strconv.Itoa(i+1) + ". " + u.Username + " (" + roleLabel(c, u.Role) + ", " + status + ")\n")
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
			if err := runAdminUserDetail(c, admin, page[sel-1]); err != nil {
				return err
			}
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return err
			}
		}
	}
}

func runAdminUserDetail(c *ScreenContext, admin domain.User, target domain.User) error {
	for {
		detail, err := c.Deps.Repos.Admin.UserDetail(ctxOf(c), target.ID)
		if err != nil {
			return c.SendLine(c.T("error.database"))
		}
		var b strings.Builder
		b.WriteString("\n=== " + detail.User.Username + " ===\n")
		b.WriteString("Role: " + roleLabel(c, detail.User.Role) + "\n")
		b.WriteString("Active: " + strconv.FormatBool(detail.User.IsActive) + "\n")
		b.WriteString("Posts: " + strconv.Itoa(detail.PostCount) + "  Files: " + strconv.Itoa(detail.FileCount) + "\n")
		b.WriteString("Mail sent: " + strconv.Itoa(detail.MailSentCount) + "  received: " + strconv.Itoa(detail.MailReceivedCount) + "\n\n")
		b.WriteString("[R]ole change  [T]oggle active  [N]ickname  [P]assword reset  [B]ack\n")
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
		switch strings.ToUpper(strings.TrimSpace(input)) {
		case "R":
			if err := runRoleChange(c, admin, detail.User); err != nil {
				return err
			}
			target, _ = c.Deps.Repos.Users.GetByID(ctxOf(c), target.ID)
		case "T":
			if err := runToggleActive(c, admin, detail.User); err != nil {
				return err
			}
			target, _ = c.Deps.Repos.Users.GetByID(ctxOf(c), target.ID)
		case "N":
			if err := runAdminNickname(c, admin, detail.User); err != nil {
				return err
			}
			target, _ = c.Deps.Repos.Users.GetByID(ctxOf(c), target.ID)
		case "P":
			if err := runAdminResetPassword(c, admin, detail.User); err != nil {
				return err
			}
		case "B", "Q", "":
			return nil
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return err
			}
		}
	}
}

// runAdminNickname rewrites a user's nickname, gated the same way as
// other per-user admin mutations (canEditUser: SysOp may edit anyone,
// SubOp only Member or lower).
func runAdminNickname(c *ScreenContext, admin, target domain.User) error {
	if err := canEditUser(admin, target); err != nil {
		return c.SendLine(adminErrorMessage(c, err))
	}
	if err := c.Send("New nickname: "); err != nil {
		return err
	}
	nickname, err := c.ReadLine()
	if err != nil {
		return err
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil
	}
	if _, err := c.Deps.Repos.Users.Update(ctxOf(c), target.ID, domain.UserUpdate{Nickname: &nickname}); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	return c.SendLine("Nickname updated.")
}

// runAdminResetPassword generates a random password, hashes it, and
// displays the plaintext once so the admin can relay it to the account
// owner out of band. Gated the same way as nickname updates.
func runAdminResetPassword(c *ScreenContext, admin, target domain.User) error {
	if err := canEditUser(admin, target); err != nil {
		return c.SendLine(adminErrorMessage(c, err))
	}
	plaintext, err := generateRandomPassword()
	if err != nil {
		return c.SendLine(c.T("error.database"))
	}
	hash, err := auth.HashPassword(plaintext)
	if err != nil {
		return c.SendLine(c.T("error.database"))
	}
	if _, err := c.Deps.Repos.Users.Update(ctxOf(c), target.ID, domain.UserUpdate{PasswordHash: &hash}); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	return c.SendLine("New password for " + target.Username + ": " + plaintext)
}

// generateRandomPassword returns a random 16-character hex password.
func generateRandomPassword() (string, error) {
	raw := make([]byte, 8)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// runRoleChange changes a user's role: requires SysOp, forbids
// self-change, forbids demoting the last remaining active SysOp. The
// active-SysOp count is fetched immediately before the update, and the
// repository re-checks the invariant under its own lock.
func runRoleChange(c *ScreenContext, admin, target domain.User) error {
	if err := c.Send("New role (guest/member/subop/sysop): "); err != nil {
		return err
	}
	input, err := c.ReadLine()
	if err != nil {
		return err
	}
	newRole, ok := parseRole(input)
	if !ok {
		return c.SendLine(c.T("error.not_found"))
	}

	activeSysOps, err := c.Deps.Repos.Users.CountActiveSysOps(ctxOf(c))
	if err != nil {
		return c.SendLine(c.T("error.database"))
	}
	if err := validateRoleChange(admin, target, newRole, activeSysOps); err != nil {
		return c.SendLine(adminErrorMessage(c, err))
	}

	if _, err := c.Deps.Repos.Users.Update(ctxOf(c), target.ID, domain.UserUpdate{Role: &newRole}); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	return c.SendLine("Role updated.")
}

// runToggleActive suspends or reactivates an account, reusing the
// same last-SysOp and cannot-modify-self checks as role changes.
func runToggleActive(c *ScreenContext, admin, target domain.User) error {
	activeSysOps, err := c.Deps.Repos.Users.CountActiveSysOps(ctxOf(c))
	if err != nil {
		return c.SendLine(c.T("error.database"))
	}
	newActive := !target.IsActive
	if !newActive {
		if err := validateSuspend(admin, target, activeSysOps); err != nil {
			return c.SendLine(adminErrorMessage(c, err))
		}
	} else if err := canEditUser(admin, target); err != nil {
		return c.SendLine(adminErrorMessage(c, err))
	}

	if _, err := c.Deps.Repos.Users.Update(ctxOf(c), target.ID, domain.UserUpdate{IsActive: &newActive}); err != nil {
		return c.SendLine(c.T("error.database"))
	}
	return c.SendLine("Account updated.")
}

func parseRole(input string) (domain.Role, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "guest":
		return domain.RoleGuest, true
	case "member":
		return domain.RoleMember, true
	case "subop":
		return domain.RoleSubOp, true
	case "sysop":
		return domain.RoleSysOp, true
	default:
		return domain.RoleGuest, false
	}
}

func adminErrorMessage(c *ScreenContext, err error) string {
	switch {
	case stderrors.Is(err, hobbserrors.ErrLastSysOp):
		return "Cannot demote or suspend the last active SysOp."
	case stderrors.Is(err, hobbserrors.ErrCannotModifySelf):
		return "You cannot perform this action on your own account."
	case stderrors.Is(err, hobbserrors.ErrPermission):
		return c.T("error.permission")
	default:
		return c.T("error.database")
	}
}

// runAdminSessions lists live sessions from the registry snapshot and
// lets the admin force-disconnect one; the target worker notices the
// flag on its next loop iteration.
func runAdminSessions(c *ScreenContext, admin domain.User) error {
	offset := 0
	for {
		sessions := c.Deps.Registry.Enumerate()
		page, hasNext, hasPrev := paginate(sessions, offset)
		var b strings.Builder
		b.WriteString("\n=== Sessions ===\n")
		for i, s := range page {
			who := "guest"
			if s.Username != "" {
				who = s.Username
			}
			b.WriteString(strconv.Itoa(i+1) + ". #" + strconv.Itoa(s.ID) + " " + who + " @ " + s.PeerAddr + " [" + s.State.String() + "]\n")
		}
		b.WriteString("\nK#=kick  ")
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
		trimmed := strings.TrimSpace(input)
		upper := strings.ToUpper(trimmed)
		if strings.HasPrefix(upper, "K") {
			n, err := strconv.Atoi(trimmed[1:])
			if err != nil || n < 1 || n > len(page) {
				if err := c.SendLine(c.T("error.not_found")); err != nil {
					return err
				}
				continue
			}
			c.Deps.Registry.ForceDisconnect(page[n-1].ID)
			continue
		}
		action, _ := parsePageChoice(input)
		switch {
		case action == pageQuit || trimmed == "":
			return nil
		case action == pageNext && hasNext:
			offset += PageSize
		case action == pagePrev && hasPrev:
			offset -= PageSize
			if offset < 0 {
				offset = 0
			}
		}
	}
}
