package screen

import (
	"context"
	stderrors "errors"
	"net"
	"strings"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/auth"
	"github.com/hobbs-bbs/hobbs/internal/domain"
	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
	"github.com/hobbs-bbs/hobbs/internal/linebuf"
)

// welcomeChoice is the Welcome-state prompt's parsed selection.
type welcomeChoice int

const (
	choiceLogin welcomeChoice = iota
	choiceRegister
	choiceGuest
	choiceQuit
	choiceInvalid
)

// parseWelcomeChoice accepts both the letter and the positional digit
// alias for each option; anything outside this fixed set re-prompts.
func parseWelcomeChoice(input string) welcomeChoice {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "L", "1":
		return choiceLogin
	case "R", "2":
		return choiceRegister
	case "G", "3":
		return choiceGuest
	case "Q", "4":
		return choiceQuit
	default:
		return choiceInvalid
	}
}

// runWelcome loops the Welcome-state prompt until the client selects
// one of {L,R,G,Q} or the connection drops.
func runWelcome(c *ScreenContext) (welcomeChoice, error) {
	for {
		if err := c.SendLine(bbsBanner(c)); err != nil {
			return 0, err
		}
		if err := c.Send(c.T("welcome.prompt")); err != nil {
			return 0, err
		}
		line, err := c.ReadLine()
		if err != nil {
			return 0, err
		}
		switch parseWelcomeChoice(line) {
		case choiceLogin:
			return choiceLogin, nil
		case choiceRegister:
			return choiceRegister, nil
		case choiceGuest:
			return choiceGuest, nil
		case choiceQuit:
			return choiceQuit, nil
		default:
			if err := c.SendLine(c.T("welcome.invalid_choice")); err != nil {
				return 0, err
			}
		}
	}
}

func bbsBanner(c *ScreenContext) string {
	return "=== " + c.Deps.Config.BBSName + " === " + c.Deps.Config.BBSDescription
}

// runLanguageSelect shows the ASCII-only language/encoding picker,
// shown on the Register/Guest paths and from the profile screen's
// [L]anguage option, and applies the choice to the
// session and its line buffer immediately so every subsequent prompt
// uses it.
func runLanguageSelect(c *ScreenContext) error {
	const menu = "\n=======================================\n" +
		"Select language / Gengo sentaku:\n" +
		"=======================================\n\n" +
		"[E] English (UTF-8)\n" +
		"[J] Nihongo (ShiftJIS)\n" +
		"[U] Nihongo (UTF-8)\n\n> "

	if err := c.Send(menu); err != nil {
		return err
	}
	line, err := c.ReadLine()
	if err != nil {
		return err
	}

	var lang domain.Language
	switch strings.ToUpper(strings.TrimSpace(line)) {
	case "J", "2":
		lang = domain.LanguageJapaneseShiftJIS
	case "U", "3":
		lang = domain.LanguageJapaneseUTF8
	default:
		lang = domain.LanguageEnglishUTF8
	}

	c.Sess.Language = lang
	c.Sess.Encoding = lang.Encoding()
	c.IO.SetEncoding(lang.Encoding())
	return nil
}

// runLogin drives the login flow: username, throttler check,
// masked-echo password, credential lookup, is_active check, and on
// success, applying the user's stored preferences. Returns ok=false
// to return to Welcome.
func runLogin(c *ScreenContext) (ok bool, err error) {
	if err := c.SendLine(c.T("login.title")); err != nil {
		return false, err
	}

	if err := c.Send(c.T("login.username") + ": "); err != nil {
		return false, err
	}
	username, err := c.ReadLine()
	if err != nil {
		return false, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}

	peerIP := peerIPOf(c.Sess.PeerAddr)
	if result, _ := c.Deps.Throttler.Check(peerIP); result == auth.Locked {
		recordAuthLockout(c)
		return false, c.SendLine(c.T("login.locked_out"))
	}

	if err := c.Send(c.T("login.password") + ": "); err != nil {
		return false, err
	}
	c.IO.SetEchoMode(linebuf.EchoPassword, 0)
	password, err := c.ReadLine()
	c.IO.SetEchoMode(linebuf.EchoNormal, 0)
	if err != nil {
		return false, err
	}

	user, lookupErr := c.Deps.Repos.Users.GetByUsername(ctxOf(c), username)
	if lookupErr != nil || !auth.CheckPassword(user.PasswordHash, password) {
		c.Deps.Throttler.RecordFailure(peerIP)
		recordAuthFailure(c)
		return false, c.SendLine(c.T("login.invalid_credentials"))
	}

	if !user.IsActive {
		return false, c.SendLine(c.T("login.account_disabled"))
	}

	c.Deps.Throttler.Clear(peerIP)

	previousLogin := user.LastLogin
	hadPreviousLogin := user.HasLastLogin()
	now := configNow(c)
	if _, err := c.Deps.Repos.Users.Update(ctxOf(c), user.ID, domain.UserUpdate{LastLogin: &now}); err != nil {
		// Non-fatal: last_login bookkeeping failing shouldn't block login.
	}

	uid := user.ID
	c.Sess.UserID = &uid
	c.Sess.Username = user.Username
	c.Sess.IsGuest = false
	c.Sess.Encoding = user.Encoding
	c.Sess.Language = user.Language
	c.Sess.TerminalProfile = user.TerminalProfileName
	c.IO.SetEncoding(user.Encoding)

	if err := c.SendLine(c.TWith("login.success", map[string]string{"username": user.Username})); err != nil {
		return false, err
	}
	if hadPreviousLogin {
		formatted := previousLogin.In(serverTimezone(c)).Format("2006-01-02 15:04:05 MST")
		if err := c.SendLine(c.T("profile.last_login_short") + ": " + formatted); err != nil {
			return false, err
		}
	}
	return true, nil
}

// runRegistration drives account creation: a plaintext-warning banner,
// unique username, password entered twice (equal, length >= 8),
// nickname (empty copies username). The first user ever created is
// atomically promoted to SysOp by the Users repository itself, so the
// handler need not special-case it.
func runRegistration(c *ScreenContext) (ok bool, err error) {
	if err := c.SendLine(c.T("register.title")); err != nil {
		return false, err
	}
	if err := c.SendLine(""); err != nil {
		return false, err
	}
	if err := c.SendLine(c.T("register.password_warning")); err != nil {
		return false, err
	}
	if err := c.SendLine(""); err != nil {
		return false, err
	}

	if err := c.Send(c.T("register.username") + ": "); err != nil {
		return false, err
	}
	username, err := c.ReadLine()
	if err != nil {
		return false, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return false, nil
	}

	if _, err := c.Deps.Repos.Users.GetByUsername(ctxOf(c), username); err == nil {
		return false, c.SendLine(c.T("register.username_taken"))
	}

	if err := c.Send(c.T("register.password") + ": "); err != nil {
		return false, err
	}
	c.IO.SetEchoMode(linebuf.EchoPassword, 0)
	password, err := c.ReadLine()
	if err != nil {
		c.IO.SetEchoMode(linebuf.EchoNormal, 0)
		return false, err
	}
	if err := c.Send(c.T("register.confirm_password") + ": "); err != nil {
		c.IO.SetEchoMode(linebuf.EchoNormal, 0)
		return false, err
	}
	confirm, err := c.ReadLine()
	c.IO.SetEchoMode(linebuf.EchoNormal, 0)
	if err != nil {
		return false, err
	}

	if password != confirm {
		return false, c.SendLine(c.T("register.password_mismatch"))
	}
	if len(password) < 8 {
		return false, c.SendLine(c.T("register.password_too_short"))
	}

	if err := c.Send(c.T("register.nickname") + ": "); err != nil {
		return false, err
	}
	nickname, err := c.ReadLine()
	if err != nil {
		return false, err
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = username
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, c.SendLine(c.T("register.failed"))
	}

	user, err := c.Deps.Repos.Users.Create(ctxOf(c), domain.User{
		Username:     username,
		PasswordHash: hash,
		Nickname:     nickname,
		Role:         domain.RoleMember,
		Encoding:     c.Sess.Encoding,
		Language:     c.Sess.Language,
		IsActive:     true,
		CreatedAt:    configNow(c),
	})
	if err != nil {
		if stderrors.Is(err, hobbserrors.ErrValidation) {
			return false, c.SendLine(c.T("register.username_taken"))
		}
		return false, c.SendLine(c.T("register.failed"))
	}

	uid := user.ID
	c.Sess.UserID = &uid
	c.Sess.Username = user.Username
	c.Sess.IsGuest = false
	return true, c.SendLine(c.TWith("register.success", map[string]string{"username": user.Username}))
}

// runHelp shows a stay-in-place informational screen reachable from
// MainMenu via [H].
func runHelp(c *ScreenContext) error {
	const body = "\n=== Help ===\n" +
		"[B]oards lists the message areas; pick one by its number.\n" +
		"Boards, Chat, Files, News and Scripts are open to guests; Mail\n" +
		"and Profile need a logged-in account. Admin is visible only to\n" +
		"SubOp and SysOp accounts.\n\n"
	if err := c.Send(body); err != nil {
		return err
	}
	return c.Send(c.T("common.press_enter"))
}

func peerIPOf(peerAddr string) string {
	host, _, err := net.SplitHostPort(peerAddr)
	if err != nil {
		return peerAddr
	}
	return host
}

func ctxOf(c *ScreenContext) context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}
	return context.Background()
}

func configNow(c *ScreenContext) time.Time {
	return time.Now().In(serverTimezone(c))
}

func recordAuthFailure(c *ScreenContext) {
	if c.Deps.Metrics != nil {
		c.Deps.Metrics.RecordAuthFailure()
	}
}

func recordAuthLockout(c *ScreenContext) {
	if c.Deps.Metrics != nil {
		c.Deps.Metrics.RecordLoginLockout()
	}
}
