package screen

import (
	stderrors "errors"
	"log"
	"time"

	"github.com/gliderlabs/ssh"

	hobbserrors "github.com/hobbs-bbs/hobbs/internal/errors"
	"github.com/hobbs-bbs/hobbs/internal/session"
	"github.com/hobbs-bbs/hobbs/internal/telnet"
)

// Timeouts holds the three state-dependent read deadlines, sourced
// from config.ServerConfig's *_timeout_secs keys.
type Timeouts struct {
	Read  time.Duration
	Guest time.Duration
	Idle  time.Duration
}

// RunConnection drives one accepted connection's state machine to
// completion over transport. See worker.go for the
// accept.WorkerFunc-shaped adapter a host wires into accept.Config.
func RunConnection(deps *Deps, timeouts Timeouts, transport Transport, sessionID int, peerAddr string) {
	sess := session.NewSession(sessionID, peerAddr)
	sess.TerminalProfile = deps.Config.TerminalDefaultProfile
	if conn, ok := transport.(*telnet.Conn); ok {
		conn.OnNAWS = func(width, height int) {
			sess.SetWindow(ssh.Window{Width: width, Height: height})
		}
	}
	io := NewIO(transport)
	c := &ScreenContext{
		Deps:         deps,
		IO:           io,
		Sess:         sess,
		ReadTimeout:  timeouts.Read,
		GuestTimeout: timeouts.Guest,
		IdleTimeout:  timeouts.Idle,
	}
	runSession(c)
}

// runSession is the per-connection state-machine loop: poll the
// force-disconnect flag, refresh the registry snapshot, dispatch on
// the current state, apply the handler's result. It always unregisters
// the session on exit, regardless of which path ended the loop.
func runSession(c *ScreenContext) {
	lastState := c.Sess.State

	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: screen: session %d panicked: %v", c.Sess.ID, r)
			_ = c.SendLine(c.T("error.database"))
		}
		c.Deps.Registry.Unregister(c.Sess.ID)
		if c.Deps.Metrics != nil {
			c.Deps.Metrics.SessionDisconnected(c.Sess.IsGuest)
		}
	}()

	if c.Deps.Metrics != nil {
		c.Deps.Metrics.SessionConnected(c.Sess.IsGuest)
	}

	for {
		if c.Deps.Registry.ShouldDisconnect(c.Sess.ID) {
			_ = c.SendLine(c.T("session.force_disconnected"))
			return
		}
		c.Deps.Registry.Update(c.Sess)

		if c.Sess.State != lastState {
			recordTransition(c, lastState, c.Sess.State)
			lastState = c.Sess.State
		}

		switch c.Sess.State {
		case session.StateWelcome:
			if !stepWelcome(c) {
				goodbye(c)
				return
			}

		case session.StateLogin:
			ok, err := runLogin(c)
			if fatal(c, err) {
				return
			}
			if ok {
				c.Sess.State = session.StateMainMenu
			} else {
				c.Sess.State = session.StateWelcome
			}

		case session.StateRegistration:
			ok, err := runRegistration(c)
			if fatal(c, err) {
				return
			}
			if ok {
				c.Sess.State = session.StateMainMenu
			} else {
				c.Sess.State = session.StateWelcome
			}

		case session.StateMainMenu:
			result, err := runMainMenu(c)
			if fatal(c, err) {
				return
			}
			if !applyResult(c, result) {
				goodbye(c)
				return
			}

		case session.StateBoard:
			if !dispatchSubstate(c, runBoardList) {
				goodbye(c)
				return
			}

		case session.StateChat:
			if !dispatchSubstate(c, runChat) {
				goodbye(c)
				return
			}

		case session.StateMail:
			if !dispatchSubstate(c, runMailInbox) {
				goodbye(c)
				return
			}

		case session.StateFiles:
			if !dispatchSubstate(c, runFileBrowser) {
				goodbye(c)
				return
			}

		case session.StateNews:
			if !dispatchSubstate(c, runNews) {
				goodbye(c)
				return
			}

		case session.StateScript:
			if !dispatchSubstate(c, runScripts) {
				goodbye(c)
				return
			}

		case session.StateAdmin:
			if !dispatchSubstate(c, runAdmin) {
				goodbye(c)
				return
			}

		case session.StateClosing:
			goodbye(c)
			return
		}
	}
}

// stepWelcome drives one Welcome-state iteration: the prompt loop plus
// the lang-select insertion on Register/Guest paths. Login skips it
// because authenticated users carry a stored preference. Returns false
// if the session should close.
func stepWelcome(c *ScreenContext) bool {
	choice, err := runWelcome(c)
	if fatal(c, err) {
		return false
	}
	switch choice {
	case choiceLogin:
		c.Sess.State = session.StateLogin
	case choiceRegister:
		if fatal(c, runLanguageSelect(c)) {
			return false
		}
		c.Sess.State = session.StateRegistration
	case choiceGuest:
		if fatal(c, runLanguageSelect(c)) {
			return false
		}
		c.Sess.IsGuest = true
		c.Sess.State = session.StateMainMenu
	case choiceQuit:
		return false
	}
	return true
}

// dispatchSubstate runs one substate handler and applies its
// ScreenResult, returning false if the session should close.
func dispatchSubstate(c *ScreenContext, handler func(*ScreenContext) (ScreenResult, error)) bool {
	result, err := handler(c)
	if fatal(c, err) {
		return false
	}
	return applyResult(c, result)
}

// applyResult interprets a ScreenResult: Back pops to MainMenu, Logout
// clears the user and goes to Welcome, Quit moves to Closing (signaled
// here by returning false), SettingsChanged applies new preferences
// and stays in MainMenu, and Stay keeps whatever state the handler set.
func applyResult(c *ScreenContext, result ScreenResult) bool {
	switch result.Kind {
	case ResultQuit:
		return false
	case ResultLogout:
		c.Sess.ClearUser()
		c.Sess.State = session.StateWelcome
	case ResultSettingsChanged:
		c.Sess.Language = result.Language
		c.Sess.Encoding = result.Encoding
		c.IO.SetEncoding(result.Encoding)
		if result.TerminalProfile != "" {
			c.Sess.TerminalProfile = result.TerminalProfile
		}
		c.Sess.State = session.StateMainMenu
	case ResultStay:
	default: // Back
		c.Sess.State = session.StateMainMenu
	}
	return true
}

func goodbye(c *ScreenContext) {
	_ = c.SendLine(c.T("session.goodbye"))
}

// fatal reports whether err is the one error kind that ends the worker:
// connection loss or protocol EOF. Every other error kind must already
// have been handled locally (message emitted, handler stayed in its
// loop) before reaching here.
func fatal(c *ScreenContext, err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, hobbserrors.ErrIo) {
		return true
	}
	log.Printf("WARN: screen: session %d: unexpected error reached navigator: %v", c.Sess.ID, err)
	return false
}

func recordTransition(c *ScreenContext, from, to session.State) {
	if c.Deps.Metrics != nil {
		c.Deps.Metrics.RecordStateTransition(from.String(), to.String())
	}
}
