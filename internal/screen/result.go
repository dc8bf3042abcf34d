package screen

import (
	"github.com/hobbs-bbs/hobbs/internal/domain"
)

// ResultKind tags a handler's outcome. The ScreenResult struct carries
// the payload for the one kind that has any (SettingsChanged).
type ResultKind int

const (
	ResultBack ResultKind = iota
	ResultLogout
	ResultQuit
	ResultSettingsChanged
	ResultStay
)

// ScreenResult is the outcome of a single screen handler invocation.
// Settings fields are only meaningful when Kind == ResultSettingsChanged.
type ScreenResult struct {
	Kind            ResultKind
	Language        domain.Language
	Encoding        domain.Encoding
	TerminalProfile string // empty means "unchanged"
}

// Back, Logout, Quit, and Stay are the zero-payload result
// constructors most handlers return.
func Back() ScreenResult   { return ScreenResult{Kind: ResultBack} }
func Logout() ScreenResult { return ScreenResult{Kind: ResultLogout} }
func Quit() ScreenResult   { return ScreenResult{Kind: ResultQuit} }
func Stay() ScreenResult   { return ScreenResult{Kind: ResultStay} }

// SettingsChanged carries a profile/settings screen's new preferences
// back to the navigator so it can reconfigure the session and line
// buffer before resuming at MainMenu.
func SettingsChanged(lang domain.Language, enc domain.Encoding, terminalProfile string) ScreenResult {
	return ScreenResult{
		Kind:            ResultSettingsChanged,
		Language:        lang,
		Encoding:        enc,
		TerminalProfile: terminalProfile,
	}
}
