// Package session defines the per-connection Session state and the
// process-wide registry that tracks live sessions.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/gliderlabs/ssh"

	"github.com/hobbs-bbs/hobbs/internal/domain"
)

// State is a session's current position in the screen navigator.
type State int

const (
	StateWelcome State = iota
	StateLogin
	StateRegistration
	StateMainMenu
	StateBoard
	StateChat
	StateMail
	StateFiles
	StateNews
	StateScript
	StateAdmin
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateWelcome:
		return "Welcome"
	case StateLogin:
		return "Login"
	case StateRegistration:
		return "Registration"
	case StateMainMenu:
		return "MainMenu"
	case StateBoard:
		return "Board"
	case StateChat:
		return "Chat"
	case StateMail:
		return "Mail"
	case StateFiles:
		return "Files"
	case StateNews:
		return "News"
	case StateScript:
		return "Script"
	case StateAdmin:
		return "Admin"
	case StateClosing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// OutputMode controls whether rendered output keeps ANSI/CSI sequences
// or has them stripped for plain terminals.
type OutputMode int

const (
	OutputAnsi OutputMode = iota
	OutputPlain
)

// Session is the mutable per-connection state a worker owns
// exclusively; no other goroutine may mutate it, so it carries no
// lock. Cross-session visibility goes through Registry snapshots.
type Session struct {
	ID         int
	PeerAddr   string
	State      State
	UserID     *int
	Username   string
	IsGuest    bool
	OutputMode OutputMode

	Encoding        domain.Encoding
	Language        domain.Language
	TerminalProfile string
	LastActivity    time.Time

	// Window is the client's reported terminal size, updated whenever a
	// NAWS subnegotiation arrives. Reuses gliderlabs/ssh's Window type
	// (Width/Height int) rather than inventing an equivalent struct.
	Window ssh.Window
}

// SetWindow records a client-reported terminal size, called from the
// telnet codec's NAWS callback. Zero-value windows (never negotiated)
// leave pagination/profile defaults in charge.
func (s *Session) SetWindow(w ssh.Window) {
	s.Window = w
}

// NewSession creates a freshly accepted, unauthenticated session in the
// Welcome state.
func NewSession(id int, peerAddr string) *Session {
	return &Session{
		ID:           id,
		PeerAddr:     peerAddr,
		State:        StateWelcome,
		IsGuest:      false,
		LastActivity: time.Now(),
	}
}

// Touch records user activity for idle-timeout accounting.
func (s *Session) Touch() {
	s.LastActivity = time.Now()
}

// ClearUser resets the authenticated identity, used on Logout.
func (s *Session) ClearUser() {
	s.UserID = nil
	s.Username = ""
	s.IsGuest = false
}

// Snapshot is an immutable, copyable view of a Session used by the
// registry's enumerate() and by admin screens, so readers never race
// with the owning worker's in-place mutations.
type Snapshot struct {
	ID           int
	PeerAddr     string
	State        State
	UserID       *int
	Username     string
	IsGuest      bool
	LastActivity time.Time
}

func (s *Session) Snapshot() Snapshot {
	var userID *int
	if s.UserID != nil {
		id := *s.UserID
		userID = &id
	}
	return Snapshot{
		ID:           s.ID,
		PeerAddr:     s.PeerAddr,
		State:        s.State,
		UserID:       userID,
		Username:     s.Username,
		IsGuest:      s.IsGuest,
		LastActivity: s.LastActivity,
	}
}

// entry is what the registry actually holds: a snapshot plus an
// independent force-disconnect latch, so `should_disconnect` never
// has to touch the owning worker's live Session.
type entry struct {
	mu         sync.Mutex
	snapshot   Snapshot
	disconnect bool
}

// Registry is the process-wide table of live sessions. Each entry is
// independently latched so reads never block behind an unrelated
// session's writer.
type Registry struct {
	mu      sync.RWMutex
	entries map[int]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[int]*entry)}
}

// Update refreshes (or creates) the registry's snapshot for a session.
func (r *Registry) Update(s *Session) {
	snap := s.Snapshot()

	r.mu.RLock()
	e, ok := r.entries[s.ID]
	r.mu.RUnlock()

	if !ok {
		r.mu.Lock()
		e, ok = r.entries[s.ID]
		if !ok {
			e = &entry{}
			r.entries[s.ID] = e
		}
		r.mu.Unlock()
	}

	e.mu.Lock()
	e.snapshot = snap
	e.mu.Unlock()
}

// Unregister removes a session from the registry, called on every exit
// path (quit, timeout, I/O error).
func (r *Registry) Unregister(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// ShouldDisconnect is polled once per session-worker iteration.
func (r *Registry) ShouldDisconnect(id int) bool {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disconnect
}

// ForceDisconnect flags a session for termination; the owning worker
// observes it on its next ShouldDisconnect poll, at most one
// state-machine cycle later.
func (r *Registry) ForceDisconnect(id int) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return
	}
	e.mu.Lock()
	e.disconnect = true
	e.mu.Unlock()
}

// Enumerate returns a consistent per-entry (not globally consistent)
// snapshot list for admin screens, ordered by session id.
func (r *Registry) Enumerate() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.entries))
	for _, e := range r.entries {
		e.mu.Lock()
		out = append(out, e.snapshot)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
