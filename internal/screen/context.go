package screen

import (
	"context"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/auth"
	"github.com/hobbs-bbs/hobbs/internal/chat"
	"github.com/hobbs-bbs/hobbs/internal/config"
	"github.com/hobbs-bbs/hobbs/internal/metrics"
	"github.com/hobbs-bbs/hobbs/internal/ratelimit"
	"github.com/hobbs-bbs/hobbs/internal/repo"
	"github.com/hobbs-bbs/hobbs/internal/session"
)

// Deps bundles the process-scoped collaborators every ScreenContext
// shares: repositories, config, chat/session/rate-limit managers, and
// the i18n catalog. Constructed once in the host and passed
// explicitly; there is no package-level mutable state.
type Deps struct {
	Repos     repo.Repositories
	Config    config.ServerConfig
	Chat      *chat.Room
	Registry  *session.Registry
	Limiters  *ratelimit.Limiters
	Throttler *auth.LoginThrottler
	Catalog   Catalog
	Metrics   *metrics.Collector
}

// ScreenContext is the per-call context a handler receives: the shared
// Deps, plus this connection's IO and Session.
type ScreenContext struct {
	Deps *Deps
	IO   *IO
	Sess *session.Session
	Ctx  context.Context

	// ReadTimeout, GuestTimeout, and IdleTimeout are the
	// authentication-state-dependent read deadlines, resolved once per
	// ScreenContext since they only change when the session's
	// authentication state changes.
	ReadTimeout  time.Duration
	GuestTimeout time.Duration
	IdleTimeout  time.Duration
}

// Deadline picks the read_line deadline for the session's current
// authentication state: unauthenticated uses ReadTimeout, guests use
// GuestTimeout, authenticated users use IdleTimeout.
func (c *ScreenContext) Deadline() time.Duration {
	switch {
	case c.Sess.UserID != nil:
		return c.IdleTimeout
	case c.Sess.IsGuest:
		return c.GuestTimeout
	default:
		return c.ReadTimeout
	}
}

// ReadLine reads one line from the client using the state-appropriate
// deadline, and touches the session's activity timestamp on success.
func (c *ScreenContext) ReadLine() (string, error) {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	line, err := c.IO.ReadLine(ctx, c.Deadline())
	if err != nil {
		return "", err
	}
	c.Sess.Touch()
	return line, nil
}

// Send and SendLine proxy to the context's IO for handler brevity.
func (c *ScreenContext) Send(s string) error     { return c.IO.Send(s) }
func (c *ScreenContext) SendLine(s string) error { return c.IO.SendLine(s) }

// T and TWith proxy to the context's i18n catalog.
func (c *ScreenContext) T(key string) string { return c.Deps.Catalog.T(key) }
func (c *ScreenContext) TWith(key string, args map[string]string) string {
	return c.Deps.Catalog.TWith(key, args)
}
