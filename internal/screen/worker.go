package screen

import (
	"context"

	"github.com/hobbs-bbs/hobbs/internal/telnet"
)

// Worker adapts RunConnection into an accept.WorkerFunc-shaped closure
// (accept.WorkerFunc = func(ctx context.Context, conn *telnet.Conn,
// sessionID int)) so a host binary can pass it straight to
// accept.Config.Worker without either package importing the other.
func Worker(deps *Deps, timeouts Timeouts) func(ctx context.Context, conn *telnet.Conn, sessionID int) {
	return func(_ context.Context, conn *telnet.Conn, sessionID int) {
		RunConnection(deps, timeouts, conn, sessionID, conn.RemoteAddr().String())
	}
}
