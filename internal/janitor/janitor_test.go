package janitor

import (
	"context"
	"testing"
	"time"

	"github.com/hobbs-bbs/hobbs/internal/auth"
	"github.com/hobbs-bbs/hobbs/internal/ratelimit"
	"github.com/hobbs-bbs/hobbs/internal/session"
)

func TestReapStaleSessionsForceDisconnectsOldEntries(t *testing.T) {
	reg := session.NewRegistry()

	fresh := session.NewSession(1, "10.0.0.1:1")
	reg.Update(fresh)

	stale := session.NewSession(2, "10.0.0.2:1")
	stale.LastActivity = time.Now().Add(-time.Hour)
	reg.Update(stale)

	j := New(Config{StaleSessionAge: 10 * time.Minute}, nil, nil, reg)
	j.reapStaleSessions(time.Now())

	if reg.ShouldDisconnect(1) {
		t.Fatal("fresh session should not be flagged for disconnect")
	}
	if !reg.ShouldDisconnect(2) {
		t.Fatal("stale session should be flagged for disconnect")
	}
}

func TestStartStopsCleanlyOnContextCancel(t *testing.T) {
	reg := session.NewRegistry()
	throttler := auth.DefaultLoginThrottler()
	limiters := ratelimit.DefaultLimiters()

	j := New(Config{
		ThrottleSweepSchedule:  "@every 1h",
		RateLimitSweepSchedule: "@every 1h",
		StaleSessionSchedule:   "@every 1h",
		StaleSessionAge:        time.Hour,
	}, throttler, limiters, reg)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
