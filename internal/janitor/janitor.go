// Package janitor runs the background cron-scheduled sweeps that keep
// the throttler, rate limiters and session registry from accumulating
// state for peers and sessions that are long gone.
package janitor

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hobbs-bbs/hobbs/internal/auth"
	"github.com/hobbs-bbs/hobbs/internal/ratelimit"
	"github.com/hobbs-bbs/hobbs/internal/session"
)

// Sweeper is anything the janitor can periodically ask to drop expired
// bookkeeping state. auth.LoginThrottler and ratelimit.Limiters both
// satisfy it.
type Sweeper interface {
	Sweep(now time.Time)
}

// Config controls how often each sweep runs. A zero Schedule disables
// that sweep.
type Config struct {
	ThrottleSweepSchedule  string
	RateLimitSweepSchedule string
	StaleSessionSchedule   string

	// StaleSessionAge is how long a registry entry may go without an
	// Update before the janitor force-disconnects it as abandoned.
	StaleSessionAge time.Duration
}

// DefaultConfig sweeps throttle and rate-limit state every 5 minutes
// and reaps stale sessions every minute.
func DefaultConfig() Config {
	return Config{
		ThrottleSweepSchedule:  "@every 5m",
		RateLimitSweepSchedule: "@every 5m",
		StaleSessionSchedule:   "@every 1m",
		StaleSessionAge:        10 * time.Minute,
	}
}

// Janitor owns the cron scheduler and the collaborators it sweeps.
type Janitor struct {
	cfg       Config
	cron      *cron.Cron
	throttler *auth.LoginThrottler
	limiters  *ratelimit.Limiters
	registry  *session.Registry
}

// New wires a Janitor against the shared throttler, rate limiters and
// session registry a running hobbsd process owns.
func New(cfg Config, throttler *auth.LoginThrottler, limiters *ratelimit.Limiters, registry *session.Registry) *Janitor {
	return &Janitor{
		cfg:       cfg,
		throttler: throttler,
		limiters:  limiters,
		registry:  registry,
	}
}

// Start registers the sweeps and runs the cron scheduler until ctx is
// canceled, at which point it stops and waits for in-flight sweeps.
func (j *Janitor) Start(ctx context.Context) {
	j.cron = cron.New()

	if j.cfg.ThrottleSweepSchedule != "" && j.throttler != nil {
		if _, err := j.cron.AddFunc(j.cfg.ThrottleSweepSchedule, func() {
			j.throttler.Sweep(time.Now())
		}); err != nil {
			log.Printf("ERROR: janitor: failed to schedule throttle sweep: %v", err)
		}
	}

	if j.cfg.RateLimitSweepSchedule != "" && j.limiters != nil {
		if _, err := j.cron.AddFunc(j.cfg.RateLimitSweepSchedule, func() {
			j.limiters.Sweep(time.Now())
		}); err != nil {
			log.Printf("ERROR: janitor: failed to schedule rate-limit sweep: %v", err)
		}
	}

	if j.cfg.StaleSessionSchedule != "" && j.registry != nil {
		if _, err := j.cron.AddFunc(j.cfg.StaleSessionSchedule, func() {
			j.reapStaleSessions(time.Now())
		}); err != nil {
			log.Printf("ERROR: janitor: failed to schedule stale-session reap: %v", err)
		}
	}

	j.cron.Start()
	log.Printf("INFO: janitor started")

	<-ctx.Done()

	log.Printf("INFO: janitor stopping...")
	cronCtx := j.cron.Stop()
	<-cronCtx.Done()
	log.Printf("INFO: janitor stopped")
}

// reapStaleSessions force-disconnects any registry entry whose
// LastActivity predates StaleSessionAge, as a backstop for workers that
// never hit their own idle-timeout read deadline (e.g. a half-open TCP
// connection the OS hasn't noticed yet).
func (j *Janitor) reapStaleSessions(now time.Time) {
	cutoff := now.Add(-j.cfg.StaleSessionAge)
	for _, snap := range j.registry.Enumerate() {
		if snap.LastActivity.Before(cutoff) {
			j.registry.ForceDisconnect(snap.ID)
		}
	}
}
