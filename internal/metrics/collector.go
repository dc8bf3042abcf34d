// Package metrics exposes Prometheus instrumentation for the session
// runtime, grounded on the collector pattern from the pack's BFD
// daemon (gauge/counter vecs registered once at construction, thin
// Inc/Dec methods called from the hot path).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "hobbs"
	subsystem = "session"
)

// Collector holds all of hobbsd's process-wide Prometheus metrics.
type Collector struct {
	ActiveSessions *prometheus.GaugeVec

	AuthFailures     prometheus.Counter
	LoginLockouts    prometheus.Counter
	RateLimited      *prometheus.CounterVec
	StateTransitions *prometheus.CounterVec
}

// NewCollector creates and registers a Collector against reg. If reg
// is nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		ActiveSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active",
			Help:      "Number of currently connected sessions.",
		}, []string{"is_guest"}),

		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_failures_total",
			Help:      "Total failed login attempts.",
		}),

		LoginLockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "login_lockouts_total",
			Help:      "Total login attempts rejected by the throttler while locked.",
		}),

		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_total",
			Help:      "Total actions denied by a rate limiter, by action kind.",
		}, []string{"kind"}),

		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state_transitions_total",
			Help:      "Total screen-navigator state transitions.",
		}, []string{"from_state", "to_state"}),
	}

	reg.MustRegister(
		c.ActiveSessions,
		c.AuthFailures,
		c.LoginLockouts,
		c.RateLimited,
		c.StateTransitions,
	)

	return c
}

func (c *Collector) SessionConnected(isGuest bool) {
	c.ActiveSessions.WithLabelValues(boolLabel(isGuest)).Inc()
}

func (c *Collector) SessionDisconnected(isGuest bool) {
	c.ActiveSessions.WithLabelValues(boolLabel(isGuest)).Dec()
}

func (c *Collector) RecordAuthFailure() {
	c.AuthFailures.Inc()
}

func (c *Collector) RecordLoginLockout() {
	c.LoginLockouts.Inc()
}

func (c *Collector) RecordRateLimited(kind string) {
	c.RateLimited.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordStateTransition(from, to string) {
	c.StateTransitions.WithLabelValues(from, to).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
