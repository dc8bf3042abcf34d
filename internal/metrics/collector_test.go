package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestAuthFailuresIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthFailure()
	c.RecordAuthFailure()

	if got := counterValue(t, c.AuthFailures); got != 2 {
		t.Fatalf("AuthFailures = %v, want 2", got)
	}
}

func TestSessionGaugeTracksConnectDisconnect(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SessionConnected(false)
	c.SessionConnected(false)
	c.SessionDisconnected(false)

	g, err := c.ActiveSessions.GetMetricWithLabelValues("false")
	if err != nil {
		t.Fatalf("get gauge: %v", err)
	}
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	if got := m.GetGauge().GetValue(); got != 1 {
		t.Fatalf("active sessions = %v, want 1", got)
	}
}

func TestRateLimitedCounterByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRateLimited("mail.send")
	c.RecordRateLimited("mail.send")
	c.RecordRateLimited("post.create")

	mailCounter, err := c.RateLimited.GetMetricWithLabelValues("mail.send")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if got := counterValue(t, mailCounter); got != 2 {
		t.Fatalf("mail.send rate-limited count = %v, want 2", got)
	}
}
