package session

import "testing"

func TestNewSessionStartsAtWelcome(t *testing.T) {
	s := NewSession(1, "10.0.0.1:4001")
	if s.State != StateWelcome {
		t.Fatalf("initial state = %v, want Welcome", s.State)
	}
	if s.UserID != nil {
		t.Fatal("expected no authenticated user on a fresh session")
	}
}

func TestClearUserIsIdempotent(t *testing.T) {
	uid := 7
	s := NewSession(1, "addr")
	s.UserID = &uid
	s.Username = "carol"
	s.State = StateMainMenu

	s.ClearUser()
	if s.UserID != nil || s.Username != "" {
		t.Fatal("expected user cleared after first ClearUser")
	}

	// Logout; Logout from MainMenu is equivalent to Logout (idempotent logout).
	s.ClearUser()
	if s.UserID != nil || s.Username != "" {
		t.Fatal("second ClearUser should be a no-op, not an error")
	}
}

func TestRegistryUpdateAndEnumerate(t *testing.T) {
	r := NewRegistry()
	s1 := NewSession(1, "a")
	s2 := NewSession(2, "b")
	r.Update(s1)
	r.Update(s2)

	snaps := r.Enumerate()
	if len(snaps) != 2 {
		t.Fatalf("len(snaps) = %d, want 2", len(snaps))
	}
	if snaps[0].ID != 1 || snaps[1].ID != 2 {
		t.Fatalf("expected snapshots ordered by id, got %+v", snaps)
	}
}

func TestRegistryForceDisconnect(t *testing.T) {
	r := NewRegistry()
	s := NewSession(5, "c")
	r.Update(s)

	if r.ShouldDisconnect(5) {
		t.Fatal("fresh session should not be flagged for disconnect")
	}

	r.ForceDisconnect(5)
	if !r.ShouldDisconnect(5) {
		t.Fatal("expected ShouldDisconnect true after ForceDisconnect")
	}
}

func TestRegistryForceDisconnectUnknownSessionIsNoop(t *testing.T) {
	r := NewRegistry()
	r.ForceDisconnect(999) // must not panic
	if r.ShouldDisconnect(999) {
		t.Fatal("unknown session should never report should-disconnect true")
	}
}

func TestRegistryUnregisterRemovesSession(t *testing.T) {
	r := NewRegistry()
	s := NewSession(9, "d")
	r.Update(s)
	r.Unregister(9)

	snaps := r.Enumerate()
	if len(snaps) != 0 {
		t.Fatalf("expected no entries after unregister, got %d", len(snaps))
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	uid := 3
	s := NewSession(1, "addr")
	s.UserID = &uid

	snap := s.Snapshot()
	*snap.UserID = 999

	if *s.UserID != 3 {
		t.Fatal("mutating a snapshot's UserID must not affect the live session")
	}
}
