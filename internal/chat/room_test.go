package chat

import (
	"testing"
	"time"
)

func TestRoomSpeakAndHistory(t *testing.T) {
	room := NewRoom(50)

	ch := room.Join(1, "SysOp")
	defer room.Leave(1)

	room.Speak(2, "User1", "Hello everyone!")

	select {
	case msg := <-ch:
		if msg.Handle != "User1" {
			t.Errorf("expected handle User1, got %q", msg.Handle)
		}
		if msg.Text != "Hello everyone!" {
			t.Errorf("expected text 'Hello everyone!', got %q", msg.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}

	history := room.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
}

func TestRoomJoinLeave(t *testing.T) {
	room := NewRoom(50)

	ch := room.Join(1, "SysOp")
	if room.ActiveCount() != 1 {
		t.Errorf("expected 1 active, got %d", room.ActiveCount())
	}

	room.Leave(1)
	if room.ActiveCount() != 0 {
		t.Errorf("expected 0 active after leave, got %d", room.ActiveCount())
	}

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestRoomHistoryRingBuffer(t *testing.T) {
	room := NewRoom(3)

	room.Speak(1, "A", "msg1")
	room.Speak(1, "A", "msg2")
	room.Speak(1, "A", "msg3")
	room.Speak(1, "A", "msg4")

	history := room.History()
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	if history[0].Text != "msg2" {
		t.Errorf("expected oldest retained to be msg2, got %q", history[0].Text)
	}
}

func TestRoomSpeakerExcludedFromOwnBroadcast(t *testing.T) {
	room := NewRoom(50)

	ch := room.Join(1, "SysOp")
	defer room.Leave(1)

	room.Speak(1, "SysOp", "talking to myself")

	select {
	case <-ch:
		t.Error("should not receive own broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoomAnnounceReachesAllParticipants(t *testing.T) {
	room := NewRoom(50)
	ch1 := room.Join(1, "A")
	ch2 := room.Join(2, "B")
	defer room.Leave(1)
	defer room.Leave(2)

	room.Announce("A has joined")

	for _, ch := range []<-chan Message{ch1, ch2} {
		select {
		case msg := <-ch:
			if !msg.IsSystem {
				t.Error("expected IsSystem true for an announcement")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for announcement")
		}
	}
}
