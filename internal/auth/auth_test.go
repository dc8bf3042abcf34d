package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("expected matching password to check out")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestLoginLockoutAfterFiveFailures(t *testing.T) {
	th := NewLoginThrottler(5, 15*time.Minute, 15*time.Minute)
	ip := "10.0.0.5"

	for i := 0; i < 5; i++ {
		result, _ := th.Check(ip)
		if result != Allowed {
			t.Fatalf("attempt %d: expected Allowed before 5 failures recorded", i+1)
		}
		th.RecordFailure(ip)
	}

	result, retryAfter := th.Check(ip)
	if result != Locked {
		t.Fatal("expected Locked on the sixth attempt")
	}
	if retryAfter <= 0 {
		t.Fatal("expected a positive retry-after duration")
	}
}

func TestLoginThrottlerClearResetsHistory(t *testing.T) {
	th := NewLoginThrottler(5, 15*time.Minute, 15*time.Minute)
	ip := "10.0.0.5"
	for i := 0; i < 5; i++ {
		th.RecordFailure(ip)
	}
	if result, _ := th.Check(ip); result != Locked {
		t.Fatal("expected Locked before Clear")
	}
	th.Clear(ip)
	if result, _ := th.Check(ip); result != Allowed {
		t.Fatal("expected Allowed after Clear")
	}
}

func TestLoginThrottlerWindowExpiry(t *testing.T) {
	th := NewLoginThrottler(2, 10*time.Millisecond, 10*time.Millisecond)
	ip := "10.0.0.9"
	th.RecordFailure(ip)
	th.RecordFailure(ip)
	if result, _ := th.Check(ip); result != Locked {
		t.Fatal("expected Locked immediately after 2 failures")
	}
	time.Sleep(20 * time.Millisecond)
	if result, _ := th.Check(ip); result != Allowed {
		t.Fatal("expected Allowed once the failure window has fully elapsed")
	}
}

func TestLoginThrottlerIsolatesPeers(t *testing.T) {
	th := NewLoginThrottler(1, time.Minute, time.Minute)
	th.RecordFailure("1.1.1.1")
	if result, _ := th.Check("1.1.1.1"); result != Locked {
		t.Fatal("expected 1.1.1.1 locked")
	}
	if result, _ := th.Check("2.2.2.2"); result != Allowed {
		t.Fatal("expected a different peer to remain unaffected")
	}
}

func TestLoginThrottlerSweepDropsExpiredPeers(t *testing.T) {
	th := NewLoginThrottler(5, 10*time.Millisecond, 10*time.Millisecond)
	th.RecordFailure("3.3.3.3")

	th.Sweep(time.Now().Add(20 * time.Millisecond))

	th.mu.Lock()
	_, stillTracked := th.failures["3.3.3.3"]
	th.mu.Unlock()
	if stillTracked {
		t.Fatal("expected sweep to drop a peer whose failures have all aged out")
	}
}
