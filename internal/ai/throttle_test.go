package ai

import (
	"testing"
	"time"
)

func TestThrottleAllowsFirstRequest(t *testing.T) {
	throttle := NewThrottle(10 * time.Second)

	allowed, retryAfter := throttle.Allow()
	if !allowed {
		t.Fatal("first request must be allowed")
	}
	if retryAfter != 0 {
		t.Errorf("expected zero retry-after, got %s", retryAfter)
	}
}

func TestThrottleRejectsWithinWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	throttle := NewThrottle(10 * time.Second)
	throttle.now = func() time.Time { return now }

	if allowed, _ := throttle.Allow(); !allowed {
		t.Fatal("first request must be allowed")
	}

	now = now.Add(3 * time.Second)
	allowed, retryAfter := throttle.Allow()
	if allowed {
		t.Fatal("request within the window must be rejected")
	}
	if retryAfter != 7*time.Second {
		t.Errorf("expected 7s retry-after, got %s", retryAfter)
	}
}

func TestThrottleRoundsRetryAfterUp(t *testing.T) {
	now := time.Unix(1000, 0)
	throttle := NewThrottle(10 * time.Second)
	throttle.now = func() time.Time { return now }

	throttle.Allow()

	now = now.Add(3*time.Second + 500*time.Millisecond)
	_, retryAfter := throttle.Allow()
	if retryAfter != 7*time.Second {
		t.Errorf("expected retry-after rounded up to 7s, got %s", retryAfter)
	}
}

func TestThrottleAllowsAfterWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	throttle := NewThrottle(10 * time.Second)
	throttle.now = func() time.Time { return now }

	throttle.Allow()

	now = now.Add(10 * time.Second)
	if allowed, _ := throttle.Allow(); !allowed {
		t.Fatal("request after the window must be allowed")
	}
}

func TestThrottleIsGlobal(t *testing.T) {
	// The cooldown is shared: a second caller is rejected even though it
	// never made a request itself
	throttle := NewThrottle(time.Minute)
	throttle.Allow()

	if allowed, _ := throttle.Allow(); allowed {
		t.Fatal("cooldown must apply to all callers")
	}
}

func TestThrottleReset(t *testing.T) {
	throttle := NewThrottle(time.Minute)
	throttle.Allow()
	throttle.Reset()

	if allowed, _ := throttle.Allow(); !allowed {
		t.Fatal("request after reset must be allowed")
	}
}
