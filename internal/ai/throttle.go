package ai

import (
	"sync"
	"time"
)

// Throttle enforces a single global cooldown across all callers: after any
// allowed request, every request is rejected until the window has passed.
type Throttle struct {
	mu     sync.Mutex
	last   time.Time
	window time.Duration
	now    func() time.Time
}

// NewThrottle creates a throttle with the given cooldown window
func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether a request may proceed now. When denied it returns
// the remaining cooldown, rounded up to whole seconds.
func (t *Throttle) Allow() (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	elapsed := now.Sub(t.last)
	if !t.last.IsZero() && elapsed < t.window {
		remaining := t.window - elapsed
		if rem := remaining % time.Second; rem != 0 {
			remaining += time.Second - rem
		}
		return false, remaining
	}

	t.last = now
	return true, 0
}

// Reset clears the cooldown
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = time.Time{}
}
