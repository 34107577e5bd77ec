package statsapi

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between outbound calls, process-wide.
// The zero value is unusable; construct with NewLimiter.
type Limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastCall    time.Time
}

// NewLimiter creates a limiter with the given minimum inter-call interval.
// Non-positive intervals disable limiting.
func NewLimiter(minInterval time.Duration) *Limiter {
	return &Limiter{minInterval: minInterval}
}

// Wait blocks until the minimum interval since the previous call has
// elapsed. The slot is reserved under the lock before sleeping, so
// concurrent callers line up one interval apart instead of piling onto the
// same window. On cancellation the reservation is released again unless a
// later caller has already queued behind it.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.minInterval <= 0 {
		return nil
	}
	l.mu.Lock()
	now := time.Now()
	slot := l.lastCall.Add(l.minInterval)
	if l.lastCall.IsZero() || slot.Before(now) {
		slot = now
	}
	l.lastCall = slot
	l.mu.Unlock()

	if err := SleepWithContext(ctx, time.Until(slot)); err != nil {
		l.mu.Lock()
		if l.lastCall.Equal(slot) {
			l.lastCall = slot.Add(-l.minInterval)
		}
		l.mu.Unlock()
		return err
	}
	return nil
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
