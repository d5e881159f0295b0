package core

import (
	"fmt"
	"sync"
)

// AttemptLimiter caps the provider attempts one turn may spend across the
// whole provider chain, quota retries included.
type AttemptLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewAttemptLimiter creates a limiter allowing max attempts. Zero means
// unlimited.
func NewAttemptLimiter(max int) *AttemptLimiter {
	return &AttemptLimiter{max: max}
}

// Increment records an attempt and fails once the limit is exceeded.
func (l *AttemptLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	if l.max > 0 && l.count > l.max {
		return fmt.Errorf("exceeded max provider attempts: %d", l.max)
	}
	return nil
}

// Count returns the attempts recorded so far.
func (l *AttemptLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Remaining returns the attempts left, or -1 when unlimited.
func (l *AttemptLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1
	}
	if r := l.max - l.count; r > 0 {
		return r
	}
	return 0
}
