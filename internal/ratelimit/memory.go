package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// elapsed reports whether the window has run its full span.
func (w *window) elapsed(now time.Time, size time.Duration) bool {
	return w.count > 0 && now.Sub(w.start) >= size
}

func (w *window) remaining(now time.Time, size time.Duration) time.Duration {
	return w.start.Add(size).Sub(now)
}

type counters struct {
	minute window
	day    window
}

// MemoryLimiter keeps per-key counters in process memory behind a single
// mutex, so two simultaneous requests for the same key can never both observe
// a stale count. State starts empty on process start and is never torn down.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*counters
	now     func() time.Time
}

// NewMemory returns the default in-process limiter.
func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*counters),
		now:     time.Now,
	}
}

// Allow checks both windows for the key and, when both are under ceiling,
// counts the request against both. Windows are anchored at the first counted
// request and reset once their span has fully elapsed.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	c := l.entries[key]
	if c == nil {
		c = &counters{}
		l.entries[key] = c
	}

	if c.minute.elapsed(now, minuteWindow) {
		c.minute = window{}
	}
	if c.day.elapsed(now, dayWindow) {
		c.day = window{}
	}

	// Day ceiling first: when both windows are exhausted the longer wait wins.
	if c.day.count >= PerDayLimit {
		return Decision{RetryAfter: c.day.remaining(now, dayWindow)}, nil
	}
	if c.minute.count >= PerMinuteLimit {
		return Decision{RetryAfter: c.minute.remaining(now, minuteWindow)}, nil
	}

	if c.minute.count == 0 {
		c.minute.start = now
	}
	if c.day.count == 0 {
		c.day.start = now
	}
	c.minute.count++
	c.day.count++

	return Decision{Allowed: true}, nil
}
