// Package ratelimit enforces the gateway's request quotas: every caller
// identity gets two fixed windows, one per minute and one per day, and a
// request is admitted only when both are under their ceiling. Both counters
// move together or not at all.
package ratelimit

import (
	"context"
	"time"
)

// Fixed policy ceilings. These are deliberately not configurable.
const (
	PerMinuteLimit = 10
	PerDayLimit    = 100

	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

// Decision is the outcome of a quota check. RetryAfter is only meaningful when
// Allowed is false and holds the remaining span of the window that denied the
// request.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter admits or denies a request for the given caller identity. A denial
// must not consume quota. Implementations are safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
