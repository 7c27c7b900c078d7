package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:v1:"

// allowScript moves both window counters atomically: it increments minute and
// day together, and rolls both back when either ceiling is hit, so a denied
// request consumes nothing. Returns {allowed, retry_after_ms}.
var allowScript = redis.NewScript(`
local minute = redis.call('INCR', KEYS[1])
if minute == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local day = redis.call('INCR', KEYS[2])
if day == 1 then
  redis.call('PEXPIRE', KEYS[2], ARGV[2])
end
if minute > tonumber(ARGV[3]) or day > tonumber(ARGV[4]) then
  redis.call('DECR', KEYS[1])
  redis.call('DECR', KEYS[2])
  local wait = redis.call('PTTL', KEYS[1])
  if day > tonumber(ARGV[4]) then
    wait = redis.call('PTTL', KEYS[2])
  end
  if wait < 0 then
    wait = 0
  end
  return {0, wait}
end
return {1, 0}
`)

// RedisLimiter enforces the same dual-window policy against a shared Redis,
// for deployments that want quotas to survive restarts and span replicas.
// Window expiry rides on key TTLs instead of stored timestamps.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedis builds a limiter over the provided client.
func NewRedis(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

// Allow runs the counting script for the key. Backend failures are returned to
// the caller, which decides whether to fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	keys := []string{
		redisKeyPrefix + "minute:" + key,
		redisKeyPrefix + "day:" + key,
	}

	res, err := allowScript.Run(ctx, l.client, keys,
		minuteWindow.Milliseconds(),
		dayWindow.Milliseconds(),
		PerMinuteLimit,
		PerDayLimit,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	return Decision{RetryAfter: time.Duration(res[1]) * time.Millisecond}, nil
}
