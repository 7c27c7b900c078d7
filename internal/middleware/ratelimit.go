package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/cardgate/cardgate/internal/apierr"
	"github.com/cardgate/cardgate/internal/ratelimit"
)

// RateLimit enforces per-key quotas using the authenticated identity set by
// APIKeyAuth. Denials carry a Retry-After hint from the exhausted window.
// Limiter backend failures fail open with a warning, matching the advisory
// nature of the quota.
func RateLimit(limiter ratelimit.Limiter, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, _ := c.Locals(LocalAPIKey).(string)
		if key == "" {
			// Only reachable when the route is miswired without APIKeyAuth.
			return apierr.Write(c, http.StatusUnauthorized, apierr.CodeMissingOrInvalidKey, "API key is required")
		}

		decision, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			logger.Warn("rate limiter backend failure, admitting request",
				slog.String("key_fp", Fingerprint(key)),
				slog.Any("error", err),
			)
			return c.Next()
		}

		if !decision.Allowed {
			retry := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return apierr.Write(c, http.StatusTooManyRequests, apierr.CodeRateLimitExceeded, "rate limit exceeded, retry later")
		}

		return c.Next()
	}
}
