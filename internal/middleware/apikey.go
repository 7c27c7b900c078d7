package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cardgate/cardgate/internal/apierr"
)

const (
	// HeaderAPIKey carries the caller's static key.
	HeaderAPIKey = "X-API-Key"

	// LocalAPIKey holds the authenticated identity for downstream middleware.
	LocalAPIKey = "api_key"

	// LocalKeyFingerprint holds a short digest safe to log.
	LocalKeyFingerprint = "api_key_fp"
)

// APIKeyAuth validates X-API-Key against the configured key set. The presented
// key is hashed and compared against every configured digest without early
// exit, so match timing is independent of key material and position. A failure
// short-circuits the request before the rate limiter or any upstream call.
func APIKeyAuth(keys []string) fiber.Handler {
	digests := make([][sha256.Size]byte, len(keys))
	for i, k := range keys {
		digests[i] = sha256.Sum256([]byte(k))
	}

	return func(c *fiber.Ctx) error {
		presented := c.Get(HeaderAPIKey)
		if presented == "" {
			return apierr.Write(c, http.StatusUnauthorized, apierr.CodeMissingOrInvalidKey, "API key is required")
		}

		sum := sha256.Sum256([]byte(presented))

		match := -1
		for i := range digests {
			if subtle.ConstantTimeCompare(digests[i][:], sum[:]) == 1 {
				match = i
			}
		}
		if match < 0 {
			return apierr.Write(c, http.StatusUnauthorized, apierr.CodeMissingOrInvalidKey, "invalid API key")
		}

		c.Locals(LocalAPIKey, keys[match])
		c.Locals(LocalKeyFingerprint, Fingerprint(keys[match]))

		return c.Next()
	}
}

// Fingerprint returns a short stable digest of a key for logs and metrics.
// It is not reversible and never stands in for the key itself.
func Fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}
