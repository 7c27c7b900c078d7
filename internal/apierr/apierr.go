// Package apierr defines the stable JSON error envelope returned by every
// failing request. Callers key off the machine-readable code; the message is
// advisory and never carries internal detail or credential material.
package apierr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes exposed on the wire.
const (
	CodeMissingOrInvalidKey = "missing_or_invalid_key"
	CodeRateLimitExceeded   = "rate_limit_exceeded"
	CodeInvalidArgument     = "invalid_argument"
	CodeCardNotFound        = "card_not_found"
	CodeNotFound            = "not_found"
	CodeMethodNotAllowed    = "method_not_allowed"
	CodeUpstreamAuthFailed  = "upstream_auth_failed"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeUpstreamError       = "upstream_error"
	CodeInternalError       = "internal_error"
)

// Response is the body of every error reply.
type Response struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Write sends a structured error response with the given status.
func Write(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(Response{Error: code, Message: message})
}

// Handler is installed as the Fiber error handler so that errors escaping the
// middleware chain (router misses, panics surfaced by recover, stray
// fiber.Error values) still produce the envelope. Server-side failures are
// reported without detail.
func Handler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	message := "internal server error"
	if status < fiber.StatusInternalServerError && fe != nil && fe.Message != "" {
		message = fe.Message
	}

	return Write(c, status, codeForStatus(status), message)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return CodeInvalidArgument
	case fiber.StatusUnauthorized:
		return CodeMissingOrInvalidKey
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case fiber.StatusTooManyRequests:
		return CodeRateLimitExceeded
	case fiber.StatusBadGateway:
		return CodeUpstreamError
	case fiber.StatusServiceUnavailable:
		return CodeUpstreamUnavailable
	default:
		return CodeInternalError
	}
}
