package upstream

import (
	"errors"
	"fmt"
)

// Sentinel errors produced by the credential store and client. Handlers map
// these onto HTTP statuses with errors.Is.
var (
	// ErrInvalidArgument marks caller input rejected before any network call.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound means the provider does not know the requested card.
	ErrNotFound = errors.New("card not found")

	// ErrAuth means the provider rejected the gateway's own credentials or token.
	ErrAuth = errors.New("upstream authentication failed")

	// ErrUnavailable covers network failures and timeouts reaching the provider.
	ErrUnavailable = errors.New("upstream unavailable")
)

// StatusError carries a non-2xx provider response that does not fit the
// sentinels above. The body is kept so the caller can decide how much to
// surface; handlers never leak it.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}
