package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// expirySkew is subtracted from the advertised lifetime so a token is refreshed
// shortly before the provider would reject it.
const expirySkew = 30 * time.Second

// AccessToken is the cached upstream credential.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenSource exchanges the configured client id/secret for provider access
// tokens and caches the result until expiry. The mutex is held across the
// exchange itself, so concurrent callers hitting an expired token trigger
// exactly one exchange and all observe the winner's result.
type TokenSource struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	timeout      time.Duration

	mu     sync.Mutex
	cached AccessToken
	now    func() time.Time
}

// NewTokenSource builds a credential store for the provider at baseURL. Every
// exchange is bounded by timeout.
func NewTokenSource(baseURL, clientID, clientSecret string, timeout time.Duration) *TokenSource {
	return &TokenSource{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{},
		timeout:      timeout,
		now:          time.Now,
	}
}

// Token returns a valid access token, performing a credential exchange when
// none is cached or the cached one has expired.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached.Value != "" && s.now().Before(s.cached.ExpiresAt) {
		return s.cached.Value, nil
	}

	token, err := s.exchange(ctx)
	if err != nil {
		return "", err
	}

	s.cached = token
	return token.Value, nil
}

type exchangeRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *TokenSource) exchange(ctx context.Context) (AccessToken, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payload, err := json.Marshal(exchangeRequest{ClientID: s.clientID, ClientSecret: s.clientSecret})
	if err != nil {
		return AccessToken{}, fmt.Errorf("encode credential exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/token", bytes.NewReader(payload))
	if err != nil {
		return AccessToken{}, fmt.Errorf("build credential exchange: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: credential exchange: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: read exchange response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through
	case resp.StatusCode >= 500:
		return AccessToken{}, fmt.Errorf("%w: credential exchange returned %d", ErrUnavailable, resp.StatusCode)
	default:
		return AccessToken{}, fmt.Errorf("%w: credential exchange returned %d", ErrAuth, resp.StatusCode)
	}

	var parsed exchangeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return AccessToken{}, fmt.Errorf("%w: decode exchange response: %v", ErrUnavailable, err)
	}
	if parsed.AccessToken == "" || parsed.ExpiresIn <= 0 {
		return AccessToken{}, fmt.Errorf("%w: exchange response missing token or lifetime", ErrUnavailable)
	}

	return AccessToken{
		Value:     parsed.AccessToken,
		ExpiresAt: s.now().Add(time.Duration(parsed.ExpiresIn)*time.Second - expirySkew),
	}, nil
}
