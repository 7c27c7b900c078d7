// Package upstream talks to the external banking provider. It owns the
// credential lifecycle (TokenSource) and the three read operations the gateway
// forwards (Client). Payloads are treated as opaque JSON and passed through
// untouched.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TokenProvider yields a valid bearer token for provider calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Client wraps the provider's card endpoints. All calls attach a bearer token
// and are bounded by the configured timeout. No retries: a transient failure
// surfaces immediately and the caller decides what to do.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient builds a provider client rooted at baseURL.
func NewClient(baseURL string, tokens TokenProvider, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// ListCards fetches every card visible to the configured provider account.
func (c *Client) ListCards(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/credit-cards", nil)
}

// ListTransactions fetches transactions for a card, optionally bounded by a
// day range. Dates must be YYYY-MM-DD and are validated before any network
// I/O; when present they are forwarded verbatim.
func (c *Client) ListTransactions(ctx context.Context, cardID, startDate, endDate string) (json.RawMessage, error) {
	if err := validateDate("start_date", startDate); err != nil {
		return nil, err
	}
	if err := validateDate("end_date", endDate); err != nil {
		return nil, err
	}

	query := url.Values{}
	if startDate != "" {
		query.Set("start_date", startDate)
	}
	if endDate != "" {
		query.Set("end_date", endDate)
	}

	return c.get(ctx, "/credit-cards/"+url.PathEscape(cardID)+"/transactions", query)
}

// GetBalance fetches the current balance for a card.
func (c *Client) GetBalance(ctx context.Context, cardID string) (json.RawMessage, error) {
	return c.get(ctx, "/credit-cards/"+url.PathEscape(cardID)+"/balance", nil)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return json.RawMessage(body), nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: provider rejected token on %s", ErrAuth, path)
	default:
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return json.RawMessage(body), nil
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}
}

func validateDate(name, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return fmt.Errorf("%w: %s must be a valid YYYY-MM-DD date", ErrInvalidArgument, name)
	}
	return nil
}
