package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newExchangeServer(t *testing.T, exchanges *atomic.Int32, delay time.Duration) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		var req exchangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID != "client-1" || req.ClientSecret != "sekrit" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-" + string(rune('0'+n)),
			"expires_in":   3600,
		})
	})
	return httptest.NewServer(mux)
}

func TestTokenCachedUntilExpiry(t *testing.T) {
	var exchanges atomic.Int32
	srv := newExchangeServer(t, &exchanges, 0)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "client-1", "sekrit", 5*time.Second)
	ctx := context.Background()

	first, err := ts.Token(ctx)
	if err != nil {
		t.Fatalf("first token: %v", err)
	}
	second, err := ts.Token(ctx)
	if err != nil {
		t.Fatalf("second token: %v", err)
	}

	if first != second {
		t.Fatalf("expected the cached token, got %q then %q", first, second)
	}
	if got := exchanges.Load(); got != 1 {
		t.Fatalf("expected exactly one exchange, got %d", got)
	}
}

func TestTokenRefreshedAfterExpiry(t *testing.T) {
	var exchanges atomic.Int32
	srv := newExchangeServer(t, &exchanges, 0)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "client-1", "sekrit", 5*time.Second)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := base
	ts.now = func() time.Time { return now }

	ctx := context.Background()

	if _, err := ts.Token(ctx); err != nil {
		t.Fatalf("first token: %v", err)
	}

	// Just inside the skew-adjusted lifetime: still cached.
	now = base.Add(3600*time.Second - expirySkew - time.Second)
	if _, err := ts.Token(ctx); err != nil {
		t.Fatalf("cached token: %v", err)
	}
	if got := exchanges.Load(); got != 1 {
		t.Fatalf("expected one exchange before expiry, got %d", got)
	}

	now = base.Add(3600 * time.Second)
	if _, err := ts.Token(ctx); err != nil {
		t.Fatalf("refreshed token: %v", err)
	}
	if got := exchanges.Load(); got != 2 {
		t.Fatalf("expected a second exchange after expiry, got %d", got)
	}
}

func TestTokenConcurrentCallersSingleExchange(t *testing.T) {
	var exchanges atomic.Int32
	srv := newExchangeServer(t, &exchanges, 50*time.Millisecond)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "client-1", "sekrit", 5*time.Second)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ts.Token(ctx); err != nil {
				t.Errorf("token: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := exchanges.Load(); got != 1 {
		t.Fatalf("expected exactly one exchange under concurrency, got %d", got)
	}
}

func TestTokenExchangeRejected(t *testing.T) {
	var exchanges atomic.Int32
	srv := newExchangeServer(t, &exchanges, 0)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "client-1", "wrong-secret", 5*time.Second)

	_, err := ts.Token(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

func TestTokenExchangeUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ts := NewTokenSource(url, "client-1", "sekrit", time.Second)

	_, err := ts.Token(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestTokenMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"access_token": "", "expires_in": 0})
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "client-1", "sekrit", time.Second)

	_, err := ts.Token(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for a malformed response, got %v", err)
	}
}
