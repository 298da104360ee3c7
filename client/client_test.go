package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeAPI accepts access token "good" and rotates refresh token "r1" to
// the pair good/r2.
type fakeAPI struct {
	refreshes   atomic.Int32
	refreshFail bool
	alwaysDeny  bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch r.URL.Path {
	case "/api/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			writeJSON(http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(http.StatusOK, map[string]any{"access_token": "stale", "refresh_token": "r1", "expires_in": 1})
	case "/api/auth/refresh":
		f.refreshes.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if f.refreshFail || body["refresh_token"] != "r1" {
			writeJSON(http.StatusUnauthorized, map[string]string{"message": "refresh token expired or invalid"})
			return
		}
		writeJSON(http.StatusOK, map[string]any{"access_token": "good", "refresh_token": "r2"})
	case "/api/notifications/unread_count":
		if f.alwaysDeny || r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(http.StatusUnauthorized, map[string]string{"message": "Access denied"})
			return
		}
		writeJSON(http.StatusOK, map[string]int{"count": 4})
	case "/api/reports/revenue":
		writeJSON(http.StatusForbidden, map[string]string{"message": "Access forbidden"})
	default:
		http.NotFound(w, r)
	}
}

func setup(t *testing.T, api *fakeAPI, opts ...Option) (*Client, *MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	tokens := &MemoryStore{}
	return New(srv.URL, tokens, opts...), tokens
}

func TestRefreshAndRetryOnce(t *testing.T) {
	api := &fakeAPI{}
	c, tokens := setup(t, api)
	ctx := context.Background()

	if _, err := c.Login(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	n, err := c.UnreadCount(ctx)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 4 {
		t.Fatalf("count = %d", n)
	}
	if got := api.refreshes.Load(); got != 1 {
		t.Fatalf("refreshes = %d", got)
	}
	if got := tokens.Get(); got.AccessToken != "good" || got.RefreshToken != "r2" {
		t.Fatalf("tokens = %+v", got)
	}
}

func TestRefreshFailureExpiresSession(t *testing.T) {
	api := &fakeAPI{refreshFail: true}
	var loggedOut int
	c, tokens := setup(t, api, WithLogoutHook(func() { loggedOut++ }))
	tokens.Set(Tokens{AccessToken: "stale", RefreshToken: "r1"})

	_, err := c.UnreadCount(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v", err)
	}
	if loggedOut != 1 {
		t.Fatalf("logout hook calls = %d", loggedOut)
	}
	if got := tokens.Get(); got != (Tokens{}) {
		t.Fatalf("tokens not cleared: %+v", got)
	}
}

func TestRetryStillUnauthorized(t *testing.T) {
	api := &fakeAPI{alwaysDeny: true}
	var loggedOut int
	c, tokens := setup(t, api, WithLogoutHook(func() { loggedOut++ }))
	tokens.Set(Tokens{AccessToken: "stale", RefreshToken: "r1"})

	_, err := c.UnreadCount(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v", err)
	}
	if got := api.refreshes.Load(); got != 1 {
		t.Fatalf("refreshes = %d, want exactly one", got)
	}
	if loggedOut != 1 {
		t.Fatalf("logout hook calls = %d", loggedOut)
	}
}

func TestNoRefreshTokenExpiresImmediately(t *testing.T) {
	api := &fakeAPI{}
	c, _ := setup(t, api)

	_, err := c.UnreadCount(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v", err)
	}
	if got := api.refreshes.Load(); got != 0 {
		t.Fatalf("refreshes = %d", got)
	}
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	api := &fakeAPI{}
	c, tokens := setup(t, api)
	tokens.Set(Tokens{AccessToken: "good", RefreshToken: "r1"})

	_, err := c.Revenue(context.Background(), "2024-01-01", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "Access forbidden" {
		t.Fatalf("api error = %+v", apiErr)
	}
}

func TestLoginBadCredentialsIsNotSessionExpiry(t *testing.T) {
	api := &fakeAPI{}
	var loggedOut int
	c, _ := setup(t, api, WithLogoutHook(func() { loggedOut++ }))

	_, err := c.Login(context.Background(), "ann@example.com", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v", err)
	}
	if api.refreshes.Load() != 0 || loggedOut != 0 {
		t.Fatalf("refreshes = %d, logouts = %d", api.refreshes.Load(), loggedOut)
	}
}
