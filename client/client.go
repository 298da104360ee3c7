// Package client is a Go client for the freelancehub HTTP API. It keeps the
// caller's token pair and refreshes it once when a request comes back 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const refreshPath = "/api/auth/refresh"

// ErrSessionExpired is returned when the refresh token is rejected or the
// retried request is still unauthorized. Stored tokens are cleared first.
var ErrSessionExpired = errors.New("client: session expired")

// APIError is any non-2xx response other than a handled 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Tokens is the pair issued by login and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type TokenStore interface {
	Get() Tokens
	Set(Tokens)
	Clear()
}

// MemoryStore is a TokenStore safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex
	t  Tokens
}

func (m *MemoryStore) Get() Tokens {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t
}

func (m *MemoryStore) Set(t Tokens) {
	m.mu.Lock()
	m.t = t
	m.mu.Unlock()
}

func (m *MemoryStore) Clear() { m.Set(Tokens{}) }

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	onLogout   func()
	log        *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogoutHook runs fn after the session expires and tokens are cleared.
func WithLogoutHook(fn func()) Option {
	return func(c *Client) { c.onLogout = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = &MemoryStore{}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokens:     tokens,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends body as JSON with the stored access token and decodes a 2xx
// response into out (when non-nil). On 401 it refreshes the token pair once
// and retries once.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	payload, err := encode(body)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, method, path, payload, true)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return decode(resp, out)
	}
	resp.Body.Close()

	if err := c.refresh(ctx); err != nil {
		c.log.Info("token refresh failed", zap.Error(err))
		c.expire()
		return ErrSessionExpired
	}

	resp, err = c.send(ctx, method, path, payload, true)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.expire()
		return ErrSessionExpired
	}
	return decode(resp, out)
}

func (c *Client) refresh(ctx context.Context) error {
	rt := c.tokens.Get().RefreshToken
	if rt == "" {
		return errors.New("no refresh token")
	}
	payload, err := encode(map[string]string{"refresh_token": rt})
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, http.MethodPost, refreshPath, payload, false)
	if err != nil {
		return err
	}

	var next Tokens
	if err := decode(resp, &next); err != nil {
		return err
	}
	if next.AccessToken == "" || next.RefreshToken == "" {
		return errors.New("refresh response missing tokens")
	}
	c.tokens.Set(next)
	return nil
}

func (c *Client) expire() {
	c.tokens.Clear()
	if c.onLogout != nil {
		c.onLogout()
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, auth bool) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		if at := c.tokens.Get().AccessToken; at != "" {
			req.Header.Set("Authorization", "Bearer "+at)
		}
	}
	return c.httpClient.Do(req)
}

func encode(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("client: encode body: %w", err)
	}
	return b, nil
}

// decode closes resp.Body.
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil {
			apiErr.Message = msg.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}
