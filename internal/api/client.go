// Package api is the HTTP transport to the assistant backend. It owns the
// bearer token, injects the standard headers on every request, and converts
// unauthorized responses into a session-state transition.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"aichat/internal/session"
)

const (
	loginPath = "/usuario/login"
	chatPath  = "/usuario/chat"
	filesPath = "/usuario/files"
)

// Timeouts per operation class. Chat completions can take minutes.
const (
	DefaultTimeout = 15 * time.Second
	ChatTimeout    = 300 * time.Second
	UploadTimeout  = 60 * time.Second
)

const maxResponseBytes = 10 << 20

// Logger is the subset of the application logger the transport needs.
// A nil Logger disables logging.
type Logger interface {
	Info(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
}

// Client talks to the backend. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	sess    *session.State
	log     Logger
	debug   bool

	mu    sync.RWMutex
	token string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSessionState wires the session-expired flag the unauthorized hook
// flips. Without it, 401 handling still clears the token but nothing is
// notified.
func WithSessionState(s *session.State) ClientOption {
	return func(c *Client) { c.sess = s }
}

func WithLogger(l Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithDebug enables request/response logging, with the bearer token redacted.
func WithDebug(debug bool) ClientOption {
	return func(c *Client) { c.debug = debug }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken installs the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) ClearToken() {
	c.SetToken("")
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, body)
}

// doJSON sends a JSON request and decodes a JSON response into out (which may
// be nil when the response body does not matter).
func (c *Client) doJSON(ctx context.Context, method, path string, timeout time.Duration, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	raw, err := c.roundTrip(req, path)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// roundTrip applies the shared headers, performs the request, logs it, and
// handles the unauthorized signal. Returns the response body for 2xx.
//
// A 401 on any endpoint other than login clears the token and marks the
// session expired. A failed login attempt is not an expired session, so the
// login endpoint is excluded.
func (c *Client) roundTrip(req *http.Request, path string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.currentToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	c.debugLog("request", map[string]interface{}{
		"method":     req.Method,
		"url":        req.URL.String(),
		"request_id": req.Header.Get("X-Request-ID"),
		"auth":       redactToken(req.Header.Get("Authorization")),
	})

	resp, err := c.http.Do(req)
	if err != nil {
		c.debugLog("network error", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"duration": time.Since(start).String(),
			"error":    err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	c.debugLog("response", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})

	if resp.StatusCode == http.StatusUnauthorized && path != loginPath {
		c.ClearToken()
		if c.log != nil {
			c.log.Warn("authentication failed, session marked expired", map[string]interface{}{
				"path": path,
			})
		}
		if c.sess != nil {
			c.sess.MarkExpired()
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (c *Client) debugLog(msg string, fields map[string]interface{}) {
	if c.debug && c.log != nil {
		c.log.Info(msg, fields)
	}
}

func redactToken(authorization string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		return authorization
	}
	tok := authorization[len(prefix):]
	if len(tok) <= 5 {
		return prefix + "***"
	}
	return prefix + tok[:5] + "***"
}
