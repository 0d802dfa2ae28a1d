// Package backend is the HTTP adapter for the external advisory backend. It
// injects bearer tokens, classifies every outcome into success, auth-expired,
// or failure, and parses responses into typed entities at the boundary so the
// rest of the client never handles raw JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenSource supplies the current bearer token, or "" when logged out.
type TokenSource interface {
	Token() string
}

// Client executes requests against the backend. It performs no retries;
// retry policy belongs to callers.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	tokens        TokenSource
	onAuthExpired func(context.Context)
	log           *zap.Logger
}

// NewClient constructs an adapter for the given base URL.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        log,
	}
}

// OnAuthExpired registers the session invalidation hook. It runs before an
// ErrAuthExpired propagates, so every caller observes an already-cleared
// session.
func (c *Client) OnAuthExpired(fn func(context.Context)) {
	c.onAuthExpired = fn
}

// execute performs one request and classifies the outcome. A 401 is the sole
// signal for auth expiry; any other non-2xx becomes a ServerError.
func (c *Client) execute(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Debug("token rejected", zap.String("path", path))
		if c.onAuthExpired != nil {
			c.onAuthExpired(ctx)
		}
		return nil, ErrAuthExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Status: resp.StatusCode, Reason: errorReason(data)}
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := c.execute(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorReason pulls a display reason out of an error body. The backend uses
// "detail"; older deployments used "error".
func errorReason(data []byte) string {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Detail != "" {
		return body.Detail
	}
	return body.Error
}
