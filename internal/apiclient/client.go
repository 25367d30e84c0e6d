// Package apiclient talks to the dashboard REST API. Every call goes through
// Client.Do, which attaches the bearer token, unwraps the response envelope
// and centralises 401 handling.
package apiclient

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
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/hongminglow/ledgerdash/internal/metrics"
)

const maxBodyBytes = 8 << 20

// TokenSource yields the current bearer token, or "" when logged out.
type TokenSource interface {
	Token() string
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the single gateway to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func()
}

// New creates a client. A zero timeout falls back to 30s.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetTokenSource installs the provider of the bearer token.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// OnUnauthorized registers fn to run whenever an authenticated call gets a 401.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Do sends one request. endpoint is the concrete path (with query string);
// route is its template, used as a low-cardinality metrics label. When out is
// non-nil the envelope's data is decoded into it.
func (c *Client) Do(ctx context.Context, method, endpoint, route string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	c.mu.RLock()
	tokens, hook := c.tokens, c.onUnauthorized
	c.mu.RUnlock()

	var token string
	if tokens != nil {
		token = tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With(zap.String("method", method), zap.String("endpoint", endpoint), zap.String("request_id", requestID))
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(method, route, 0, time.Since(started))
		log.Warn("api request failed", zap.Error(err))
		return &NetworkError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.ObserveAPIRequest(method, route, resp.StatusCode, time.Since(started))
	if err != nil {
		return &NetworkError{Op: method + " " + endpoint, Err: fmt.Errorf("read response: %w", err)}
	}
	log.Debug("api response", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode == http.StatusUnauthorized {
		if token != "" && hook != nil {
			log.Info("session rejected by server; logging out")
			hook()
		}
		return &RequestError{Status: resp.StatusCode, Message: serverMessage(raw, "Unauthorized")}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Status: resp.StatusCode, Message: serverMessage(raw, fallbackMessage)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn("undecodable api response", zap.Error(err))
		return &RequestError{Status: resp.StatusCode, Message: "Invalid response from server"}
	}
	if !env.Success {
		return &RequestError{Status: resp.StatusCode, Message: serverMessage(raw, fallbackMessage)}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", route, err)
	}
	return nil
}

// serverMessage pulls a human message out of an error body of any shape.
func serverMessage(raw []byte, fallback string) string {
	if !gjson.ValidBytes(raw) {
		return fallback
	}
	for _, path := range []string{"message", "error", "error.message"} {
		if v := gjson.GetBytes(raw, path); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return v.Str
		}
	}
	return fallback
}

// unwrapDocs returns the "docs" array of a paginated payload, or raw itself.
func unwrapDocs(raw json.RawMessage) json.RawMessage {
	if docs := gjson.GetBytes(raw, "docs"); docs.IsArray() {
		return json.RawMessage(docs.Raw)
	}
	return raw
}
