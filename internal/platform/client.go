// Package platform is the typed REST client for the upstream platform API.
// Every response arrives in the envelope {status, message, data}; anything
// with status != "success" is surfaced as an *APIError carrying the server's
// user-facing message.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const statusSuccess = "success"

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// APIError is a server-reported business failure (status != "success").
// Data keeps whatever payload the server attached; some rejections (login
// against an unverified account) still carry a usable user object.
type APIError struct {
	HTTPStatus int
	Message    string
	Data       json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("platform request failed with HTTP %d", e.HTTPStatus)
}

// Message returns the server's user-facing message when err is an *APIError,
// otherwise the fallback. Transport failures never leak raw error text to the UI.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do issues one request and decodes the envelope. A non-empty token is sent
// as a bearer Authorization header; out, when non-nil, receives the envelope's
// data payload.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", ulid.Make().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("platform request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode platform response: %w", err)
	}

	c.logger.Debug("platform request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if env.Status != statusSuccess {
		return &APIError{HTTPStatus: resp.StatusCode, Message: env.Message, Data: env.Data}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode platform payload: %w", err)
		}
	}
	return nil
}

// queryPath appends filters as a query string.
func queryPath(path string, filters map[string]string) string {
	if len(filters) == 0 {
		return path
	}
	q := url.Values{}
	for k, v := range filters {
		q.Set(k, v)
	}
	return path + "?" + q.Encode()
}
