// Package api is the HTTP client for the training-management REST API:
// listing rows, deleting by id, and updating with a JSON PUT.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oakwood-commons/trainctl/internal/record"
	"github.com/oakwood-commons/trainctl/pkg/logger"
)

// RequestIDHeader carries a per-request uuid to correlate client and server logs.
const RequestIDHeader = "X-Request-ID"

const defaultTimeout = 30 * time.Second

// Error is a non-2xx response. Message comes from the JSON body's "message"
// field, falling back to the status text.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string { return e.Message }

// StatusCode extracts the HTTP status of err, 0 when it is not an *Error.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Client talks to one API host. Paths passed to its methods are joined to BaseURL
// unless they are absolute URLs.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends Authorization: Bearer <token>.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient returns a client for baseURL (e.g. http://localhost:8080).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured host.
func (c *Client) BaseURL() string { return c.baseURL }

// List fetches path and decodes rows. The body may be a JSON array or an
// object wrapping the array in "data" or "items".
func (c *Client) List(ctx context.Context, path string, query url.Values) ([]record.Record, error) {
	target := c.resolve(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	body, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return DecodeRows(body)
}

// Delete issues DELETE <baseURL>/<id>.
func (c *Client) Delete(ctx context.Context, baseURL, id string) error {
	target := strings.TrimRight(c.resolve(baseURL), "/") + "/" + url.PathEscape(id)
	_, err := c.do(ctx, http.MethodDelete, target, nil)
	return err
}

// Put issues PUT <baseURL> with body encoded as JSON.
func (c *Client) Put(ctx context.Context, baseURL string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	_, err = c.do(ctx, http.MethodPut, c.resolve(baseURL), payload)
	return err
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) do(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	lgr := logger.FromContext(ctx).WithValues(logger.RequestIDKey, reqID, "method", method, "url", target)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		lgr.Error(err, "request failed")
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	lgr.V(1).Info("request completed", "status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, body)
	}
	return body, nil
}

func parseError(code int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &Error{StatusCode: code, Message: payload.Message}
	}
	msg := http.StatusText(code)
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", code)
	}
	return &Error{StatusCode: code, Message: msg}
}

// DecodeRows decodes a JSON array of objects, or {"data": [...]} / {"items": [...]}.
func DecodeRows(body []byte) ([]record.Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []record.Record{}, nil
	}
	if trimmed[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		for _, key := range []string{"data", "items", "results"} {
			if raw, ok := env[key]; ok {
				trimmed = raw
				break
			}
		}
	}
	var rows []record.Record
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	if rows == nil {
		rows = []record.Record{}
	}
	return rows, nil
}
