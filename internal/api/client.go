// Package api is the typed client for the storefront REST backend.
//
// Every method issues exactly one request: no retry, no caching, no batching.
// The bearer token is attached by the client's TokenSource so callers only
// pass ids and payloads.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrTransport wraps network failures (the backend was never reached or the
// response could not be read).
var ErrTransport = errors.New("backend unreachable")

// APIError is returned when the backend responds with a non-2xx status.
type APIError struct {
	Status  int
	Message string
	Errors  json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %d", e.Status)
	}
	return fmt.Sprintf("backend %d: %s", e.Status, e.Message)
}

// Response is the envelope every call returns on success.
type Response[T any] struct {
	Data   T
	Status int
}

// TokenSource yields the bearer token for the request being made.
type TokenSource func(ctx context.Context) string

// Observer is notified once per backend call. route is the path template.
type Observer func(method, route string, status int, d time.Duration)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	observe    Observer
}

// New creates a client for baseURL (for example "https://shop.example/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Tokens:     TokenFrom,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTPClient = h }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.Tokens = ts }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

type tokenKey struct{}

// WithToken stores the caller's bearer token on ctx for the default TokenSource.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey{}).(string)
	return s
}

type request struct {
	method      string
	route       string
	path        string
	body        io.Reader
	contentType string
}

func (c *Client) doJSON(ctx context.Context, method, route, path string, in, out any) (int, error) {
	req := request{method: method, route: route, path: path}
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", method, route, err)
		}
		req.body = bytes.NewReader(b)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, r request, out any) (status int, err error) {
	start := time.Now()
	defer func() {
		if c.observe != nil {
			c.observe(r.method, r.route, status, time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, r.method, c.BaseURL+r.path, r.body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.Tokens != nil {
		if tok := c.Tokens(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %v", ErrTransport, r.method, r.route, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: read %s %s: %v", ErrTransport, r.method, r.route, err)
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, decodeError(resp.StatusCode, b)
	}
	if out != nil && len(bytes.TrimSpace(b)) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", r.method, r.route, err)
		}
	}
	return resp.StatusCode, nil
}

func decodeError(status int, b []byte) *APIError {
	e := &APIError{Status: status}
	var body struct {
		Message string          `json:"message"`
		Title   string          `json:"title"`
		Detail  string          `json:"detail"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(b, &body); err == nil {
		e.Errors = body.Errors
		for _, m := range []string{body.Message, body.Detail, body.Title} {
			if m != "" {
				e.Message = m
				break
			}
		}
		return e
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		e.Message = s
		return e
	}
	if t := strings.TrimSpace(string(b)); len(t) > 0 && len(t) <= 256 && !strings.HasPrefix(t, "<") {
		e.Message = t
	}
	return e
}
