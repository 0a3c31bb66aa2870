// Package api is a client for the quiz platform's REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	sessionCookieName = "sessionid"
	csrfCookieName    = "csrftoken"
)

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	session   string
	csrfToken string
	log       logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSession authenticates requests with an existing backend session id.
func WithSession(sessionID string) Option {
	return func(c *Client) { c.session = sessionID }
}

// WithCSRFToken sends the token as cookie and X-CSRFToken header.
func WithCSRFToken(token string) Option {
	return func(c *Client) { c.csrfToken = token }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do sends one JSON request. Non-2xx responses become *APIError; transport
// failures and unreadable success bodies become *FetchError. Empty success
// bodies leave out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, Err: fmt.Errorf("encode body: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL.String() + path
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.session})
	}
	if c.csrfToken != "" {
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: c.csrfToken})
		req.Header.Set("X-CSRFToken", c.csrfToken)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"request_id": requestID, "op": op}).WithError(err).Debug("request failed")
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"op":         op,
		"status":     resp.StatusCode,
		"duration":   time.Since(started).String(),
	}).Debug("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &FetchError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
