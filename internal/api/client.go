// Package api issues JSON requests against the task API.
//
// The client attaches a bearer token when one is given, decodes JSON
// responses, and turns every non-2xx status into an *HTTPError and every
// transport failure into a *TransportError. It never reads or writes the
// session store.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// Options describe a single request.
type Options struct {
	// Method defaults to GET.
	Method string

	// Body is encoded as JSON when non-nil.
	Body any

	// Token is sent as a bearer credential when non-empty.
	Token string
}

// Client sends requests to a fixed base URL.
type Client struct {
	baseURL string
	http    *http.Client
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a client for baseURL. A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request sends one request to base+path and returns the JSON payload.
//
// A response body that is empty or not JSON is treated as an empty object.
// Non-2xx statuses return *HTTPError carrying the parsed body.
func (c *Client) Request(ctx context.Context, path string, opts Options) (Payload, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.baseURL + path

	var body io.Reader
	if opts.Body != nil {
		data, err := sonic.ConfigStd.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	entry := c.log.WithFields(log.Fields{
		"method":     method,
		"path":       path,
		"request_id": reqID,
	})
	start := time.Now()

	resp, err := c.clientFor(opts.Token).Do(req)
	if err != nil {
		entry.WithError(err).Debug("request failed")
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		entry.WithError(err).Debug("read response failed")
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	entry.WithFields(log.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("request completed")

	payload := parsePayload(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: payload.Object()}
	}
	return payload, nil
}

// clientFor returns an HTTP client that adds the bearer header for token.
func (c *Client) clientFor(token string) *http.Client {
	if token == "" {
		return c.http
	}
	hc := *c.http
	hc.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   c.http.Transport,
	}
	return &hc
}

