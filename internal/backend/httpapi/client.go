// Package httpapi implements the service.Service interface over the task
// REST API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"taskflow/internal/api"
	"taskflow/internal/config"
	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

// Endpoint paths.
const (
	LoginPath    = "/api/auth/login"
	RegisterPath = "/api/auth/register"
	TasksPath    = "/api/tasks"
)

// DefaultTimeout is the timeout for API calls.
const DefaultTimeout = config.DefaultTimeout

// Client implements service.Service using the task REST API.
type Client struct {
	api     *api.Client
	timeout time.Duration
}

// New creates a client from configuration.
func New(cfg *config.Config, logger *log.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		api:     api.New(cfg.APIBase, api.WithLogger(logger)),
		timeout: timeout,
	}
}

// NewWithAPI wraps an existing api.Client (for testing).
func NewWithAPI(c *api.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{api: c, timeout: timeout}
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return NewWithAPI(api.New(baseURL, api.WithHTTPClient(hc)), DefaultTimeout)
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	return c.authenticate(ctx, LoginPath, creds)
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	return c.authenticate(ctx, RegisterPath, creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds service.Credentials) (service.AuthResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := c.api.Request(ctx, path, api.Options{Method: http.MethodPost, Body: creds})
	if err != nil {
		return service.AuthResult{}, wrapError(err)
	}
	var res service.AuthResult
	if err := payload.Decode(&res); err != nil {
		return service.AuthResult{}, fmt.Errorf("decode auth response: %w", err)
	}
	return res, nil
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, token string) ([]tasks.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := c.api.Request(ctx, TasksPath, api.Options{Token: token})
	if err != nil {
		return nil, wrapError(err)
	}
	if !payload.IsArray() {
		return []tasks.Task{}, nil
	}
	var list []tasks.Task
	if err := payload.Decode(&list); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if list == nil {
		list = []tasks.Task{}
	}
	return list, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, token string, nt tasks.NewTask) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.api.Request(ctx, TasksPath, api.Options{Method: http.MethodPost, Token: token, Body: nt})
	return wrapError(err)
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, token string, id tasks.ID, patch tasks.Patch) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.api.Request(ctx, taskPath(id), api.Options{Method: http.MethodPut, Token: token, Body: patch})
	return wrapError(err)
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, token string, id tasks.ID) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.api.Request(ctx, taskPath(id), api.Options{Method: http.MethodDelete, Token: token})
	return wrapError(err)
}

func taskPath(id tasks.ID) string {
	return TasksPath + "/" + url.PathEscape(string(id))
}

// wrapError adds a user-facing hint while keeping the typed error reachable
// through errors.As.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if !api.IsTransport(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	return fmt.Errorf("cannot reach task API: %w", err)
}
