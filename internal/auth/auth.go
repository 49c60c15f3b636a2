// Package auth implements the login and registration flow: call the API,
// persist the returned session, and navigate to the dashboard.
package auth

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskflow/internal/api"
	"taskflow/internal/nav"
	"taskflow/internal/service"
	"taskflow/internal/session"
)

// Generic failure messages, used when the server sends no message.
const (
	LoginFailed    = "Login failed"
	RegisterFailed = "Register failed"
)

// Error is a failed login or registration. Message is the single line shown
// to the user.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// Flow runs login and registration attempts. It remembers the message of
// the most recent attempt; each attempt overwrites the previous one.
type Flow struct {
	svc   service.Service
	store session.Store
	nav   nav.Navigator
	log   *log.Logger

	mu      sync.Mutex
	message string
}

// New creates a Flow.
func New(svc service.Service, store session.Store, navigator nav.Navigator, logger *log.Logger) *Flow {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Flow{svc: svc, store: store, nav: navigator, log: logger}
}

// Message returns the error message of the last attempt, or "" when it
// succeeded.
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Login signs in with creds.
func (f *Flow) Login(ctx context.Context, creds service.Credentials) (session.Session, error) {
	return f.run(ctx, creds, f.svc.Login, LoginFailed)
}

// Register creates an account with creds and signs in.
func (f *Flow) Register(ctx context.Context, creds service.Credentials) (session.Session, error) {
	return f.run(ctx, creds, f.svc.Register, RegisterFailed)
}

// Logout clears the session and returns to the login screen.
func (f *Flow) Logout(ctx context.Context) error {
	if err := f.store.Clear(ctx); err != nil {
		return err
	}
	f.nav.Navigate(nav.Login)
	return nil
}

type authCall func(context.Context, service.Credentials) (service.AuthResult, error)

func (f *Flow) run(ctx context.Context, creds service.Credentials, call authCall, generic string) (session.Session, error) {
	res, err := call(ctx, creds)
	if err == nil {
		err = f.store.Set(ctx, res.Token, res.Email)
	}
	if err != nil {
		msg := api.MessageOf(err)
		if msg == "" {
			msg = generic
		}
		f.log.WithError(err).WithField("email", creds.Email).Debug("authentication failed")
		f.setMessage(msg)
		return session.Session{}, &Error{Message: msg, Err: err}
	}

	f.setMessage("")
	f.nav.Navigate(nav.Dashboard)
	return session.Session{Token: res.Token, Email: res.Email}, nil
}

func (f *Flow) setMessage(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
}
