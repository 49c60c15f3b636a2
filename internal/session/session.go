// Package session persists the signed-in user's bearer token and email.
//
// A session is either empty or carries both values. Stores never track
// expiry: the token is used until the API rejects it.
package session

import (
	"context"
	"errors"
)

// Key names. They are prefixed with "tf_" so they cannot collide with
// another application's keys in a shared store.
const (
	TokenKey = "tf_token"
	EmailKey = "tf_email"
)

// ErrIncomplete is returned by Set when token or email is empty.
var ErrIncomplete = errors.New("session requires both token and email")

// Session is the pairing of bearer token and user email.
type Session struct {
	Token string `json:"tf_token"`
	Email string `json:"tf_email"`
}

// Active reports whether the session carries a token.
func (s Session) Active() bool {
	return s.Token != ""
}

// Store is the durable session persistence used by the auth flow and the
// dashboard.
type Store interface {
	// Get returns the current session. A store with nothing saved returns
	// the zero Session and no error.
	Get(ctx context.Context) (Session, error)

	// Set saves token and email together.
	Set(ctx context.Context, token, email string) error

	// Clear removes both values. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

func validate(token, email string) error {
	if token == "" || email == "" {
		return ErrIncomplete
	}
	return nil
}
