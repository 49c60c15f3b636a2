// Package service defines the backend-agnostic interface for task operations.
package service

import "errors"

// ErrNotFound is returned when a task reference matches nothing.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when a task reference matches several tasks.
var ErrAmbiguous = errors.New("ambiguous")

// Credentials are the login/registration form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the success body of the login and register endpoints.
type AuthResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
}
