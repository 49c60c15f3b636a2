package api

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned for any response outside the 2xx range.
type HTTPError struct {
	Status int
	Body   map[string]any
}

func (e *HTTPError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Message returns body.message when the server sent a string there.
func (e *HTTPError) Message() string {
	if e.Body == nil {
		return ""
	}
	msg, _ := e.Body["message"].(string)
	return msg
}

// TransportError is returned when no HTTP response was received.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

// IsUnauthorized reports whether err is an HTTP 401.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// MessageOf returns the server-supplied message carried by err, or "".
func MessageOf(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message()
	}
	return ""
}
