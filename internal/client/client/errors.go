package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoProductID  = errors.New("backend did not return a product id")
)

// APIError is a non-2xx response. Message holds the server-provided text when
// the body carried one.
type APIError struct {
	Status  int
	Message string
	// Fields holds per-field messages of a 422 response.
	Fields map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// HasMessage reports whether the server supplied a human-readable message.
func (e *APIError) HasMessage() bool { return e.Message != "" }
