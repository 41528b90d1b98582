package api

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the server reports a missing resource.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is returned on a rejected login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthorized is returned when a request stays unauthorized after
// the single refresh-and-retry.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API returned status %d", e.Code)
	}
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Body)
}
