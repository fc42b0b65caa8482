package client

import (
	"errors"
	"fmt"
)

// Client errors.
var (
	ErrNoEndpoint  = errors.New("client: no endpoint configured")
	ErrInvalidPage = errors.New("client: page must be at least 1")
	ErrEmptyQuery  = errors.New("client: empty query")
)

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	// Message summarizes the failure, e.g. "search request failed (500 Internal Server Error)".
	Message string
	// Details is the backend's error message, or the raw body when it has none.
	Details string
}

func (e *APIError) Error() string {
	if e.Details == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}
