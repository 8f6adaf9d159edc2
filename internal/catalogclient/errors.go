package catalogclient

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a response body that could not be decoded or
// did not match the expected schema.
var ErrMalformedResponse = errors.New("catalogclient: malformed response")

// NetworkError reports a transport failure or an unusable response body.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("catalogclient: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError reports a non-2xx response. Message holds the body's `error`
// field and is empty when the server sent none.
type HTTPError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalogclient: %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("catalogclient: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// ValidationError is the HTTPError a create or update call gets back when the
// server refuses the draft.
type ValidationError struct {
	*HTTPError
}

func (e *ValidationError) Unwrap() error { return e.HTTPError }

// UserMessage returns the server-provided message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return fallback
}
