// Package remote holds the error taxonomy and HTTP plumbing shared by the API clients.
package remote

import (
	"errors"
	"fmt"
	"strings"
)

const maxBodyInError = 200

// NetworkError reports a transport failure: refused connection, DNS, timeout.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPStatusError reports a non-2xx response.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %s", e.URL, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %s (%s)", e.URL, e.Status, e.Body)
}

// DecodeError reports a response body that does not match the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Kind names the taxonomy bucket of err, for notices and logs.
func Kind(err error) string {
	var netErr *NetworkError
	var statusErr *HTTPStatusError
	var decodeErr *DecodeError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "other"
	}
}

func clipBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	runes := []rune(text)
	if len(runes) <= maxBodyInError {
		return text
	}
	return string(runes[:maxBodyInError]) + "..."
}
