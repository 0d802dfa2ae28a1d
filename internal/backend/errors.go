package backend

import (
	"errors"
	"fmt"
)

// ErrAuthExpired signals the bearer token was rejected. By the time a caller
// sees this error the session has already been invalidated via the client's
// expiry hook, so feature code only has to surface the redirect.
var ErrAuthExpired = errors.New("authentication expired")

// ServerError is a non-2xx response that carried a body. Reason is suitable
// for direct display when the backend supplied one.
type ServerError struct {
	Status int
	Reason string
}

func (e *ServerError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// TransportError covers network-level failures and undecodable responses.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Reason extracts a human-displayable description from any adapter error.
func Reason(err error) string {
	var srvErr *ServerError
	if errors.As(err, &srvErr) && srvErr.Reason != "" {
		return srvErr.Reason
	}
	var netErr *TransportError
	if errors.As(err, &netErr) {
		return "network error, please check your connection"
	}
	if errors.Is(err, ErrAuthExpired) {
		return "please log in first"
	}
	return "request failed"
}
