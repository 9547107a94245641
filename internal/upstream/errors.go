package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrNotAuthenticated is returned by operations requiring a session if none is active
	ErrNotAuthenticated = errors.New("not authenticated, please authenticate first")

	// ErrSessionExpired is returned if the upstream API rejected the session token (HTTP 401).
	// The session has already been cleared when this error is returned.
	ErrSessionExpired = errors.New("authentication expired, please login again")
)

const defaultAuthenticationMessage = "Authentication failed"

// AuthenticationError is returned if the upstream API rejected a credential exchange
type AuthenticationError struct {
	// StatusCode is the HTTP status code of the rejecting response
	StatusCode int
	Message    string
}

func (err *AuthenticationError) Error() string {
	return err.Message
}

// UpstreamError is returned for non-2xx responses (other than 401 on authenticated calls) and for responses whose
// envelope status is not "success"
type UpstreamError struct {
	StatusCode int
	Body       []byte

	// Message holds the envelope message if the upstream API sent one
	Message string
}

func (err *UpstreamError) Error() string {
	if err.Message != "" {
		return fmt.Sprintf("upstream error (HTTP %d): %s", err.StatusCode, err.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", err.StatusCode, string(err.Body))
}

// NetworkError is returned if the upstream API could not be reached at all (DNS, connect, timeout)
type NetworkError struct {
	Err error
}

func (err *NetworkError) Error() string {
	return fmt.Sprintf("network error: unable to connect to the upstream API: %v", err.Err)
}

func (err *NetworkError) Unwrap() error {
	return err.Err
}

// Timeout reports whether the failure was caused by the outbound timeout
func (err *NetworkError) Timeout() bool {
	if errors.Is(err.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err.Err, &netErr) && netErr.Timeout()
}
