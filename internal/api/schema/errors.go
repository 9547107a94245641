package schema

import "fmt"

var emptyMap = map[string]any{}

var (
	ErrInternal = &Error{
		Type:    "generic.internal",
		Message: "An internal error occurred.",
		Details: emptyMap,
	}
	ErrNotFound = &Error{
		Type:    "generic.notFound",
		Message: "Resource not found.",
		Details: emptyMap,
	}
	ErrMethodNotAllowed = &Error{
		Type:    "generic.methodNotAllowed",
		Message: "Method not allowed.",
		Details: emptyMap,
	}
	ErrNotAuthenticated = &Error{
		Type:    "session.notAuthenticated",
		Message: "Not authenticated. Please authenticate first.",
		Details: emptyMap,
	}
	ErrSessionExpired = &Error{
		Type:    "session.expired",
		Message: "Authentication expired. Please login again.",
		Details: emptyMap,
	}
	ErrAuthenticationFailed = func(message string, upstreamStatus int) *Error {
		return &Error{
			Type:    "session.authenticationFailed",
			Message: message,
			Details: map[string]any{
				"upstream_status": upstreamStatus,
			},
		}
	}
	ErrUpstream = func(status int, message string, body string) *Error {
		if message == "" {
			message = fmt.Sprintf("The upstream API responded with HTTP %d.", status)
		}
		return &Error{
			Type:    "upstream.error",
			Message: message,
			Details: map[string]any{
				"upstream_status": status,
				"upstream_body":   body,
			},
		}
	}
	ErrUpstreamUnreachable = func(timeout bool) *Error {
		return &Error{
			Type:    "upstream.unreachable",
			Message: "Network error: Unable to connect to the upstream API. Please check your internet connection.",
			Details: map[string]any{
				"timeout": timeout,
			},
		}
	}
)

// ErrorResponse represents the response structure sent by the portal API whenever errors occurred
type ErrorResponse struct {
	Status int      `json:"status"`
	Errors []*Error `json:"errors"`
}

// Error represents a single error present in the ErrorResponse
type Error struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func (err *Error) Error() string {
	return err.Type + ": " + err.Message
}
