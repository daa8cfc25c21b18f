package api

import "fmt"

// ErrorType represents the category of a relay error.
type ErrorType string

const (
	// ErrorTypeConfiguration signals a missing required credential or
	// setting detected at provider construction. Fatal, never retried.
	ErrorTypeConfiguration ErrorType = "configuration_error"

	// ErrorTypeConnectivity signals connection refused or network
	// unreachable. Retryable by the dispatcher.
	ErrorTypeConnectivity ErrorType = "connectivity_error"

	// ErrorTypeTimeout signals a call that exceeded its deadline. Retryable.
	ErrorTypeTimeout ErrorType = "timeout_error"

	// ErrorTypeUpstreamAuth signals a 401/403-equivalent from the backend.
	// Not retried; retrying cannot fix bad credentials.
	ErrorTypeUpstreamAuth ErrorType = "upstream_auth_error"

	// ErrorTypeRateLimit signals a 429-equivalent. Retried with backoff.
	ErrorTypeRateLimit ErrorType = "rate_limit_error"

	// ErrorTypeUpstreamServer signals a 5xx-equivalent or malformed
	// backend response. Retried with backoff up to the attempt budget.
	ErrorTypeUpstreamServer ErrorType = "upstream_server_error"

	// ErrorTypeInvalidRequest signals a request that failed validation
	// before reaching any backend. Not retried.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
)

// Error is a structured relay error with a classified type, an optional
// upstream HTTP status, and a human-readable message.
type Error struct {
	Type    ErrorType `json:"type"`
	Status  int       `json:"status,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Retryable reports whether the dispatcher may retry after this error.
func (e *Error) Retryable() bool {
	switch e.Type {
	case ErrorTypeConnectivity, ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeUpstreamServer:
		return true
	default:
		return false
	}
}

// ErrorResponse wraps an Error for JSON serialization as the top-level
// error response body.
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// NewConfigurationError creates an Error for missing credentials or settings.
func NewConfigurationError(message string) *Error {
	return &Error{Type: ErrorTypeConfiguration, Message: message}
}

// NewConnectivityError creates an Error for network-level failures.
func NewConnectivityError(message string) *Error {
	return &Error{Type: ErrorTypeConnectivity, Message: message}
}

// NewTimeoutError creates an Error for exceeded deadlines.
func NewTimeoutError(message string) *Error {
	return &Error{Type: ErrorTypeTimeout, Message: message}
}

// NewUpstreamAuthError creates an Error for backend authentication failures.
func NewUpstreamAuthError(status int, message string) *Error {
	return &Error{Type: ErrorTypeUpstreamAuth, Status: status, Message: message}
}

// NewRateLimitError creates an Error for backend rate limiting.
func NewRateLimitError(message string) *Error {
	return &Error{Type: ErrorTypeRateLimit, Status: 429, Message: message}
}

// NewUpstreamServerError creates an Error for backend server failures.
func NewUpstreamServerError(status int, message string) *Error {
	return &Error{Type: ErrorTypeUpstreamServer, Status: status, Message: message}
}

// NewInvalidRequestError creates an Error for request validation failures.
func NewInvalidRequestError(param, message string) *Error {
	return &Error{Type: ErrorTypeInvalidRequest, Param: param, Message: message}
}

// AsError returns err as an *Error, wrapping unclassified errors as
// upstream server errors so that no raw error crosses a network boundary.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if relayErr, ok := err.(*Error); ok {
		return relayErr
	}
	return NewUpstreamServerError(0, err.Error())
}
