package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/relaykit/relay/pkg/api"
)

// MapHTTPError converts an HTTP response with a non-2xx status code into a
// classified *api.Error. It attempts to parse the response body as a
// ChatErrorResponse to extract a descriptive message.
func MapHTTPError(resp *http.Response) *api.Error {
	message := ExtractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "backend authentication failed"
		}
		return api.NewUpstreamAuthError(resp.StatusCode, message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "backend rate limit exceeded"
		}
		return api.NewRateLimitError(message)

	case resp.StatusCode == http.StatusBadRequest:
		if message == "" {
			message = "invalid request to backend"
		}
		return api.NewInvalidRequestError("", message)

	default:
		if message == "" {
			message = fmt.Sprintf("backend error (HTTP %d)", resp.StatusCode)
		}
		return api.NewUpstreamServerError(resp.StatusCode, message)
	}
}

// MapNetworkError converts a network-level error into a classified
// *api.Error: deadline and timeout failures become timeout errors, the
// rest (connection refused, DNS failure, unreachable network) become
// connectivity errors.
func MapNetworkError(err error) *api.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return api.NewTimeoutError("backend call exceeded deadline: " + err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return api.NewTimeoutError("backend call timed out: " + err.Error())
	}
	return api.NewConnectivityError("backend connection error: " + err.Error())
}

// ExtractErrorMessage tries to parse the response body as a
// ChatErrorResponse and returns the error message if found.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ChatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}
