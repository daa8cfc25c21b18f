package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/relaykit/relay/pkg/api"
)

// mapHTTPError converts a non-2xx responder reply into a classified
// *api.Error. The responder's own error envelope is preferred; when the
// body carries no envelope, classification falls back to the status code.
func mapHTTPError(resp *http.Response) *api.Error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope api.ErrorResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		e := *envelope.Error
		if e.Status == 0 {
			e.Status = resp.StatusCode
		}
		return &e
	}

	message := string(data)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return api.NewUpstreamAuthError(resp.StatusCode, "responder rejected credentials")
	case resp.StatusCode == http.StatusTooManyRequests:
		return api.NewRateLimitError("responder rate limit exceeded")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return api.NewInvalidRequestError("", "responder rejected request: "+message)
	default:
		return api.NewUpstreamServerError(resp.StatusCode, "responder error: "+message)
	}
}

// mapNetworkError converts a network-level failure into a classified
// *api.Error: deadline and timeout failures become timeout errors, the
// rest become connectivity errors.
func mapNetworkError(err error) *api.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return api.NewTimeoutError("responder call exceeded deadline: " + err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return api.NewTimeoutError("responder call timed out: " + err.Error())
	}
	return api.NewConnectivityError("responder connection error: " + err.Error())
}
