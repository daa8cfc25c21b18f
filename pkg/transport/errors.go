package transport

import (
	"encoding/json"
	"net/http"

	"github.com/relaykit/relay/pkg/api"
)

// HTTPStatusFromError maps an error type to the corresponding HTTP status
// code. Transport-level errors (body too large, unsupported content type)
// are handled separately by the adapter.
func HTTPStatusFromError(err *api.Error) int {
	switch err.Type {
	case api.ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case api.ErrorTypeUpstreamAuth:
		return http.StatusUnauthorized
	case api.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case api.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case api.ErrorTypeConnectivity, api.ErrorTypeUpstreamServer:
		return http.StatusBadGateway
	case api.ErrorTypeConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// wrapper format from pkg/api. It sets the Content-Type header and writes
// the HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, apiErr *api.Error, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// WriteAPIError writes an error response, deriving the HTTP status code
// from the error type.
func WriteAPIError(w http.ResponseWriter, apiErr *api.Error) {
	WriteErrorResponse(w, apiErr, HTTPStatusFromError(apiErr))
}
