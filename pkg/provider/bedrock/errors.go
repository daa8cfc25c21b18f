package bedrock

import (
	"context"
	"errors"

	"github.com/aws/smithy-go"

	"github.com/relaykit/relay/pkg/api"
)

// mapAWSError converts an AWS SDK error into a classified *api.Error.
// Classification follows the Bedrock service error codes; anything
// unrecognized is treated as an upstream server error.
func mapAWSError(err error) *api.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return api.NewTimeoutError("bedrock call exceeded deadline: " + err.Error())
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException":
			return api.NewRateLimitError("bedrock rate limit exceeded: " + apiErr.ErrorMessage())
		case "AccessDeniedException", "UnrecognizedClientException", "ExpiredTokenException":
			return api.NewUpstreamAuthError(403, "bedrock authentication failed: "+apiErr.ErrorMessage())
		case "ValidationException":
			return api.NewInvalidRequestError("", "bedrock rejected request: "+apiErr.ErrorMessage())
		case "ModelTimeoutException":
			return api.NewTimeoutError("bedrock model timed out: " + apiErr.ErrorMessage())
		case "ServiceUnavailableException", "InternalServerException", "ModelNotReadyException":
			return api.NewUpstreamServerError(503, "bedrock unavailable: "+apiErr.ErrorMessage())
		}
	}

	return api.NewConnectivityError("bedrock call failed: " + err.Error())
}
