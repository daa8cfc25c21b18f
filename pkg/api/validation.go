package api

import "fmt"

// Request bounds enforced before any backend call.
const (
	MaxMessageChars = 10000
	MaxContextChars = 5000
	MaxTemperature  = 2.0
	MaxTokensLimit  = 4000
)

// Request defaults applied when the caller omits a field.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// ValidateRequest checks a ProcessRequest against the wire contract bounds.
// It returns an *Error describing the first validation failure, or nil if
// the request is valid.
func ValidateRequest(req *ProcessRequest) *Error {
	if req.Message == "" {
		return NewInvalidRequestError("message", "message is required")
	}
	if len(req.Message) > MaxMessageChars {
		return NewInvalidRequestError("message",
			fmt.Sprintf("message exceeds maximum of %d characters", MaxMessageChars))
	}
	if len(req.Context) > MaxContextChars {
		return NewInvalidRequestError("context",
			fmt.Sprintf("context exceeds maximum of %d characters", MaxContextChars))
	}
	if req.Temperature != nil && (*req.Temperature < 0.0 || *req.Temperature > MaxTemperature) {
		return NewInvalidRequestError("temperature", "temperature must be between 0.0 and 2.0")
	}
	if req.MaxTokens < 1 || req.MaxTokens > MaxTokensLimit {
		return NewInvalidRequestError("max_tokens",
			fmt.Sprintf("max_tokens must be between 1 and %d", MaxTokensLimit))
	}
	return nil
}

// ApplyDefaults fills zero-valued optional fields with the wire contract
// defaults. It does not touch Model; the orchestrator resolves the model
// against the provider default.
func (req *ProcessRequest) ApplyDefaults() {
	if req.Temperature == nil {
		temp := DefaultTemperature
		req.Temperature = &temp
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = DefaultMaxTokens
	}
}
