package provider

import (
	"context"

	"github.com/relaykit/relay/pkg/api"
)

// Provider abstracts an LLM completion backend.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// Credential requirements are checked once, at construction: a provider
// that constructs successfully does not fail with a configuration error
// per call.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "bedrock", "mock").
	Name() string

	// Complete performs non-streaming completion.
	Complete(ctx context.Context, req *Request) (*Result, error)

	// Stream performs streaming completion. The returned channel receives
	// Event values and is closed by the provider when the stream completes
	// or errors. Any element after an error event is undefined; consumers
	// must stop at the first EventError.
	Stream(ctx context.Context, req *Request) (<-chan Event, error)

	// HealthCheck probes backend connectivity. It never returns an error:
	// failures downgrade the result to unhealthy with the error text captured.
	HealthCheck(ctx context.Context) api.ProviderHealth

	// ListModels returns the model identifiers available on the backend.
	ListModels(ctx context.Context) ([]string, error)

	// DefaultModel returns the model used when a request does not name one.
	DefaultModel() string

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}
