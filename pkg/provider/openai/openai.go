package openai

import (
	"context"
	"time"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
	"github.com/relaykit/relay/pkg/provider/openaicompat"
)

// OpenAIProvider implements provider.Provider for OpenAI and compatible
// Chat Completions backends. It delegates HTTP communication to the shared
// openaicompat.Client.
type OpenAIProvider struct {
	cfg    Config
	client *openaicompat.Client
}

// Ensure OpenAIProvider implements provider.Provider at compile time.
var _ provider.Provider = (*OpenAIProvider)(nil)

// New creates a new OpenAIProvider with the given configuration.
// A missing API key is a configuration error: the provider refuses to
// start rather than failing on the first request.
func New(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, api.NewConfigurationError("OpenAI API key not configured")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &OpenAIProvider{
		cfg:    cfg,
		client: openaicompat.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
	}, nil
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// DefaultModel returns the model used when a request does not name one.
func (p *OpenAIProvider) DefaultModel() string {
	return p.cfg.DefaultModel
}

// Complete performs non-streaming completion against the backend.
func (p *OpenAIProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	return p.client.Complete(ctx, req)
}

// Stream performs streaming completion against the backend. The returned
// channel is closed when the stream completes, errors, or the context is
// cancelled.
func (p *OpenAIProvider) Stream(ctx context.Context, req *provider.Request) (<-chan provider.Event, error) {
	return p.client.Stream(ctx, req)
}

// ListModels returns available chat models from the backend.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	return p.client.ListModels(ctx)
}

// HealthCheck probes the backend. Failures are captured in the result,
// never returned as errors.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) api.ProviderHealth {
	return p.client.HealthCheck(ctx)
}

// Close releases provider resources.
func (p *OpenAIProvider) Close() error {
	return p.client.Close()
}
