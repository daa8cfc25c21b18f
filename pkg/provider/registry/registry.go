// Package registry selects and lazily constructs the configured provider
// backend. A Registry instance is created at startup and injected into
// the components that need a provider; construction happens on first use
// and its outcome, success or failure, is remembered.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
	"github.com/relaykit/relay/pkg/provider/bedrock"
	"github.com/relaykit/relay/pkg/provider/mock"
	"github.com/relaykit/relay/pkg/provider/openai"
)

// Backend identifiers accepted in Settings.Backend.
const (
	BackendOpenAI  = "openai"
	BackendBedrock = "bedrock"
	BackendMock    = "mock"
)

// Settings selects the provider backend and carries the per-backend
// configuration. Only the configuration of the selected backend is read.
type Settings struct {
	// Backend is one of "openai", "bedrock", or "mock". Defaults to
	// "openai".
	Backend string

	OpenAI  openai.Config
	Bedrock bedrock.Config
}

// Registry lazily constructs the configured provider exactly once. It is
// safe for concurrent use; concurrent first calls block until the single
// construction attempt completes.
type Registry struct {
	settings Settings

	once     sync.Once
	provider provider.Provider
	err      error
}

// New creates a Registry for the given settings. No provider is
// constructed until the first Get call.
func New(settings Settings) *Registry {
	if settings.Backend == "" {
		settings.Backend = BackendOpenAI
	}
	return &Registry{settings: settings}
}

// Backend returns the configured backend identifier. Available before the
// provider itself is constructed.
func (r *Registry) Backend() string {
	return r.settings.Backend
}

// Get returns the configured provider, constructing it on first call.
// Construction failures are configuration errors and are remembered:
// every subsequent call returns the same error without retrying.
func (r *Registry) Get(ctx context.Context) (provider.Provider, error) {
	r.once.Do(func() {
		r.provider, r.err = r.build(ctx)
		if r.err != nil {
			slog.Error("provider construction failed", "backend", r.settings.Backend, "error", r.err.Error())
			return
		}
		slog.Info("provider initialized", "backend", r.provider.Name(), "defaultModel", r.provider.DefaultModel())
	})
	return r.provider, r.err
}

func (r *Registry) build(ctx context.Context) (provider.Provider, error) {
	switch r.settings.Backend {
	case BackendMock:
		return mock.New(), nil
	case BackendBedrock:
		return bedrock.New(ctx, r.settings.Bedrock)
	case BackendOpenAI:
		return openai.New(r.settings.OpenAI)
	default:
		return nil, api.NewConfigurationError(fmt.Sprintf("unknown provider backend %q", r.settings.Backend))
	}
}

// Close releases the constructed provider, if any. Safe to call when Get
// was never called or failed.
func (r *Registry) Close() error {
	if r.provider != nil {
		return r.provider.Close()
	}
	return nil
}
