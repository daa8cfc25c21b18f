// Package mock implements an in-process Provider for testing the full
// request path without calling any external API. Responses echo the user
// message and carry a per-provider request counter; token counts are a
// deterministic word-count heuristic.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
)

// Delays simulating real backend latency. Tunable so tests don't pay for
// realism they don't need.
const (
	completeDelay = 100 * time.Millisecond
	wordDelay     = 50 * time.Millisecond
)

// MockProvider implements provider.Provider without external calls. A
// shared counter numbers responses across both Complete and Stream, so
// interleaved calls get distinct, ordered response numbers.
type MockProvider struct {
	requestCount atomic.Int64
}

// Ensure MockProvider implements provider.Provider at compile time.
var _ provider.Provider = (*MockProvider)(nil)

// New creates a new MockProvider.
func New() *MockProvider {
	return &MockProvider{}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string {
	return "mock"
}

// DefaultModel returns the fixed mock model name.
func (p *MockProvider) DefaultModel() string {
	return "mock-model"
}

// userMessage returns the content of the first user message, or "" if
// there is none.
func userMessage(messages []api.Message) string {
	for _, m := range messages {
		if m.Role == api.RoleUser {
			return m.Content
		}
	}
	return ""
}

// tokenCount approximates token usage as twice the word count.
func tokenCount(s string) int {
	return len(strings.Fields(s)) * 2
}

// Complete returns a canned response echoing the user message after a
// short simulated delay.
func (p *MockProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	n := p.requestCount.Add(1)

	select {
	case <-time.After(completeDelay):
	case <-ctx.Done():
		return nil, api.NewTimeoutError("mock completion cancelled: " + ctx.Err().Error())
	}

	msg := userMessage(req.Messages)
	content := fmt.Sprintf("[MOCK RESPONSE #%d] You said: '%s'. This is a test response without calling any external API.", n, msg)

	return &provider.Result{
		Content:          content,
		PromptTokens:     tokenCount(msg),
		CompletionTokens: tokenCount(content),
		Model:            "mock-model",
	}, nil
}

// Stream emits a canned response word by word, each word followed by a
// trailing space, with a short delay between words.
func (p *MockProvider) Stream(ctx context.Context, req *provider.Request) (<-chan provider.Event, error) {
	n := p.requestCount.Add(1)
	msg := userMessage(req.Messages)
	content := fmt.Sprintf("[MOCK STREAM #%d] You said: '%s'. This is a streaming test response.", n, msg)

	ch := make(chan provider.Event, 16)

	go func() {
		defer close(ch)
		for _, word := range strings.Fields(content) {
			select {
			case <-time.After(wordDelay):
			case <-ctx.Done():
				return
			}
			ch <- provider.Event{Type: provider.EventTextDelta, Delta: word + " "}
		}
		ch <- provider.Event{Type: provider.EventDone}
	}()

	return ch, nil
}

// ListModels returns the single mock model.
func (p *MockProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-model"}, nil
}

// HealthCheck always reports healthy.
func (p *MockProvider) HealthCheck(ctx context.Context) api.ProviderHealth {
	return api.ProviderHealth{Status: api.HealthStatusHealthy}
}

// Close releases provider resources.
func (p *MockProvider) Close() error {
	return nil
}
