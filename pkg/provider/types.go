package provider

import "github.com/relaykit/relay/pkg/api"

// Request is the backend-facing completion request, stripped of transport
// concerns. Messages are ordered; a system message, when present, is the
// first element, and adapters whose backend takes the system prompt
// out-of-band hoist it from the list.
type Request struct {
	Model       string
	Messages    []api.Message
	Temperature float64
	MaxTokens   int
}

// Result is the backend's complete non-streaming response. Token counts
// are backend-reported. The total is always derived, never stored, so it
// cannot drift from the sum.
type Result struct {
	// Content is the generated completion text.
	Content string

	// PromptTokens and CompletionTokens as reported by the backend.
	PromptTokens     int
	CompletionTokens int

	// Model is the resolved backend model identifier, which may differ
	// from the requested short name after alias resolution.
	Model string
}

// TotalTokens returns the exact sum of prompt and completion tokens.
func (r *Result) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

// EventType classifies a streaming event from the backend.
type EventType int

const (
	EventTextDelta EventType = iota // Incremental content chunk
	EventDone                       // Stream finished normally
	EventError                      // Stream failed; Err is populated
)

// Event is a single streaming event. The stream is finite and not
// restartable: it ends with exactly one EventDone or EventError.
type Event struct {
	Type  EventType
	Delta string
	Err   *api.Error
}
