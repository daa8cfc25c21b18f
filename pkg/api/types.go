package api

import "time"

// Message roles. A conversation turn is an ordered sequence of messages;
// at most one system message is expected, and backends that take the
// system prompt out-of-band hoist it from the list.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role/content pair in a conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProcessRequest is the payload the messenger sends to the responder.
type ProcessRequest struct {
	// Message is the user message to process. 1..10000 characters.
	Message string `json:"message"`

	// Context is an optional system prompt. Up to 5000 characters.
	Context string `json:"context,omitempty"`

	// Model optionally overrides the provider's default model.
	Model string `json:"model,omitempty"`

	// Temperature for sampling, 0.0..2.0. Nil means the default; an
	// explicit 0.0 is a valid value and is preserved.
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens bounds the completion length, 1..4000.
	MaxTokens int `json:"max_tokens"`
}

// Usage reports token consumption and estimated cost for one call.
type Usage struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	EstimatedCost    float64 `json:"estimatedCost"`
}

// ProcessResponse is the success payload returned by the responder.
type ProcessResponse struct {
	Status         string  `json:"status"`
	AIResponse     string  `json:"aiResponse"`
	Model          string  `json:"model"`
	Provider       string  `json:"provider,omitempty"`
	Usage          Usage   `json:"usage"`
	Timestamp      string  `json:"timestamp"`
	ProcessingTime float64 `json:"processingTime"`
}

// StreamFrame is a single event frame of a streaming response. Exactly one
// of Content or Error is set; the end of stream is signaled out-of-band by
// the [DONE] sentinel, not by a frame.
type StreamFrame struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StreamDone is the literal end-of-stream sentinel written after the last
// frame of an event stream.
const StreamDone = "[DONE]"

// ModelList is the provider listing payload.
type ModelList struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
	Default  string   `json:"default"`
}

// ProviderHealth is the health probe result for the active provider.
// Probes never fail: backend errors are captured in Error with
// Status "unhealthy".
type ProviderHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Provider health status values.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// HealthResponse is the responder's overall health payload. Status is
// "degraded" when the provider probe reports unhealthy; a degraded
// responder still handles requests.
type HealthResponse struct {
	Status            string   `json:"status"`
	Timestamp         string   `json:"timestamp"`
	MessagesProcessed int      `json:"messagesProcessed"`
	Provider          string   `json:"provider"`
	AI                AIHealth `json:"ai"`
}

// AIHealth describes provider configuration and connectivity within a
// HealthResponse.
type AIHealth struct {
	Configured bool   `json:"configured"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// ConfigResponse is the responder's configuration read payload.
type ConfigResponse struct {
	Provider     string  `json:"provider"`
	DefaultModel string  `json:"defaultModel"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"maxTokens"`
}

// Timestamp formats t as the ISO-8601 UTC string used in wire payloads.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
