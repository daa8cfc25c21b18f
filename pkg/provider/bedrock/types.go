package bedrock

// anthropicVersion is the version tag Bedrock requires in the Anthropic
// messages envelope.
const anthropicVersion = "bedrock-2023-05-31"

// anthropicRequest is the Anthropic messages envelope sent as the
// invoke-model body.
type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	Messages         []anthropicMessage `json:"messages"`
	System           string             `json:"system,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the invoke-model response body.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Usage   anthropicUsage     `json:"usage"`
	Model   string             `json:"model"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// anthropicStreamChunk is one decoded event from the response stream. Only
// content_block_delta events with text_delta payloads carry text; all
// other event types (message_start, content_block_start, message_delta,
// message_stop, ping) are skipped.
type anthropicStreamChunk struct {
	Type  string               `json:"type"`
	Delta anthropicStreamDelta `json:"delta"`
}

type anthropicStreamDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
