package bedrock

import (
	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
)

// translateRequest converts a provider.Request into the Anthropic messages
// envelope. System messages are hoisted into the top-level system field
// because the messages array accepts only user and assistant roles; when
// several system messages are present the last one wins.
func translateRequest(req *provider.Request) anthropicRequest {
	ar := anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        req.MaxTokens,
		Temperature:      req.Temperature,
	}

	for _, m := range req.Messages {
		if m.Role == api.RoleSystem {
			ar.System = m.Content
			continue
		}
		ar.Messages = append(ar.Messages, anthropicMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	return ar
}

// resolveModel maps a short model name to its full Bedrock model ID.
// Unmapped names pass through unchanged.
func resolveModel(aliases map[string]string, model string) string {
	if full, ok := aliases[model]; ok {
		return full
	}
	return model
}
