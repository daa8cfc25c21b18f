package engine

import "github.com/relaykit/relay/pkg/api"

// DefaultSystemPrompt is used when a request carries no context.
const DefaultSystemPrompt = "You are a helpful AI assistant."

// Config holds orchestrator defaults surfaced through the configuration
// read endpoint and applied to requests that omit them.
type Config struct {
	// DefaultModel overrides the provider's default model when set.
	DefaultModel string

	// DefaultTemperature is applied when a request omits temperature.
	// Defaults to 0.7.
	DefaultTemperature float64

	// DefaultMaxTokens is applied when a request omits maxTokens.
	// Defaults to 1000.
	DefaultMaxTokens int
}

// defaults applies default values for unset configuration fields.
func (c *Config) defaults() {
	if c.DefaultTemperature == 0 {
		c.DefaultTemperature = api.DefaultTemperature
	}
	if c.DefaultMaxTokens == 0 {
		c.DefaultMaxTokens = api.DefaultMaxTokens
	}
}
