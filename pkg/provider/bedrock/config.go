package bedrock

// Config holds configuration for the Bedrock provider adapter.
type Config struct {
	// Region is the AWS region for Bedrock calls. Defaults to "us-east-1".
	Region string

	// DefaultModel is used when a request does not name a model. Should be
	// a full Bedrock model ID or an alias from ModelAliases.
	DefaultModel string

	// ModelAliases maps short model names to full Bedrock model IDs, for
	// example {"claude-3-haiku": "anthropic.claude-3-haiku-20240307-v1:0"}.
	// Models not in the map are passed through unchanged.
	ModelAliases map[string]string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Region: "us-east-1",
	}
}
