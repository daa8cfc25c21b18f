package openai

import "time"

// Config holds configuration for the OpenAI provider adapter.
type Config struct {
	// BaseURL is the backend URL. Defaults to the public OpenAI endpoint;
	// set to a proxy or compatible server to route elsewhere.
	BaseURL string

	// APIKey for backend authentication. Required.
	APIKey string

	// DefaultModel is used when a request does not name a model.
	// Defaults to "gpt-4".
	DefaultModel string

	// Timeout for individual HTTP requests. Defaults to 120s.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:      "https://api.openai.com",
		APIKey:       apiKey,
		DefaultModel: "gpt-4",
		Timeout:      120 * time.Second,
	}
}
