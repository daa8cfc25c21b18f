package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	switch c.AI.Provider {
	case "openai", "bedrock", "mock":
		// valid
	default:
		errs = append(errs, fmt.Errorf("ai.provider must be \"openai\", \"bedrock\", or \"mock\", got %q", c.AI.Provider))
	}

	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("ai.temperature must be in [0, 2], got %g", c.AI.Temperature))
	}
	if c.AI.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("ai.max_tokens must be > 0, got %d", c.AI.MaxTokens))
	}

	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	if c.Dispatch.ResponderURL == "" {
		errs = append(errs, fmt.Errorf("dispatch.responder_url is required"))
	}
	if c.Dispatch.RetryAttempts <= 0 {
		errs = append(errs, fmt.Errorf("dispatch.retry_attempts must be > 0, got %d", c.Dispatch.RetryAttempts))
	}

	switch c.Auth.Type {
	case "none", "apikey", "jwt":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"apikey\", or \"jwt\", got %q", c.Auth.Type))
	}

	if c.Auth.Type == "apikey" && len(c.Auth.APIKeys) == 0 {
		errs = append(errs, fmt.Errorf("auth.api_keys must not be empty when auth.type is \"apikey\""))
	}
	if c.Auth.Type == "jwt" && c.Auth.JWT.Secret == "" && c.Auth.JWT.SecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required when auth.type is \"jwt\""))
	}

	switch c.MCP.Transport {
	case "stdio", "http":
		// valid
	default:
		errs = append(errs, fmt.Errorf("mcp.transport must be \"stdio\" or \"http\", got %q", c.MCP.Transport))
	}

	return errors.Join(errs...)
}
