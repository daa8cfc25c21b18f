// Package config provides unified configuration for the relay servers.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (RELAY_ prefix)
//  4. Backward-compatible env var mapping for legacy variable names
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Config holds all configuration for the relay servers.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	AI            AIConfig            `yaml:"ai"`
	Storage       StorageConfig       `yaml:"storage"`
	Dispatch      DispatchConfig      `yaml:"dispatch"`
	Auth          AuthConfig          `yaml:"auth"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings for the responder.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8000
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 150s
}

// AIConfig holds provider selection and completion defaults.
type AIConfig struct {
	// Provider is "openai", "bedrock", or "mock". Default: "openai".
	Provider string `yaml:"provider"`

	OpenAI  OpenAIConfig  `yaml:"openai"`
	Bedrock BedrockConfig `yaml:"bedrock"`

	// Temperature is the default sampling temperature. Default: 0.7.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens is the default completion bound. Default: 1000.
	MaxTokens int `yaml:"max_tokens"`

	// Timeout bounds each provider call. Default: 120s.
	Timeout time.Duration `yaml:"timeout"`
}

// OpenAIConfig holds OpenAI backend settings.
type OpenAIConfig struct {
	BaseURL      string `yaml:"base_url"`     // default: https://api.openai.com
	APIKey       string `yaml:"api_key"`      // required for provider=openai
	APIKeyFile   string `yaml:"api_key_file"` // _file variant for api_key
	DefaultModel string `yaml:"default_model"` // default: "gpt-4"
}

// BedrockConfig holds AWS Bedrock backend settings.
type BedrockConfig struct {
	Region       string            `yaml:"region"`        // default: "us-east-1"
	DefaultModel string            `yaml:"default_model"` // optional
	ModelAliases map[string]string `yaml:"model_aliases"` // short name -> model ID
}

// StorageConfig holds conversation log settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// DispatchConfig holds messenger-side dispatcher settings.
type DispatchConfig struct {
	ResponderURL  string        `yaml:"responder_url"`  // default: http://localhost:8000
	Timeout       time.Duration `yaml:"timeout"`        // default: 120s
	AuxTimeout    time.Duration `yaml:"aux_timeout"`    // default: 10s
	RetryAttempts int           `yaml:"retry_attempts"` // default: 3
	BackoffUnit   time.Duration `yaml:"backoff_unit"`   // default: 1s
}

// AuthConfig holds authentication settings for the responder HTTP API.
type AuthConfig struct {
	Type    string         `yaml:"type"`     // "none", "apikey", or "jwt", default: "none"
	APIKeys []APIKeyConfig `yaml:"api_keys"` // API key entries for type=apikey
	JWT     JWTConfig      `yaml:"jwt"`      // settings for type=jwt
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
	Subject string `yaml:"subject"`
}

// JWTConfig holds HMAC JWT validation settings.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`      // optional expected issuer
}

// MCPConfig holds MCP server transport settings.
type MCPConfig struct {
	Transport string `yaml:"transport"` // "stdio" or "http", default: "stdio"
	Host      string `yaml:"host"`      // default: "0.0.0.0"
	Port      int    `yaml:"port"`      // default: 8001
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 150 * time.Second,
		},
		AI: AIConfig{
			Provider: "openai",
			OpenAI: OpenAIConfig{
				BaseURL:      "https://api.openai.com",
				DefaultModel: "gpt-4",
			},
			Bedrock: BedrockConfig{
				Region: "us-east-1",
			},
			Temperature: 0.7,
			MaxTokens:   1000,
			Timeout:     120 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Dispatch: DispatchConfig{
			ResponderURL:  "http://localhost:8000",
			Timeout:       120 * time.Second,
			AuxTimeout:    10 * time.Second,
			RetryAttempts: 3,
			BackoffUnit:   time.Second,
		},
		Auth: AuthConfig{
			Type: "none",
		},
		MCP: MCPConfig{
			Transport: "stdio",
			Host:      "0.0.0.0",
			Port:      8001,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
