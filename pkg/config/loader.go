package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, RELAY_CONFIG env, ./config.yaml, /etc/relay/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. RELAY_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/relay/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("RELAY_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/relay/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. RELAY_*
// variables take priority; a handful of legacy unprefixed names
// (AI_PROVIDER, OPENAI_API_KEY, AWS_REGION, ...) are still honored so
// existing deployments keep working.
func applyEnvOverrides(cfg *Config) {
	if v := firstEnv("RELAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := firstEnv("RELAY_PROVIDER", "AI_PROVIDER"); v != "" {
		cfg.AI.Provider = v
	}
	if v := firstEnv("RELAY_OPENAI_API_KEY", "OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAI.APIKey = v
	}
	if v := firstEnv("RELAY_OPENAI_BASE_URL", "OPENAI_BASE_URL"); v != "" {
		cfg.AI.OpenAI.BaseURL = v
	}
	if v := firstEnv("RELAY_OPENAI_MODEL", "OPENAI_DEFAULT_MODEL"); v != "" {
		cfg.AI.OpenAI.DefaultModel = v
	}
	if v := firstEnv("RELAY_BEDROCK_REGION", "AWS_REGION"); v != "" {
		cfg.AI.Bedrock.Region = v
	}
	if v := firstEnv("RELAY_BEDROCK_MODEL", "BEDROCK_DEFAULT_MODEL"); v != "" {
		cfg.AI.Bedrock.DefaultModel = v
	}
	if v := firstEnv("RELAY_TEMPERATURE", "AI_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.AI.Temperature = t
		}
	}
	if v := firstEnv("RELAY_MAX_TOKENS", "AI_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AI.MaxTokens = n
		}
	}

	if v := firstEnv("RELAY_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := firstEnv("RELAY_STORAGE_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}

	if v := firstEnv("RELAY_RESPONDER_URL", "RESPONDER_URL"); v != "" {
		cfg.Dispatch.ResponderURL = v
	}
	if v := firstEnv("RELAY_TIMEOUT_SECONDS", "TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Dispatch.Timeout = time.Duration(secs) * time.Second
			cfg.AI.Timeout = time.Duration(secs) * time.Second
		}
	}
	if v := firstEnv("RELAY_RETRY_ATTEMPTS", "RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Dispatch.RetryAttempts = n
		}
	}

	if v := firstEnv("RELAY_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}

	// RELAY_API_KEYS: JSON array of API key configs.
	if v := firstEnv("RELAY_API_KEYS"); v != "" {
		keys, err := parseAPIKeysJSON(v)
		if err == nil && len(keys) > 0 {
			cfg.Auth.APIKeys = keys
		}
	}
	if v := firstEnv("RELAY_JWT_SECRET"); v != "" {
		cfg.Auth.JWT.Secret = v
	}

	if v := firstEnv("RELAY_MCP_TRANSPORT", "MCP_TRANSPORT"); v != "" {
		cfg.MCP.Transport = v
	}
	if v := firstEnv("RELAY_MCP_HOST", "MCP_HOST"); v != "" {
		cfg.MCP.Host = v
	}
	if v := firstEnv("RELAY_MCP_PORT", "MCP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MCP.Port = port
		}
	}
}

// firstEnv returns the first non-empty value among the named variables.
func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// parseAPIKeysJSON parses a JSON array of API key configurations.
func parseAPIKeysJSON(jsonStr string) ([]APIKeyConfig, error) {
	var keys []APIKeyConfig
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("parsing API keys JSON: %w", err)
	}
	return keys, nil
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. For each field ending in _file, if the value field is empty
// and the file field is set, the file is read, whitespace is trimmed, and
// the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// ai.openai.api_key_file -> ai.openai.api_key
	if cfg.AI.OpenAI.APIKeyFile != "" && cfg.AI.OpenAI.APIKey == "" {
		val, err := readSecretFile(cfg.AI.OpenAI.APIKeyFile)
		if err != nil {
			return fmt.Errorf("ai.openai.api_key_file: %w", err)
		}
		cfg.AI.OpenAI.APIKey = val
	}

	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	// auth.api_keys[*].key_file -> auth.api_keys[*].key
	for i := range cfg.Auth.APIKeys {
		if cfg.Auth.APIKeys[i].KeyFile != "" && cfg.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.APIKeys[i].Key = val
		}
	}

	// auth.jwt.secret_file -> auth.jwt.secret
	if cfg.Auth.JWT.SecretFile != "" && cfg.Auth.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Auth.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt.secret_file: %w", err)
		}
		cfg.Auth.JWT.Secret = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
