// Command responder runs the relay responder: the HTTP/SSE server that
// processes messages through the configured AI provider.
//
// Configuration is loaded from a YAML file (discovered or passed with
// -config) with RELAY_* environment overrides. With -mcp the responder
// serves its operations as MCP tools instead of HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relaykit/relay/pkg/auth"
	"github.com/relaykit/relay/pkg/auth/apikey"
	authjwt "github.com/relaykit/relay/pkg/auth/jwt"
	"github.com/relaykit/relay/pkg/config"
	"github.com/relaykit/relay/pkg/conversation"
	convmemory "github.com/relaykit/relay/pkg/conversation/memory"
	convpostgres "github.com/relaykit/relay/pkg/conversation/postgres"
	"github.com/relaykit/relay/pkg/cost"
	"github.com/relaykit/relay/pkg/engine"
	"github.com/relaykit/relay/pkg/observability"
	"github.com/relaykit/relay/pkg/provider/bedrock"
	"github.com/relaykit/relay/pkg/provider/openai"
	"github.com/relaykit/relay/pkg/provider/registry"
	"github.com/relaykit/relay/pkg/toolserver"
	"github.com/relaykit/relay/pkg/transport"
	"github.com/relaykit/relay/pkg/usage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools instead of HTTP")
	flag.Parse()

	if err := run(*configPath, *mcpMode); err != nil {
		slog.Error("responder failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, mcpMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Conversation log.
	store, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("creating conversation store: %w", err)
	}
	defer store.Close()

	// Provider registry. Construction is lazy: a misconfigured provider
	// surfaces on the first request and in /health, not at startup.
	reg := registry.New(registry.Settings{
		Backend: cfg.AI.Provider,
		OpenAI: openai.Config{
			BaseURL:      cfg.AI.OpenAI.BaseURL,
			APIKey:       cfg.AI.OpenAI.APIKey,
			DefaultModel: cfg.AI.OpenAI.DefaultModel,
			Timeout:      cfg.AI.Timeout,
		},
		Bedrock: bedrock.Config{
			Region:       cfg.AI.Bedrock.Region,
			DefaultModel: cfg.AI.Bedrock.DefaultModel,
			ModelAliases: cfg.AI.Bedrock.ModelAliases,
		},
	})
	defer reg.Close()

	eng := engine.New(reg,
		cost.NewEstimator(cfg.AI.Bedrock.ModelAliases),
		usage.NewAggregator(),
		store,
		engine.Config{
			DefaultTemperature: cfg.AI.Temperature,
			DefaultMaxTokens:   cfg.AI.MaxTokens,
		},
	)

	if mcpMode {
		slog.Info("responder starting", "mode", "mcp", "provider", cfg.AI.Provider)
		return toolserver.Run(ctx, toolserver.NewResponderServer(eng), cfg.MCP, slog.Default())
	}

	// HTTP surface: adapter wrapped in auth and metrics middleware, with
	// the Prometheus endpoint mounted alongside.
	handler := transport.NewAdapter(eng, transport.DefaultConfig()).Handler()
	handler = auth.Middleware(buildAuthChain(cfg.Auth), auth.DefaultBypassEndpoints)(handler)
	handler = observability.MetricsMiddleware(handler)

	mux := http.NewServeMux()
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}
	mux.Handle("/", handler)

	srv := transport.NewServer(mux, transport.ServerConfig{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	slog.Info("responder starting",
		"port", cfg.Server.Port,
		"provider", cfg.AI.Provider,
		"storage", cfg.Storage.Type,
		"auth", cfg.Auth.Type,
	)
	return srv.ListenAndServe()
}

// buildStore creates the configured conversation store.
func buildStore(ctx context.Context, cfg config.StorageConfig) (conversation.Store, error) {
	switch cfg.Type {
	case "postgres":
		return convpostgres.New(ctx, convpostgres.Config{
			DSN:            cfg.Postgres.DSN,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
	default:
		return convmemory.New(), nil
	}
}

// buildAuthChain creates the authentication chain from the auth settings.
func buildAuthChain(cfg config.AuthConfig) *auth.Chain {
	chain := &auth.Chain{DefaultDecision: auth.Deny}

	switch cfg.Type {
	case "apikey":
		entries := make([]apikey.Entry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			entries = append(entries, apikey.Entry{Key: k.Key, Subject: k.Subject})
		}
		chain.Authenticators = append(chain.Authenticators, apikey.New(entries))
	case "jwt":
		chain.Authenticators = append(chain.Authenticators, authjwt.New(authjwt.Config{
			Secret: cfg.JWT.Secret,
			Issuer: cfg.JWT.Issuer,
		}))
	default:
		chain.DefaultDecision = auth.Allow
	}

	return chain
}

// setupLogging configures the default slog handler. RELAY_LOG_LEVEL
// accepts debug, info, warn, or error (default: info).
func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("RELAY_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
