// Command messenger runs the relay messenger: an MCP server exposing
// send_message and the responder inspection tools, backed by the
// retrying dispatcher.
//
// With -message the messenger sends a single message to the responder,
// prints the reply, and exits. This is handy for smoke-testing a
// deployment without an MCP client.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/config"
	"github.com/relaykit/relay/pkg/conversation"
	convmemory "github.com/relaykit/relay/pkg/conversation/memory"
	convpostgres "github.com/relaykit/relay/pkg/conversation/postgres"
	"github.com/relaykit/relay/pkg/dispatch"
	"github.com/relaykit/relay/pkg/toolserver"
	"github.com/relaykit/relay/pkg/usage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	message := flag.String("message", "", "send a single message and exit")
	flag.Parse()

	if err := run(*configPath, *message); err != nil {
		slog.Error("messenger failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, message string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("creating conversation store: %w", err)
	}
	defer store.Close()

	d := dispatch.New(dispatch.Config{
		ResponderURL:  cfg.Dispatch.ResponderURL,
		Timeout:       cfg.Dispatch.Timeout,
		AuxTimeout:    cfg.Dispatch.AuxTimeout,
		RetryAttempts: cfg.Dispatch.RetryAttempts,
		BackoffUnit:   cfg.Dispatch.BackoffUnit,
	}, store, usage.NewAggregator())

	if message != "" {
		return sendOnce(ctx, d, message)
	}

	slog.Info("messenger starting",
		"responder", cfg.Dispatch.ResponderURL,
		"transport", cfg.MCP.Transport,
	)
	return toolserver.Run(ctx, toolserver.NewMessengerServer(d), cfg.MCP, slog.Default())
}

// sendOnce sends a single message and prints the full response payload.
func sendOnce(ctx context.Context, d *dispatch.Dispatcher, message string) error {
	result := d.Send(ctx, &api.ProcessRequest{Message: message})
	if !result.Success {
		return fmt.Errorf("request failed after %d attempts: %s", result.Attempts, result.Err.Message)
	}

	out, err := json.MarshalIndent(result.Response, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
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

// setupLogging configures the default slog handler. RELAY_LOG_LEVEL
// accepts debug, info, warn, or error (default: info). Logs go to
// stderr so they never interleave with MCP stdio traffic.
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
