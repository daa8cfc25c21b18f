package toolserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/relaykit/relay/pkg/config"
)

// Run serves the MCP server over the configured transport and blocks until
// the context is cancelled or the transport fails.
//
// For "stdio" the server speaks MCP over stdin/stdout. For "http" the
// server is exposed as a streamable HTTP endpoint at /mcp, with a bare
// liveness probe at /healthz.
func Run(ctx context.Context, server *mcp.Server, cfg config.MCPConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Transport {
	case "stdio", "":
		logger.Info("MCP server starting", "transport", "stdio")
		return server.Run(ctx, &mcp.StdioTransport{})

	case "http":
		handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return server
		}, nil)

		mux := http.NewServeMux()
		mux.Handle("/mcp", handler)
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("ok\n"))
		})

		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		httpServer := &http.Server{Addr: addr, Handler: mux}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("MCP server starting", "transport", "http", "addr", addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)

	default:
		return fmt.Errorf("unsupported MCP transport %q", cfg.Transport)
	}
}
