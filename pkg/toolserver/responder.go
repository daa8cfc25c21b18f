package toolserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/engine"
	"github.com/relaykit/relay/pkg/provider"
)

// NewResponderServer creates an MCP server exposing the completion engine
// as tools, bypassing the HTTP transport.
func NewResponderServer(e *engine.Engine) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "relay-responder", Version: "1.0.0"},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "process_message",
		Description: "Process a message through the AI provider and return the reply",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, struct{}, error) {
		resp, err := e.Handle(ctx, input.toRequest())
		if err != nil {
			return errorResult("processing failed: " + api.AsError(err).Message), struct{}{}, nil
		}
		return textResult(resp.AIResponse), struct{}{}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "process_message_stream",
		Description: "Process a message with streaming and return the assembled reply",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, struct{}, error) {
		ch, err := e.HandleStream(ctx, input.toRequest())
		if err != nil {
			return errorResult("stream failed: " + api.AsError(err).Message), struct{}{}, nil
		}

		var content string
		for ev := range ch {
			switch ev.Type {
			case provider.EventTextDelta:
				content += ev.Delta
			case provider.EventError:
				return errorResult("stream failed: " + ev.Err.Message), struct{}{}, nil
			}
		}
		return textResult(content), struct{}{}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_provider_info",
		Description: "Return the active provider, its models, and the default model",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		models, err := e.Models(ctx)
		if err != nil {
			return errorResult("provider info failed: " + api.AsError(err).Message), struct{}{}, nil
		}
		return jsonResult(models)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "health_check",
		Description: "Return the responder's health status",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		return jsonResult(e.Health(ctx))
	})

	return server
}
