package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/dispatch"
	"github.com/relaykit/relay/pkg/provider"
)

// SendMessageInput is the argument payload for the send_message tools.
type SendMessageInput struct {
	Message     string   `json:"message" jsonschema_description:"The message to send to the responder"`
	Context     string   `json:"context,omitempty" jsonschema_description:"Optional system prompt for the AI"`
	Model       string   `json:"model,omitempty" jsonschema_description:"Optional model override"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema_description:"Sampling temperature, 0.0 to 2.0"`
	MaxTokens   int      `json:"max_tokens,omitempty" jsonschema_description:"Maximum completion tokens"`
}

func (in *SendMessageInput) toRequest() *api.ProcessRequest {
	return &api.ProcessRequest{
		Message:     in.Message,
		Context:     in.Context,
		Model:       in.Model,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	}
}

// textResult wraps a plain string as a tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult wraps an error message as a failed tool result.
func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// jsonResult marshals v and wraps it as a tool result.
func jsonResult(v any) (*mcp.CallToolResult, struct{}, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, struct{}{}, fmt.Errorf("marshaling result: %w", err)
	}
	return textResult(string(data)), struct{}{}, nil
}

// NewMessengerServer creates an MCP server exposing the dispatcher as tools.
func NewMessengerServer(d *dispatch.Dispatcher) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "relay-messenger", Version: "1.0.0"},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_message",
		Description: "Send a message to the responder and return the AI reply",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, struct{}, error) {
		result := d.Send(ctx, input.toRequest())
		if !result.Success {
			return errorResult(fmt.Sprintf("request failed after %d attempts: %s", result.Attempts, result.Err.Message)), struct{}{}, nil
		}
		return textResult(result.Response.AIResponse), struct{}{}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_message_stream",
		Description: "Send a message with streaming and return the assembled AI reply",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, struct{}, error) {
		ch, err := d.SendStream(ctx, input.toRequest())
		if err != nil {
			return errorResult("stream request failed: " + api.AsError(err).Message), struct{}{}, nil
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
		Name:        "check_responder_health",
		Description: "Fetch the responder's health status",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		health, err := d.Health(ctx)
		if err != nil {
			return errorResult("health check failed: " + api.AsError(err).Message), struct{}{}, nil
		}
		return jsonResult(health)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_available_models",
		Description: "List the models available on the responder",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		models, err := d.Models(ctx)
		if err != nil {
			return errorResult("model listing failed: " + api.AsError(err).Message), struct{}{}, nil
		}
		return jsonResult(models)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_responder_config",
		Description: "Fetch the responder's AI configuration",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		cfg, err := d.Config(ctx)
		if err != nil {
			return errorResult("config read failed: " + api.AsError(err).Message), struct{}{}, nil
		}
		return jsonResult(cfg)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_usage_stats",
		Description: "Return accumulated token usage and cost totals for this messenger",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		return jsonResult(d.Usage())
	})

	type historyInput struct {
		Limit int `json:"limit,omitempty" jsonschema_description:"Maximum number of entries, newest first. 0 returns all."`
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_conversation_history",
		Description: "Return recent conversation entries, newest first",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input historyInput) (*mcp.CallToolResult, struct{}, error) {
		entries, err := d.History(ctx, input.Limit)
		if err != nil {
			return errorResult("history read failed: " + err.Error()), struct{}{}, nil
		}
		return jsonResult(entries)
	})

	return server
}
