package openaicompat

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
)

// ParseSSEStream reads Chat Completions SSE chunks from the given reader,
// translates them to Events, and sends them on ch. The channel is NOT
// closed by this function; the caller is responsible for closing it.
//
// SSE format expected:
//
//	data: {"id":"...","choices":[...]}\n
//	\n
//	data: [DONE]\n
//	\n
//
// Empty content deltas are skipped, not emitted as empty chunks. Malformed
// chunks are logged and skipped. Context cancellation stops reading
// immediately.
func ParseSSEStream(ctx context.Context, body io.Reader, ch chan<- provider.Event) {
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()

		// SSE lines that don't start with "data: " are ignored
		// (empty lines, comments starting with ":").
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		payload := strings.TrimPrefix(line, "data: ")

		if payload == api.StreamDone {
			ch <- provider.Event{Type: provider.EventDone}
			return
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			slog.Warn("skipping malformed SSE chunk",
				"error", err.Error(),
				"data", truncate(payload, 200),
			)
			continue
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		// Only non-empty content deltas produce chunks. Role-only first
		// chunks and finish_reason chunks carry no content.
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			ch <- provider.Event{Type: provider.EventTextDelta, Delta: delta}
		}
	}

	// Scanner error (e.g., connection dropped). Context cancellation is
	// not an error from our perspective.
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		ch <- provider.Event{
			Type: provider.EventError,
			Err:  api.NewUpstreamServerError(0, "SSE stream read error: "+err.Error()),
		}
		return
	}

	// Stream ended without a [DONE] sentinel: treat as done. Some
	// backends close the connection instead of sending the sentinel.
	ch <- provider.Event{Type: provider.EventDone}
}

// truncate limits a string to maxLen characters for log output.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
