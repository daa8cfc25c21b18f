package bedrock

import (
	"encoding/json"
	"log/slog"
)

// decodeChunk parses one raw stream event payload and extracts its text
// delta. The second return value reports whether the chunk carries text:
// lifecycle events (message_start, content_block_start, message_delta,
// message_stop, ping) and malformed payloads yield false.
func decodeChunk(raw []byte) (string, bool) {
	var chunk anthropicStreamChunk
	if err := json.Unmarshal(raw, &chunk); err != nil {
		slog.Warn("skipping malformed bedrock stream chunk", "error", err.Error())
		return "", false
	}
	if chunk.Type != "content_block_delta" || chunk.Delta.Type != "text_delta" {
		return "", false
	}
	if chunk.Delta.Text == "" {
		return "", false
	}
	return chunk.Delta.Text, true
}
