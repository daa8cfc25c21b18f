package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/relaykit/relay/pkg/api"
)

// sseWriter emits stream frames in SSE format. Each frame is written as
//
//	data: {json}\n
//	\n
//
// and the stream ends with the [DONE] sentinel. Every write is flushed
// immediately so deltas reach the client as they arrive.
type sseWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// newSSEWriter sets the SSE response headers and returns a writer.
func newSSEWriter(w http.ResponseWriter) *sseWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &sseWriter{w: w, rc: http.NewResponseController(w)}
}

// writeFrame sends a single frame and flushes.
func (s *sseWriter) writeFrame(frame api.StreamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

// writeDone sends the end-of-stream sentinel and flushes.
func (s *sseWriter) writeDone() error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", api.StreamDone); err != nil {
		return fmt.Errorf("failed to write sentinel: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush sentinel: %w", err)
	}
	return nil
}
