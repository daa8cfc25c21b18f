package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
)

// SendStream posts a streaming completion request and returns a channel of
// events translated from the responder's SSE frames. Streaming requests
// are not retried; a mid-stream failure surfaces as an error event. The
// channel is closed when the stream completes, errors, or the context is
// cancelled.
func (d *Dispatcher) SendStream(ctx context.Context, req *api.ProcessRequest) (<-chan provider.Event, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, api.NewInvalidRequestError("", fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.ResponderURL+"/stream", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewConnectivityError("failed to create HTTP request: " + err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	// The stream can outlive any fixed timeout; the context controls the
	// request lifetime instead.
	streamClient := &http.Client{Transport: d.httpClient.Transport}

	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		defer httpResp.Body.Close()
		return nil, mapHTTPError(httpResp)
	}

	ch := make(chan provider.Event, 16)

	go func() {
		defer close(ch)
		defer httpResp.Body.Close()
		d.parseFrames(ctx, httpResp.Body, ch)
	}()

	return ch, nil
}

// parseFrames reads responder SSE frames and translates them to events.
// Each frame carries either {content} or {error}; the stream ends with the
// [DONE] sentinel.
func (d *Dispatcher) parseFrames(ctx context.Context, body io.Reader, ch chan<- provider.Event) {
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		if payload == api.StreamDone {
			ch <- provider.Event{Type: provider.EventDone}
			return
		}

		var frame api.StreamFrame
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			slog.Warn("skipping malformed stream frame", "error", err.Error())
			continue
		}

		if frame.Error != "" {
			ch <- provider.Event{
				Type: provider.EventError,
				Err:  api.NewUpstreamServerError(0, frame.Error),
			}
			return
		}
		if frame.Content != "" {
			ch <- provider.Event{Type: provider.EventTextDelta, Delta: frame.Content}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		ch <- provider.Event{
			Type: provider.EventError,
			Err:  api.NewConnectivityError("stream read error: " + err.Error()),
		}
		return
	}

	// Connection closed without a sentinel.
	ch <- provider.Event{Type: provider.EventDone}
}
