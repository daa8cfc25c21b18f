// Package dispatch is the messenger-side client of the responder. It sends
// completion requests over HTTP with bounded exponential-backoff retry,
// keeps its own conversation log and usage aggregator, and exposes the
// responder's auxiliary endpoints (health, models, config).
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/conversation"
	"github.com/relaykit/relay/pkg/observability"
	"github.com/relaykit/relay/pkg/usage"
)

// Result is the tagged outcome of a Send call. Exactly one of Response or
// Err is set; Attempts counts every attempt made, including the first.
type Result struct {
	Success  bool                 `json:"success"`
	Attempts int                  `json:"attempts"`
	Response *api.ProcessResponse `json:"response,omitempty"`
	Err      *api.Error           `json:"error,omitempty"`
}

// Dispatcher sends completion requests to a remote responder. All methods
// are safe for concurrent use.
type Dispatcher struct {
	cfg        Config
	httpClient *http.Client
	auxClient  *http.Client
	log        conversation.Store
	usage      *usage.Aggregator
}

// New creates a Dispatcher. The conversation log may be nil; the usage
// aggregator must not be.
func New(cfg Config, log conversation.Store, agg *usage.Aggregator) *Dispatcher {
	cfg.defaults()
	cfg.ResponderURL = strings.TrimRight(cfg.ResponderURL, "/")
	return &Dispatcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		auxClient:  &http.Client{Timeout: cfg.AuxTimeout},
		log:        log,
		usage:      agg,
	}
}

// Send posts a completion request to the responder with bounded retry.
// Retryable failures (connectivity, timeout, rate limit, upstream 5xx)
// consume the attempt budget with exponential backoff between attempts;
// attempt i (0-indexed) waits 2^i backoff units. Non-retryable failures
// and budget exhaustion come back as a failure Result, never a panic or
// raw error.
func (d *Dispatcher) Send(ctx context.Context, req *api.ProcessRequest) *Result {
	var lastErr *api.Error

	for attempt := 0; attempt < d.cfg.RetryAttempts; attempt++ {
		resp, err := d.post(ctx, req)
		if err == nil {
			d.recordSuccess(ctx, req, resp)
			return &Result{Success: true, Attempts: attempt + 1, Response: resp}
		}

		lastErr = err
		if !err.Retryable() {
			return &Result{Attempts: attempt + 1, Err: err}
		}
		if attempt == d.cfg.RetryAttempts-1 {
			break
		}

		backoff := time.Duration(1<<attempt) * d.cfg.BackoffUnit
		slog.Warn("send failed, retrying",
			"attempt", attempt+1,
			"backoff", backoff.String(),
			"error", err.Error(),
		)
		observability.DispatchRetriesTotal.WithLabelValues(string(err.Type)).Inc()

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return &Result{
				Attempts: attempt + 1,
				Err:      api.NewTimeoutError("dispatch cancelled during backoff: " + ctx.Err().Error()),
			}
		}
	}

	slog.Error("retry budget exhausted", "attempts", d.cfg.RetryAttempts, "error", lastErr.Error())
	return &Result{Attempts: d.cfg.RetryAttempts, Err: lastErr}
}

// post performs a single /process attempt.
func (d *Dispatcher) post(ctx context.Context, req *api.ProcessRequest) (*api.ProcessResponse, *api.Error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, api.NewInvalidRequestError("", fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.ResponderURL+"/process", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewConnectivityError("failed to create HTTP request: " + err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	var resp api.ProcessResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, api.NewUpstreamServerError(0, "failed to parse responder reply: "+err.Error())
	}
	return &resp, nil
}

// recordSuccess appends the outgoing message and the AI reply to the
// conversation log and folds the remote usage figures into the local
// aggregator. Log failures never fail the dispatch.
func (d *Dispatcher) recordSuccess(ctx context.Context, req *api.ProcessRequest, resp *api.ProcessResponse) {
	latency := time.Duration(resp.ProcessingTime * float64(time.Second))
	d.usage.Record(resp.Model, resp.Usage.TotalTokens, resp.Usage.EstimatedCost, latency)

	if d.log == nil {
		return
	}
	entries := []*conversation.Entry{
		{
			From:    "messenger",
			To:      "responder",
			Message: req.Message,
		},
		{
			From:        "responder",
			To:          "messenger",
			Message:     resp.AIResponse,
			AIGenerated: true,
			Model:       resp.Model,
			Tokens:      resp.Usage.TotalTokens,
			Cost:        resp.Usage.EstimatedCost,
		},
	}
	for _, e := range entries {
		if err := d.log.Append(ctx, e); err != nil {
			slog.Warn("conversation log append failed", "error", err.Error())
		}
	}
}

// Usage returns a point-in-time copy of the dispatcher's usage totals.
func (d *Dispatcher) Usage() usage.Aggregate {
	return d.usage.Snapshot()
}

// History returns up to limit conversation entries, newest first.
func (d *Dispatcher) History(ctx context.Context, limit int) ([]*conversation.Entry, error) {
	if d.log == nil {
		return nil, nil
	}
	return d.log.Recent(ctx, limit)
}
