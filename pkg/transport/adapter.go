package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
	"github.com/relaykit/relay/pkg/usage"
)

// Responder is the contract between the transport layer and the
// completion engine.
type Responder interface {
	// Handle processes a synchronous completion request.
	Handle(ctx context.Context, req *api.ProcessRequest) (*api.ProcessResponse, error)

	// HandleStream processes a streaming completion request. The returned
	// channel is closed when the stream ends.
	HandleStream(ctx context.Context, req *api.ProcessRequest) (<-chan provider.Event, error)

	// Models returns the provider listing payload.
	Models(ctx context.Context) (*api.ModelList, error)

	// Health returns the responder health payload. Never fails.
	Health(ctx context.Context) *api.HealthResponse

	// Config returns the configuration read payload.
	Config(ctx context.Context) *api.ConfigResponse

	// Usage returns a snapshot of the usage totals.
	Usage() usage.Aggregate
}

// Adapter serves the responder API over HTTP.
// It routes requests to the engine and serializes responses.
type Adapter struct {
	responder Responder
	mux       *http.ServeMux
	config    Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20, // 1 MB
	}
}

// NewAdapter creates an HTTP adapter serving the given Responder.
func NewAdapter(responder Responder, cfg Config) *Adapter {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	a := &Adapter{
		responder: responder,
		mux:       http.NewServeMux(),
		config:    cfg,
	}

	a.mux.HandleFunc("POST /process", a.handleProcess)
	a.mux.HandleFunc("POST /stream", a.handleStream)
	a.mux.HandleFunc("GET /models", a.handleModels)
	a.mux.HandleFunc("GET /health", a.handleHealth)
	a.mux.HandleFunc("GET /config", a.handleConfig)
	a.mux.HandleFunc("GET /stats", a.handleStats)
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

// decodeRequest validates the content type, bounds the body size, and
// decodes the JSON payload. A nil return with ok=false means the error
// response has already been written.
func (a *Adapter) decodeRequest(w http.ResponseWriter, r *http.Request) (*api.ProcessRequest, bool) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return nil, false
		}
		WriteErrorResponse(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
			http.StatusBadRequest,
		)
		return nil, false
	}

	return &req, true
}

// handleProcess handles POST /process.
func (a *Adapter) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := a.responder.Handle(r.Context(), req)
	if err != nil {
		WriteAPIError(w, api.AsError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleStream handles POST /stream. Text deltas are forwarded as
// {content} frames; a provider failure mid-stream becomes an {error}
// frame. Both paths end with the [DONE] sentinel.
func (a *Adapter) handleStream(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeRequest(w, r)
	if !ok {
		return
	}

	ch, err := a.responder.HandleStream(r.Context(), req)
	if err != nil {
		WriteAPIError(w, api.AsError(err))
		return
	}

	sse := newSSEWriter(w)
	for ev := range ch {
		switch ev.Type {
		case provider.EventTextDelta:
			if err := sse.writeFrame(api.StreamFrame{Content: ev.Delta}); err != nil {
				slog.Debug("stream client disconnected", "error", err.Error())
				return
			}
		case provider.EventError:
			sse.writeFrame(api.StreamFrame{Error: ev.Err.Message})
			sse.writeDone()
			return
		case provider.EventDone:
			sse.writeDone()
			return
		}
	}

	// Channel closed without a done event.
	sse.writeDone()
}

// handleModels handles GET /models.
func (a *Adapter) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := a.responder.Models(r.Context())
	if err != nil {
		WriteAPIError(w, api.AsError(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models)
}

// handleHealth handles GET /health.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a.responder.Health(r.Context()))
}

// handleConfig handles GET /config.
func (a *Adapter) handleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a.responder.Config(r.Context()))
}

// handleStats handles GET /stats.
func (a *Adapter) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a.responder.Usage())
}

// handleHealthz handles GET /healthz, the bare liveness probe.
func (a *Adapter) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
