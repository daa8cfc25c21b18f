package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
	"github.com/relaykit/relay/pkg/usage"
)

// fakeResponder implements Responder with configurable function fields.
type fakeResponder struct {
	handle       func(ctx context.Context, req *api.ProcessRequest) (*api.ProcessResponse, error)
	handleStream func(ctx context.Context, req *api.ProcessRequest) (<-chan provider.Event, error)
	models       func(ctx context.Context) (*api.ModelList, error)
	health       func(ctx context.Context) *api.HealthResponse
	config       func(ctx context.Context) *api.ConfigResponse
	usage        func() usage.Aggregate
}

func (f *fakeResponder) Handle(ctx context.Context, req *api.ProcessRequest) (*api.ProcessResponse, error) {
	return f.handle(ctx, req)
}

func (f *fakeResponder) HandleStream(ctx context.Context, req *api.ProcessRequest) (<-chan provider.Event, error) {
	return f.handleStream(ctx, req)
}

func (f *fakeResponder) Models(ctx context.Context) (*api.ModelList, error) {
	return f.models(ctx)
}

func (f *fakeResponder) Health(ctx context.Context) *api.HealthResponse {
	return f.health(ctx)
}

func (f *fakeResponder) Config(ctx context.Context) *api.ConfigResponse {
	return f.config(ctx)
}

func (f *fakeResponder) Usage() usage.Aggregate {
	return f.usage()
}

func newTestServer(t *testing.T, r Responder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewAdapter(r, DefaultConfig()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleProcess_Success(t *testing.T) {
	responder := &fakeResponder{
		handle: func(_ context.Context, req *api.ProcessRequest) (*api.ProcessResponse, error) {
			if req.Message != "hello" {
				t.Errorf("message = %q", req.Message)
			}
			return &api.ProcessResponse{
				Status:     "success",
				AIResponse: "hi there",
				Model:      "mock-model",
				Provider:   "mock",
				Usage:      api.Usage{PromptTokens: 4, CompletionTokens: 4, TotalTokens: 8},
			}, nil
		},
	}
	srv := newTestServer(t, responder)

	resp, err := http.Post(srv.URL+"/process", "application/json",
		strings.NewReader(`{"message":"hello","max_tokens":50}`))
	if err != nil {
		t.Fatalf("POST /process failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body api.ProcessResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.AIResponse != "hi there" || body.Usage.TotalTokens != 8 {
		t.Errorf("response = %+v", body)
	}
}

func TestHandleProcess_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *api.Error
		wantStatus int
	}{
		{"validation", api.NewInvalidRequestError("message", "message is required"), http.StatusBadRequest},
		{"upstream auth", api.NewUpstreamAuthError(401, "bad key"), http.StatusUnauthorized},
		{"rate limit", api.NewRateLimitError("slow down"), http.StatusTooManyRequests},
		{"timeout", api.NewTimeoutError("deadline exceeded"), http.StatusGatewayTimeout},
		{"connectivity", api.NewConnectivityError("connection refused"), http.StatusBadGateway},
		{"upstream server", api.NewUpstreamServerError(500, "backend exploded"), http.StatusBadGateway},
		{"configuration", api.NewConfigurationError("no API key"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := &fakeResponder{
				handle: func(context.Context, *api.ProcessRequest) (*api.ProcessResponse, error) {
					return nil, tt.err
				},
			}
			srv := newTestServer(t, responder)

			resp, err := http.Post(srv.URL+"/process", "application/json",
				strings.NewReader(`{"message":"hi","max_tokens":50}`))
			if err != nil {
				t.Fatalf("POST /process failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var envelope api.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				t.Fatalf("decoding error envelope: %v", err)
			}
			if envelope.Error == nil || envelope.Error.Type != tt.err.Type {
				t.Errorf("envelope = %+v, want type %q", envelope.Error, tt.err.Type)
			}
		})
	}
}

func TestHandleProcess_BadJSON(t *testing.T) {
	responder := &fakeResponder{
		handle: func(context.Context, *api.ProcessRequest) (*api.ProcessResponse, error) {
			t.Error("handler called for malformed JSON")
			return nil, nil
		},
	}
	srv := newTestServer(t, responder)

	resp, err := http.Post(srv.URL+"/process", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST /process failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleProcess_WrongContentType(t *testing.T) {
	responder := &fakeResponder{}
	srv := newTestServer(t, responder)

	resp, err := http.Post(srv.URL+"/process", "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("POST /process failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestHandleStream(t *testing.T) {
	responder := &fakeResponder{
		handleStream: func(context.Context, *api.ProcessRequest) (<-chan provider.Event, error) {
			ch := make(chan provider.Event, 4)
			ch <- provider.Event{Type: provider.EventTextDelta, Delta: "Hello "}
			ch <- provider.Event{Type: provider.EventTextDelta, Delta: "world"}
			ch <- provider.Event{Type: provider.EventDone}
			close(ch)
			return ch, nil
		},
	}
	srv := newTestServer(t, responder)

	resp, err := http.Post(srv.URL+"/stream", "application/json",
		strings.NewReader(`{"message":"hi","max_tokens":50}`))
	if err != nil {
		t.Fatalf("POST /stream failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	var frames []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			frames = append(frames, strings.TrimPrefix(line, "data: "))
		}
	}

	want := []string{`{"content":"Hello "}`, `{"content":"world"}`, "[DONE]"}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d: %v", len(frames), len(want), frames)
	}
	for i, frame := range frames {
		if frame != want[i] {
			t.Errorf("frame[%d] = %q, want %q", i, frame, want[i])
		}
	}
}

func TestHandleStream_ErrorFrame(t *testing.T) {
	responder := &fakeResponder{
		handleStream: func(context.Context, *api.ProcessRequest) (<-chan provider.Event, error) {
			ch := make(chan provider.Event, 4)
			ch <- provider.Event{Type: provider.EventTextDelta, Delta: "partial"}
			ch <- provider.Event{Type: provider.EventError, Err: api.NewUpstreamServerError(500, "backend exploded")}
			close(ch)
			return ch, nil
		},
	}
	srv := newTestServer(t, responder)

	resp, err := http.Post(srv.URL+"/stream", "application/json",
		strings.NewReader(`{"message":"hi","max_tokens":50}`))
	if err != nil {
		t.Fatalf("POST /stream failed: %v", err)
	}
	defer resp.Body.Close()

	var frames []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			frames = append(frames, strings.TrimPrefix(line, "data: "))
		}
	}

	want := []string{`{"content":"partial"}`, `{"error":"backend exploded"}`, "[DONE]"}
	if len(frames) != len(want) {
		t.Fatalf("got %d frames, want %d: %v", len(frames), len(want), frames)
	}
	for i, frame := range frames {
		if frame != want[i] {
			t.Errorf("frame[%d] = %q, want %q", i, frame, want[i])
		}
	}
}

func TestHandleStream_PreStreamError(t *testing.T) {
	responder := &fakeResponder{
		handleStream: func(context.Context, *api.ProcessRequest) (<-chan provider.Event, error) {
			return nil, api.NewInvalidRequestError("message", "message is required")
		},
	}
	srv := newTestServer(t, responder)

	resp, err := http.Post(srv.URL+"/stream", "application/json",
		strings.NewReader(`{"max_tokens":50}`))
	if err != nil {
		t.Fatalf("POST /stream failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 before streaming starts", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json for pre-stream errors", ct)
	}
}

func TestAuxEndpoints(t *testing.T) {
	responder := &fakeResponder{
		models: func(context.Context) (*api.ModelList, error) {
			return &api.ModelList{Provider: "mock", Models: []string{"mock-model"}, Default: "mock-model"}, nil
		},
		health: func(context.Context) *api.HealthResponse {
			return &api.HealthResponse{Status: "healthy", Provider: "mock", MessagesProcessed: 3}
		},
		config: func(context.Context) *api.ConfigResponse {
			return &api.ConfigResponse{Provider: "mock", DefaultModel: "mock-model", Temperature: 0.7, MaxTokens: 1000}
		},
		usage: func() usage.Aggregate {
			return usage.Aggregate{TotalRequests: 3, TotalTokens: 42}
		},
	}
	srv := newTestServer(t, responder)

	t.Run("models", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/models")
		if err != nil {
			t.Fatalf("GET /models failed: %v", err)
		}
		defer resp.Body.Close()
		var models api.ModelList
		json.NewDecoder(resp.Body).Decode(&models)
		if models.Default != "mock-model" {
			t.Errorf("models = %+v", models)
		}
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("GET /health failed: %v", err)
		}
		defer resp.Body.Close()
		var health api.HealthResponse
		json.NewDecoder(resp.Body).Decode(&health)
		if health.Status != "healthy" || health.MessagesProcessed != 3 {
			t.Errorf("health = %+v", health)
		}
	})

	t.Run("config", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/config")
		if err != nil {
			t.Fatalf("GET /config failed: %v", err)
		}
		defer resp.Body.Close()
		var cfg api.ConfigResponse
		json.NewDecoder(resp.Body).Decode(&cfg)
		if cfg.MaxTokens != 1000 {
			t.Errorf("config = %+v", cfg)
		}
	})

	t.Run("stats", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/stats")
		if err != nil {
			t.Fatalf("GET /stats failed: %v", err)
		}
		defer resp.Body.Close()
		var agg usage.Aggregate
		json.NewDecoder(resp.Body).Decode(&agg)
		if agg.TotalRequests != 3 || agg.TotalTokens != 42 {
			t.Errorf("stats = %+v", agg)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestMethodNotAllowed(t *testing.T) {
	responder := &fakeResponder{}
	srv := newTestServer(t, responder)

	resp, err := http.Get(srv.URL + "/process")
	if err != nil {
		t.Fatalf("GET /process failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
