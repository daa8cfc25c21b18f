package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/relaykit/relay/pkg/api"
	convmemory "github.com/relaykit/relay/pkg/conversation/memory"
	"github.com/relaykit/relay/pkg/cost"
	"github.com/relaykit/relay/pkg/provider"
	"github.com/relaykit/relay/pkg/provider/registry"
	"github.com/relaykit/relay/pkg/usage"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	reg := registry.New(registry.Settings{Backend: registry.BackendMock})
	t.Cleanup(func() { reg.Close() })
	return New(reg, cost.NewEstimator(nil), usage.NewAggregator(), convmemory.New(), Config{})
}

func TestEngine_Handle(t *testing.T) {
	e := newTestEngine(t)

	resp, err := e.Handle(context.Background(), &api.ProcessRequest{
		Message: "What is 2+2?",
		Model:   "mock-model",
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if resp.Status != "success" {
		t.Errorf("status = %q", resp.Status)
	}
	if !strings.Contains(resp.AIResponse, "What is 2+2?") {
		t.Errorf("aiResponse = %q, want echoed message", resp.AIResponse)
	}
	if resp.Model != "mock-model" || resp.Provider != "mock" {
		t.Errorf("model/provider = %q/%q", resp.Model, resp.Provider)
	}
	if resp.Usage.TotalTokens <= 0 {
		t.Errorf("totalTokens = %d, want > 0", resp.Usage.TotalTokens)
	}
	if resp.Usage.TotalTokens != resp.Usage.PromptTokens+resp.Usage.CompletionTokens {
		t.Error("totalTokens is not the sum of prompt and completion tokens")
	}
	// Unknown model: cost defaults to 0, not an error.
	if resp.Usage.EstimatedCost != 0 {
		t.Errorf("estimatedCost = %v, want 0 for unlisted model", resp.Usage.EstimatedCost)
	}
	if resp.Timestamp == "" {
		t.Error("timestamp not set")
	}
	if resp.ProcessingTime <= 0 {
		t.Errorf("processingTime = %v, want > 0", resp.ProcessingTime)
	}
}

func TestEngine_Handle_DefaultsApplied(t *testing.T) {
	e := newTestEngine(t)

	// No model, temperature, or maxTokens: engine fills them in.
	resp, err := e.Handle(context.Background(), &api.ProcessRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if resp.Model != "mock-model" {
		t.Errorf("model = %q, want provider default", resp.Model)
	}
}

func TestEngine_Handle_Validation(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		req  *api.ProcessRequest
	}{
		{"empty message", &api.ProcessRequest{}},
		{"message too long", &api.ProcessRequest{Message: strings.Repeat("x", api.MaxMessageChars+1)}},
		{"context too long", &api.ProcessRequest{Message: "hi", Context: strings.Repeat("x", api.MaxContextChars+1)}},
		{"max tokens too high", &api.ProcessRequest{Message: "hi", MaxTokens: api.MaxTokensLimit + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Handle(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if api.AsError(err).Type != api.ErrorTypeInvalidRequest {
				t.Errorf("error type = %q", api.AsError(err).Type)
			}
		})
	}
}

func TestEngine_Handle_RecordsUsageAndLog(t *testing.T) {
	reg := registry.New(registry.Settings{Backend: registry.BackendMock})
	defer reg.Close()
	agg := usage.NewAggregator()
	log := convmemory.New()
	e := New(reg, cost.NewEstimator(nil), agg, log, Config{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := e.Handle(ctx, &api.ProcessRequest{Message: "hello world"}); err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
	}

	snap := agg.Snapshot()
	if snap.TotalRequests != 3 {
		t.Errorf("totalRequests = %d, want 3", snap.TotalRequests)
	}
	if snap.TotalTokens <= 0 {
		t.Errorf("totalTokens = %d, want > 0", snap.TotalTokens)
	}
	if snap.PerModel["mock-model"].Requests != 3 {
		t.Errorf("perModel requests = %d, want 3", snap.PerModel["mock-model"].Requests)
	}

	count, err := log.Count(ctx)
	if err != nil || count != 3 {
		t.Errorf("conversation count = %d, err = %v, want 3", count, err)
	}
	entries, _ := log.Recent(ctx, 1)
	if !entries[0].AIGenerated || entries[0].Model != "mock-model" || entries[0].Tokens <= 0 {
		t.Errorf("logged entry = %+v", entries[0])
	}
}

func TestEngine_HandleStream_MatchesComplete(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	ch, err := e.HandleStream(ctx, &api.ProcessRequest{Message: "hi there"})
	if err != nil {
		t.Fatalf("HandleStream failed: %v", err)
	}

	var b strings.Builder
	var done bool
	for ev := range ch {
		switch ev.Type {
		case provider.EventTextDelta:
			b.WriteString(ev.Delta)
		case provider.EventDone:
			done = true
		case provider.EventError:
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
	}
	if !done {
		t.Error("stream ended without done event")
	}
	if !strings.Contains(b.String(), "hi there") {
		t.Errorf("streamed content = %q, want echoed message", b.String())
	}
}

func TestEngine_Health(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	h := e.Health(ctx)
	if h.Status != "healthy" {
		t.Errorf("status = %q", h.Status)
	}
	if !h.AI.Configured || h.AI.Status != api.HealthStatusHealthy {
		t.Errorf("ai health = %+v", h.AI)
	}
	if h.Provider != "mock" {
		t.Errorf("provider = %q", h.Provider)
	}
	if h.MessagesProcessed != 0 {
		t.Errorf("messagesProcessed = %d, want 0", h.MessagesProcessed)
	}

	if _, err := e.Handle(ctx, &api.ProcessRequest{Message: "hi"}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if h := e.Health(ctx); h.MessagesProcessed != 1 {
		t.Errorf("messagesProcessed = %d, want 1", h.MessagesProcessed)
	}
}

func TestEngine_Health_DegradedOnConstructionFailure(t *testing.T) {
	// OpenAI backend with no API key: construction fails, health degrades.
	reg := registry.New(registry.Settings{Backend: registry.BackendOpenAI})
	defer reg.Close()
	e := New(reg, cost.NewEstimator(nil), usage.NewAggregator(), nil, Config{})

	h := e.Health(context.Background())
	if h.Status != "degraded" {
		t.Errorf("status = %q, want degraded", h.Status)
	}
	if h.AI.Configured || h.AI.Error == "" {
		t.Errorf("ai health = %+v, want unconfigured with error", h.AI)
	}
}

func TestEngine_ModelsAndConfig(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	models, err := e.Models(ctx)
	if err != nil {
		t.Fatalf("Models failed: %v", err)
	}
	if models.Provider != "mock" || models.Default != "mock-model" {
		t.Errorf("models = %+v", models)
	}
	if len(models.Models) != 1 || models.Models[0] != "mock-model" {
		t.Errorf("model list = %v", models.Models)
	}

	cfg := e.Config(ctx)
	if cfg.Provider != "mock" || cfg.DefaultModel != "mock-model" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Temperature != api.DefaultTemperature || cfg.MaxTokens != api.DefaultMaxTokens {
		t.Errorf("config defaults = %v/%d", cfg.Temperature, cfg.MaxTokens)
	}
}

func TestEngine_CostForKnownModel(t *testing.T) {
	// The mock provider reports model "mock-model"; inject an alias so the
	// estimator resolves it to a priced model.
	reg := registry.New(registry.Settings{Backend: registry.BackendMock})
	defer reg.Close()
	est := cost.NewEstimator(map[string]string{"mock-model": "gpt-4"})
	e := New(reg, est, usage.NewAggregator(), nil, Config{})

	resp, err := e.Handle(context.Background(), &api.ProcessRequest{Message: "hello world"})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if resp.Usage.EstimatedCost <= 0 {
		t.Errorf("estimatedCost = %v, want > 0 for aliased model", resp.Usage.EstimatedCost)
	}
}
