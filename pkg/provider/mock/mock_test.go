package mock

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
)

func TestMockProvider_Complete(t *testing.T) {
	p := New()

	result, err := p.Complete(context.Background(), &provider.Request{
		Model: "mock-model",
		Messages: []api.Message{
			{Role: api.RoleSystem, Content: "Be helpful."},
			{Role: api.RoleUser, Content: "Hello there"},
		},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	want := "[MOCK RESPONSE #1] You said: 'Hello there'. This is a test response without calling any external API."
	if result.Content != want {
		t.Errorf("Content = %q\nwant %q", result.Content, want)
	}
	if result.Model != "mock-model" {
		t.Errorf("Model = %q", result.Model)
	}
	// Token heuristic: twice the word count.
	if result.PromptTokens != 4 {
		t.Errorf("PromptTokens = %d, want 4 (2 words x 2)", result.PromptTokens)
	}
	wantCompletion := len(strings.Fields(want)) * 2
	if result.CompletionTokens != wantCompletion {
		t.Errorf("CompletionTokens = %d, want %d", result.CompletionTokens, wantCompletion)
	}
	if result.TotalTokens() != result.PromptTokens+result.CompletionTokens {
		t.Errorf("TotalTokens() = %d, want sum of parts", result.TotalTokens())
	}
}

func TestMockProvider_Complete_CounterIncrements(t *testing.T) {
	p := New()
	req := &provider.Request{Messages: []api.Message{{Role: api.RoleUser, Content: "x"}}}

	first, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	second, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if !strings.HasPrefix(first.Content, "[MOCK RESPONSE #1]") {
		t.Errorf("first content = %q", first.Content)
	}
	if !strings.HasPrefix(second.Content, "[MOCK RESPONSE #2]") {
		t.Errorf("second content = %q", second.Content)
	}
}

func TestMockProvider_Complete_NoUserMessage(t *testing.T) {
	p := New()

	result, err := p.Complete(context.Background(), &provider.Request{
		Messages: []api.Message{{Role: api.RoleSystem, Content: "system only"}},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !strings.Contains(result.Content, "You said: ''") {
		t.Errorf("Content = %q, want empty echoed message", result.Content)
	}
	if result.PromptTokens != 0 {
		t.Errorf("PromptTokens = %d, want 0", result.PromptTokens)
	}
}

func TestMockProvider_Stream(t *testing.T) {
	p := New()

	ch, err := p.Stream(context.Background(), &provider.Request{
		Messages: []api.Message{{Role: api.RoleUser, Content: "Hi"}},
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	var b strings.Builder
	var done bool
	for ev := range ch {
		switch ev.Type {
		case provider.EventTextDelta:
			if !strings.HasSuffix(ev.Delta, " ") {
				t.Errorf("delta %q missing trailing space", ev.Delta)
			}
			b.WriteString(ev.Delta)
		case provider.EventDone:
			done = true
		case provider.EventError:
			t.Fatalf("unexpected stream error: %v", ev.Err)
		}
	}

	want := "[MOCK STREAM #1] You said: 'Hi'. This is a streaming test response."
	if got := strings.TrimRight(b.String(), " "); got != want {
		t.Errorf("streamed content = %q\nwant %q", got, want)
	}
	if !done {
		t.Error("stream ended without a done event")
	}
}

func TestMockProvider_Stream_Cancellation(t *testing.T) {
	p := New()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Stream(ctx, &provider.Request{
		Messages: []api.Message{{Role: api.RoleUser, Content: "a long message to stream"}},
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	cancel()

	// Channel must close without a done event; partial output is fine.
	for ev := range ch {
		if ev.Type == provider.EventError {
			t.Errorf("cancellation produced an error event: %+v", ev)
		}
	}
}

func TestMockProvider_SharedCounter(t *testing.T) {
	p := New()
	req := &provider.Request{Messages: []api.Message{{Role: api.RoleUser, Content: "x"}}}

	if _, err := p.Complete(context.Background(), req); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	ch, err := p.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	var b strings.Builder
	for ev := range ch {
		if ev.Type == provider.EventTextDelta {
			b.WriteString(ev.Delta)
		}
	}

	if !strings.HasPrefix(b.String(), "[MOCK STREAM #2]") {
		t.Errorf("stream content = %q, want counter shared with Complete", b.String())
	}
}

func TestMockProvider_ConcurrentCounters(t *testing.T) {
	p := New()
	req := &provider.Request{Messages: []api.Message{{Role: api.RoleUser, Content: "x"}}}

	const n = 20
	results := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := p.Complete(context.Background(), req)
			if err != nil {
				t.Errorf("Complete failed: %v", err)
				return
			}
			results[i] = r.Content
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, content := range results {
		prefix, _, _ := strings.Cut(content, "]")
		if seen[prefix] {
			t.Errorf("duplicate response number: %s", prefix)
		}
		seen[prefix] = true
	}
}

func TestMockProvider_Health(t *testing.T) {
	p := New()
	if h := p.HealthCheck(context.Background()); h.Status != api.HealthStatusHealthy {
		t.Errorf("health = %+v", h)
	}
	models, err := p.ListModels(context.Background())
	if err != nil || len(models) != 1 || models[0] != "mock-model" {
		t.Errorf("models = %v, err = %v", models, err)
	}
	if p.DefaultModel() != "mock-model" {
		t.Errorf("default model = %q", p.DefaultModel())
	}
}
