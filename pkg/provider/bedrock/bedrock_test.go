package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
)

type fakeRuntime struct {
	lastInput *bedrockruntime.InvokeModelInput
	output    *bedrockruntime.InvokeModelOutput
	err       error
}

func (f *fakeRuntime) InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.lastInput = in
	return f.output, f.err
}

func (f *fakeRuntime) InvokeModelWithResponseStream(ctx context.Context, in *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error) {
	return nil, errors.New("not implemented")
}

type fakeControl struct {
	err error
}

func (f *fakeControl) ListFoundationModels(ctx context.Context, in *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &bedrock.ListFoundationModelsOutput{}, nil
}

func TestBedrockProvider_Complete(t *testing.T) {
	respBody, _ := json.Marshal(anthropicResponse{
		Content: []anthropicContent{{Type: "text", Text: "Hello from Claude"}},
		Usage:   anthropicUsage{InputTokens: 12, OutputTokens: 4},
	})
	rt := &fakeRuntime{output: &bedrockruntime.InvokeModelOutput{Body: respBody}}

	p := &BedrockProvider{
		cfg: Config{
			Region:       "us-east-1",
			ModelAliases: map[string]string{"claude-3-haiku": "anthropic.claude-3-haiku-20240307-v1:0"},
		},
		runtime: rt,
	}

	result, err := p.Complete(context.Background(), &provider.Request{
		Model: "claude-3-haiku",
		Messages: []api.Message{
			{Role: api.RoleSystem, Content: "Be brief."},
			{Role: api.RoleUser, Content: "Hi"},
		},
		Temperature: 0.7,
		MaxTokens:   100,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if result.Content != "Hello from Claude" {
		t.Errorf("Content = %q", result.Content)
	}
	if result.PromptTokens != 12 || result.CompletionTokens != 4 {
		t.Errorf("tokens = %d/%d", result.PromptTokens, result.CompletionTokens)
	}
	if result.TotalTokens() != 16 {
		t.Errorf("TotalTokens() = %d, want 16", result.TotalTokens())
	}
	if result.Model != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("result model = %q, want resolved model ID", result.Model)
	}

	if got := *rt.lastInput.ModelId; got != "anthropic.claude-3-haiku-20240307-v1:0" {
		t.Errorf("invoked model ID = %q", got)
	}
	var sent anthropicRequest
	if err := json.Unmarshal(rt.lastInput.Body, &sent); err != nil {
		t.Fatalf("failed to parse sent body: %v", err)
	}
	if sent.System != "Be brief." || len(sent.Messages) != 1 {
		t.Errorf("sent envelope = %+v", sent)
	}
}

func TestBedrockProvider_Complete_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType api.ErrorType
	}{
		{"throttling", &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}, api.ErrorTypeRateLimit},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "no"}, api.ErrorTypeUpstreamAuth},
		{"validation", &smithy.GenericAPIError{Code: "ValidationException", Message: "bad body"}, api.ErrorTypeInvalidRequest},
		{"model timeout", &smithy.GenericAPIError{Code: "ModelTimeoutException", Message: "late"}, api.ErrorTypeTimeout},
		{"unavailable", &smithy.GenericAPIError{Code: "ServiceUnavailableException", Message: "down"}, api.ErrorTypeUpstreamServer},
		{"deadline", context.DeadlineExceeded, api.ErrorTypeTimeout},
		{"network", errors.New("dial tcp: connection refused"), api.ErrorTypeConnectivity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &BedrockProvider{runtime: &fakeRuntime{err: tt.err}}
			_, err := p.Complete(context.Background(), &provider.Request{Model: "m"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := api.AsError(err).Type; got != tt.wantType {
				t.Errorf("error type = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestBedrockProvider_ListModels(t *testing.T) {
	p := &BedrockProvider{cfg: Config{
		ModelAliases: map[string]string{
			"claude-3-sonnet": "anthropic.claude-3-sonnet-20240229-v1:0",
			"claude-3-haiku":  "anthropic.claude-3-haiku-20240307-v1:0",
		},
	}}

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 || models[0] != "claude-3-haiku" || models[1] != "claude-3-sonnet" {
		t.Errorf("models = %v, want sorted alias names", models)
	}
}

func TestBedrockProvider_HealthCheck(t *testing.T) {
	p := &BedrockProvider{control: &fakeControl{}}
	if h := p.HealthCheck(context.Background()); h.Status != api.HealthStatusHealthy {
		t.Errorf("health = %+v, want healthy", h)
	}

	p = &BedrockProvider{control: &fakeControl{err: errors.New("no credentials")}}
	h := p.HealthCheck(context.Background())
	if h.Status != api.HealthStatusUnhealthy || h.Error == "" {
		t.Errorf("health = %+v, want unhealthy with error", h)
	}
}
