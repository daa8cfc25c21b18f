package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/provider"
)

// runtimeClient is the slice of the Bedrock runtime API this adapter uses.
type runtimeClient interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	InvokeModelWithResponseStream(ctx context.Context, in *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

// controlClient is the slice of the Bedrock control-plane API used for
// health probing.
type controlClient interface {
	ListFoundationModels(ctx context.Context, in *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error)
}

// BedrockProvider implements provider.Provider for AWS Bedrock Anthropic
// models.
type BedrockProvider struct {
	cfg     Config
	runtime runtimeClient
	control controlClient
}

// Ensure BedrockProvider implements provider.Provider at compile time.
var _ provider.Provider = (*BedrockProvider)(nil)

// New creates a new BedrockProvider. Credentials are resolved through the
// default AWS chain (environment, shared config, IAM role); a resolution
// failure is reported as a configuration error at construction time rather
// than on the first request.
func New(ctx context.Context, cfg Config) (*BedrockProvider, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, api.NewConfigurationError(fmt.Sprintf("failed to load AWS config: %s", err.Error()))
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, api.NewConfigurationError(fmt.Sprintf("AWS credentials not available: %s", err.Error()))
	}

	return &BedrockProvider{
		cfg:     cfg,
		runtime: bedrockruntime.NewFromConfig(awsCfg),
		control: bedrock.NewFromConfig(awsCfg),
	}, nil
}

// Name returns the provider identifier.
func (p *BedrockProvider) Name() string {
	return "bedrock"
}

// DefaultModel returns the model used when a request does not name one.
func (p *BedrockProvider) DefaultModel() string {
	return p.cfg.DefaultModel
}

// Complete performs non-streaming completion through the invoke-model API.
func (p *BedrockProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Result, error) {
	modelID := resolveModel(p.cfg.ModelAliases, req.Model)

	body, err := json.Marshal(translateRequest(req))
	if err != nil {
		return nil, api.NewUpstreamServerError(0, fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	out, err := p.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, mapAWSError(err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, api.NewUpstreamServerError(0, fmt.Sprintf("failed to parse bedrock response: %s", err.Error()))
	}

	var content string
	if len(resp.Content) > 0 {
		content = resp.Content[0].Text
	}

	return &provider.Result{
		Content:          content,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		Model:            modelID,
	}, nil
}

// Stream performs streaming completion through the
// invoke-model-with-response-stream API. Only text deltas are forwarded;
// lifecycle events are consumed silently.
func (p *BedrockProvider) Stream(ctx context.Context, req *provider.Request) (<-chan provider.Event, error) {
	modelID := resolveModel(p.cfg.ModelAliases, req.Model)

	body, err := json.Marshal(translateRequest(req))
	if err != nil {
		return nil, api.NewUpstreamServerError(0, fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	out, err := p.runtime.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, mapAWSError(err)
	}

	stream := out.GetStream()
	ch := make(chan provider.Event, 16)

	go func() {
		defer close(ch)
		defer stream.Close()

		for event := range stream.Events() {
			if ctx.Err() != nil {
				return
			}
			chunk, ok := event.(*types.ResponseStreamMemberChunk)
			if !ok {
				continue
			}
			if text, ok := decodeChunk(chunk.Value.Bytes); ok {
				ch <- provider.Event{Type: provider.EventTextDelta, Delta: text}
			}
		}

		if err := stream.Err(); err != nil {
			if ctx.Err() != nil {
				return
			}
			ch <- provider.Event{Type: provider.EventError, Err: mapAWSError(err)}
			return
		}
		ch <- provider.Event{Type: provider.EventDone}
	}()

	return ch, nil
}

// ListModels returns the configured alias names, sorted. The alias table
// is the set of models this deployment intends to serve; enumerating the
// full Bedrock catalog would list models the account cannot invoke.
func (p *BedrockProvider) ListModels(ctx context.Context) ([]string, error) {
	models := make([]string, 0, len(p.cfg.ModelAliases))
	for alias := range p.cfg.ModelAliases {
		models = append(models, alias)
	}
	sort.Strings(models)
	return models, nil
}

// HealthCheck probes connectivity by listing foundation models through the
// control plane. Failures are captured in the result, never returned as
// errors.
func (p *BedrockProvider) HealthCheck(ctx context.Context) api.ProviderHealth {
	if _, err := p.control.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{}); err != nil {
		return api.ProviderHealth{Status: api.HealthStatusUnhealthy, Error: err.Error()}
	}
	return api.ProviderHealth{Status: api.HealthStatusHealthy}
}

// Close releases provider resources. The Bedrock SDK clients hold no
// long-lived connections that need explicit shutdown.
func (p *BedrockProvider) Close() error {
	return nil
}
