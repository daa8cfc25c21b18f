// Package engine orchestrates completion requests between the transport
// layer and the provider backend: it builds the message list, resolves the
// effective model, invokes the provider, estimates cost, and records usage
// and the conversation log. Provider failures never propagate raw: every
// error crossing the engine boundary is a classified api error.
package engine

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/relaykit/relay/pkg/api"
	"github.com/relaykit/relay/pkg/conversation"
	"github.com/relaykit/relay/pkg/cost"
	"github.com/relaykit/relay/pkg/observability"
	"github.com/relaykit/relay/pkg/provider"
	"github.com/relaykit/relay/pkg/provider/registry"
	"github.com/relaykit/relay/pkg/usage"
)

// Engine is the completion orchestrator. All methods are safe for
// concurrent use.
type Engine struct {
	registry  *registry.Registry
	estimator *cost.Estimator
	usage     *usage.Aggregator
	log       conversation.Store
	cfg       Config
}

// New creates a new Engine. The registry, estimator, and aggregator must
// not be nil; the conversation log may be nil for stateless operation.
func New(reg *registry.Registry, est *cost.Estimator, agg *usage.Aggregator, log conversation.Store, cfg Config) *Engine {
	cfg.defaults()
	return &Engine{
		registry:  reg,
		estimator: est,
		usage:     agg,
		log:       log,
		cfg:       cfg,
	}
}

// applyDefaults fills omitted request fields with the engine's configured
// defaults.
func (e *Engine) applyDefaults(req *api.ProcessRequest) {
	if req.Temperature == nil {
		temp := e.cfg.DefaultTemperature
		req.Temperature = &temp
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = e.cfg.DefaultMaxTokens
	}
}

// buildMessages constructs the message list: the context as system prompt
// when provided, a fixed default otherwise, followed by the user message.
func buildMessages(req *api.ProcessRequest) []api.Message {
	system := req.Context
	if system == "" {
		system = DefaultSystemPrompt
	}
	return []api.Message{
		{Role: api.RoleSystem, Content: system},
		{Role: api.RoleUser, Content: req.Message},
	}
}

// resolveModel picks the effective model: explicit request override, then
// the engine's configured default, then the provider default.
func (e *Engine) resolveModel(req *api.ProcessRequest, p provider.Provider) string {
	if req.Model != "" {
		return req.Model
	}
	if e.cfg.DefaultModel != "" {
		return e.cfg.DefaultModel
	}
	return p.DefaultModel()
}

// Handle processes a completion request end to end and returns the
// structured success payload. Failures come back as *api.Error values,
// never raw provider errors.
func (e *Engine) Handle(ctx context.Context, req *api.ProcessRequest) (*api.ProcessResponse, error) {
	e.applyDefaults(req)
	if verr := api.ValidateRequest(req); verr != nil {
		return nil, verr
	}

	p, err := e.registry.Get(ctx)
	if err != nil {
		return nil, api.AsError(err)
	}

	provReq := &provider.Request{
		Model:       e.resolveModel(req, p),
		Messages:    buildMessages(req),
		Temperature: *req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	start := time.Now()
	result, err := p.Complete(ctx, provReq)
	elapsed := time.Since(start)

	provName := p.Name()
	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues(provName, provReq.Model, "error").Inc()
		observability.ProviderLatency.WithLabelValues(provName, provReq.Model).Observe(elapsed.Seconds())
		slog.Error("completion failed", "provider", provName, "model", provReq.Model, "error", err.Error())
		return nil, api.AsError(err)
	}

	// Cost is estimated from the resolved model reported by the provider,
	// which may differ from the requested short name.
	estCost := e.estimator.Estimate(result.Model, result.PromptTokens, result.CompletionTokens)

	observability.ProviderRequestsTotal.WithLabelValues(provName, provReq.Model, "success").Inc()
	observability.ProviderLatency.WithLabelValues(provName, provReq.Model).Observe(elapsed.Seconds())
	observability.ProviderTokensTotal.WithLabelValues(provName, result.Model, "input").Add(float64(result.PromptTokens))
	observability.ProviderTokensTotal.WithLabelValues(provName, result.Model, "output").Add(float64(result.CompletionTokens))
	observability.EstimatedCostTotal.WithLabelValues(provName, result.Model).Add(estCost)

	e.usage.Record(result.Model, result.TotalTokens(), estCost, elapsed)
	e.record(ctx, result, estCost)

	return &api.ProcessResponse{
		Status:     "success",
		AIResponse: result.Content,
		Model:      result.Model,
		Provider:   provName,
		Usage: api.Usage{
			PromptTokens:     result.PromptTokens,
			CompletionTokens: result.CompletionTokens,
			TotalTokens:      result.TotalTokens(),
			EstimatedCost:    estCost,
		},
		Timestamp:      api.Timestamp(time.Now()),
		ProcessingTime: math.Round(elapsed.Seconds()*1000) / 1000,
	}, nil
}

// record appends the generated reply to the conversation log. Log failures
// are reported but do not fail the request.
func (e *Engine) record(ctx context.Context, result *provider.Result, estCost float64) {
	if e.log == nil {
		return
	}
	err := e.log.Append(ctx, &conversation.Entry{
		From:        "responder",
		To:          "messenger",
		Message:     result.Content,
		AIGenerated: true,
		Model:       result.Model,
		Tokens:      result.TotalTokens(),
		Cost:        estCost,
	})
	if err != nil {
		slog.Warn("conversation log append failed", "error", err.Error())
	}
}

// HandleStream processes a streaming completion request. Message
// construction follows the same path as Handle; provider events are
// forwarded directly to the caller.
func (e *Engine) HandleStream(ctx context.Context, req *api.ProcessRequest) (<-chan provider.Event, error) {
	e.applyDefaults(req)
	if verr := api.ValidateRequest(req); verr != nil {
		return nil, verr
	}

	p, err := e.registry.Get(ctx)
	if err != nil {
		return nil, api.AsError(err)
	}

	provReq := &provider.Request{
		Model:       e.resolveModel(req, p),
		Messages:    buildMessages(req),
		Temperature: *req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	ch, err := p.Stream(ctx, provReq)
	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues(p.Name(), provReq.Model, "error").Inc()
		return nil, api.AsError(err)
	}
	observability.ProviderRequestsTotal.WithLabelValues(p.Name(), provReq.Model, "success").Inc()
	return ch, nil
}

// Models returns the provider listing payload.
func (e *Engine) Models(ctx context.Context) (*api.ModelList, error) {
	p, err := e.registry.Get(ctx)
	if err != nil {
		return nil, api.AsError(err)
	}
	models, err := p.ListModels(ctx)
	if err != nil {
		return nil, api.AsError(err)
	}
	def := e.cfg.DefaultModel
	if def == "" {
		def = p.DefaultModel()
	}
	return &api.ModelList{
		Provider: p.Name(),
		Models:   models,
		Default:  def,
	}, nil
}

// Health reports overall responder health. A provider that fails its probe
// or could not be constructed degrades the status but never produces an
// error; a degraded responder still handles requests.
func (e *Engine) Health(ctx context.Context) *api.HealthResponse {
	resp := &api.HealthResponse{
		Status:    "healthy",
		Timestamp: api.Timestamp(time.Now()),
		Provider:  e.registry.Backend(),
	}

	if e.log != nil {
		if count, err := e.log.Count(ctx); err == nil {
			resp.MessagesProcessed = count
		}
	} else {
		resp.MessagesProcessed = e.usage.Snapshot().TotalRequests
	}

	p, err := e.registry.Get(ctx)
	if err != nil {
		resp.Status = "degraded"
		resp.AI = api.AIHealth{Configured: false, Status: api.HealthStatusUnhealthy, Error: err.Error()}
		return resp
	}

	health := p.HealthCheck(ctx)
	resp.AI = api.AIHealth{Configured: true, Status: health.Status, Error: health.Error}
	if health.Status != api.HealthStatusHealthy {
		resp.Status = "degraded"
	}
	return resp
}

// Config returns the configuration read payload.
func (e *Engine) Config(ctx context.Context) *api.ConfigResponse {
	def := e.cfg.DefaultModel
	if def == "" {
		if p, err := e.registry.Get(ctx); err == nil {
			def = p.DefaultModel()
		}
	}
	return &api.ConfigResponse{
		Provider:     e.registry.Backend(),
		DefaultModel: def,
		Temperature:  e.cfg.DefaultTemperature,
		MaxTokens:    e.cfg.DefaultMaxTokens,
	}
}

// Usage returns a point-in-time copy of the responder's usage totals.
func (e *Engine) Usage() usage.Aggregate {
	return e.usage.Snapshot()
}
