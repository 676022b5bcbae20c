// Package gateway performs the single LLM round trip of hybrid extraction:
// build the context prompt, send one chat completion, parse and normalize
// the entity envelope, and validate every entity against the registry.
package gateway

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/youcodecowboy/disco-grid-sub000/internal/cost"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/prompt"
	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
	"github.com/youcodecowboy/disco-grid-sub000/internal/resilience"
	"github.com/youcodecowboy/disco-grid-sub000/pkg/llm"
)

// Config controls request shape and model selection.
type Config struct {
	Model string
	// FallbackModel is tried once when Model is reported as not found.
	FallbackModel       string
	Temperature         float64
	WorkflowTemperature float64
	MaxTokens           int
	JSONMode            bool
}

// DefaultConfig returns extraction defaults: low temperature, 4096 tokens,
// JSON mode on.
func DefaultConfig() Config {
	return Config{
		Temperature:         0.1,
		WorkflowTemperature: 0.7,
		MaxTokens:           4096,
		JSONMode:            true,
	}
}

// Result is a successful extraction.
type Result struct {
	Entities []model.Entity
	// Model is the model that answered, which differs from the configured
	// one after a fallback.
	Model string
	Usage model.TokenUsage
	// Dropped counts entities rejected during normalization or validation.
	Dropped int
}

// Gateway sends extraction requests to one llm.Client.
type Gateway struct {
	client   llm.Client
	cfg      Config
	reg      *registry.Registry
	prompts  *prompt.Builder
	breakers *resilience.Breakers
	pricing  *cost.Calculator
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRegistry replaces the built-in entity registry.
func WithRegistry(r *registry.Registry) Option {
	return func(g *Gateway) { g.reg = r }
}

// WithBreakers shares a breaker set, e.g. with a health endpoint.
func WithBreakers(b *resilience.Breakers) Option {
	return func(g *Gateway) { g.breakers = b }
}

// WithPricing prices calls whose provider reports no cost.
func WithPricing(c *cost.Calculator) Option {
	return func(g *Gateway) { g.pricing = c }
}

// New creates a Gateway. Zero numeric config fields take their defaults.
func New(client llm.Client, cfg Config, opts ...Option) *Gateway {
	def := DefaultConfig()
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.WorkflowTemperature <= 0 {
		cfg.WorkflowTemperature = def.WorkflowTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	g := &Gateway{client: client, cfg: cfg}
	for _, o := range opts {
		o(g)
	}
	if g.reg == nil {
		g.reg = registry.Default()
	}
	if g.breakers == nil {
		g.breakers = resilience.NewBreakers(resilience.Config{Counts: resilience.IsUpstreamFailure})
	}
	g.prompts = prompt.NewBuilder(g.reg)
	return g
}

// Breakers exposes the per-model breakers for health reporting.
func (g *Gateway) Breakers() *resilience.Breakers {
	return g.breakers
}

// Extract runs one extraction for text in the named context. An invalid
// context or strategy is returned as a plain error before any network call;
// every upstream or parse failure is a *Error.
func (g *Gateway) Extract(ctx context.Context, text, contextName, strategy string) (*Result, error) {
	system, err := g.prompts.Build(contextName, strategy)
	if err != nil {
		return nil, eris.Wrap(err, "gateway: build prompt")
	}

	resp, usedModel, err := g.complete(ctx, llm.Request{
		Model:       g.cfg.Model,
		System:      system,
		User:        text,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		JSONMode:    g.cfg.JSONMode,
	})
	if err != nil {
		return nil, err
	}

	raw, err := decodeEntities(resp, usedModel)
	if err != nil {
		return nil, err
	}

	entities, dropped := g.normalize(raw)
	usage := g.usage(resp, usedModel)

	zap.L().Info("gateway: extraction complete",
		zap.String("provider", g.client.Name()),
		zap.String("model", usedModel),
		zap.String("context", contextName),
		zap.Int("entities", len(entities)),
		zap.Int("dropped", dropped),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens),
		zap.Float64("cost_usd", usage.Cost),
	)

	return &Result{Entities: entities, Model: usedModel, Usage: usage, Dropped: dropped}, nil
}

func (g *Gateway) usage(resp *llm.Response, usedModel string) model.TokenUsage {
	u := model.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Cost:         resp.Usage.Cost,
	}
	if u.Cost == 0 && g.pricing != nil {
		u.Cost = g.pricing.Tokens(usedModel, resp.Usage.InputTokens, resp.Usage.OutputTokens,
			resp.Usage.CacheWriteTokens, resp.Usage.CacheReadTokens)
	}
	return u
}

// complete sends req to the configured model. A model-not-found failure
// gets exactly one attempt against the fallback model; nothing else is
// retried.
func (g *Gateway) complete(ctx context.Context, req llm.Request) (*llm.Response, string, error) {
	resp, err := g.call(ctx, req)
	if err == nil {
		return resp, req.Model, nil
	}

	fallback := g.cfg.FallbackModel
	if KindOf(err) != KindModelNotFound || fallback == "" || fallback == req.Model {
		return nil, req.Model, err
	}

	zap.L().Warn("gateway: model not found, trying fallback",
		zap.String("model", req.Model),
		zap.String("fallback", fallback),
		zap.Error(err),
	)
	req.Model = fallback
	resp, err = g.call(ctx, req)
	if err != nil {
		return nil, fallback, err
	}
	return resp, fallback, nil
}

func (g *Gateway) call(ctx context.Context, req llm.Request) (*llm.Response, error) {
	resp, err := resilience.Do(ctx, g.breakers.For(req.Model), func(ctx context.Context) (*llm.Response, error) {
		return g.client.Chat(ctx, req)
	})
	if err != nil {
		return nil, classify(req.Model, err)
	}
	return resp, nil
}

func classify(modelName string, err error) *Error {
	if errors.Is(err, resilience.ErrOpen) {
		return &Error{Kind: KindCircuitOpen, Model: modelName, Err: err}
	}
	if errors.Is(err, llm.ErrMalformedResponse) {
		return &Error{Kind: KindParse, Model: modelName, Err: err}
	}
	var se *llm.StatusError
	if errors.As(err, &se) {
		if se.ModelNotFound() {
			return &Error{Kind: KindModelNotFound, Model: modelName, Err: err}
		}
		return &Error{Kind: KindUpstreamStatus, Model: modelName, Err: err}
	}
	return &Error{Kind: KindNetwork, Model: modelName, Err: err}
}
