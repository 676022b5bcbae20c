package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/youcodecowboy/disco-grid-sub000/internal/completeness"
	"github.com/youcodecowboy/disco-grid-sub000/internal/config"
	"github.com/youcodecowboy/disco-grid-sub000/internal/cost"
	"github.com/youcodecowboy/disco-grid-sub000/internal/extract"
	"github.com/youcodecowboy/disco-grid-sub000/internal/gateway"
	"github.com/youcodecowboy/disco-grid-sub000/internal/normalize"
	"github.com/youcodecowboy/disco-grid-sub000/internal/pipeline"
	"github.com/youcodecowboy/disco-grid-sub000/internal/prompt"
	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
	"github.com/youcodecowboy/disco-grid-sub000/internal/resilience"
	"github.com/youcodecowboy/disco-grid-sub000/internal/store"
	anthropicpkg "github.com/youcodecowboy/disco-grid-sub000/pkg/anthropic"
	"github.com/youcodecowboy/disco-grid-sub000/pkg/llm"
)

// coreEnv holds the extraction core wired from configuration.
type coreEnv struct {
	Registry     *registry.Registry
	Prompts      *prompt.Builder
	Gateway      *gateway.Gateway // nil when llm.provider is none
	Breakers     *resilience.Breakers
	Pipeline     *pipeline.Pipeline
	Completeness *completeness.Engine
	Store        store.Store // set by serve only

	MinTextLength   int
	DefaultContext  string
	DefaultStrategy string
}

// Close releases resources held by the environment.
func (e *coreEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// request fills configured defaults into req and validates it.
func (e *coreEnv) request(req pipeline.Request) (pipeline.Request, error) {
	if req.Context == "" {
		req.Context = e.DefaultContext
	}
	if req.Strategy == "" {
		req.Strategy = e.DefaultStrategy
	}
	return req.Validate(e.Registry, e.MinTextLength)
}

// initCore loads the registry, data tables and LLM client and builds the
// pipeline. It does not open the store.
func initCore(c *config.Config) (*coreEnv, error) {
	reg := registry.Default()
	if c.Extraction.Extension != "" {
		r, err := registry.LoadExtensionFile(reg, c.Extraction.Extension)
		if err != nil {
			return nil, err
		}
		reg = r
		zap.L().Info("registry extension loaded",
			zap.String("path", c.Extraction.Extension),
			zap.Strings("contexts", reg.ContextNames()),
		)
	}

	cities := normalize.DefaultCityTable()
	if c.Extraction.CityTable != "" {
		t, err := normalize.LoadCityTable(c.Extraction.CityTable)
		if err != nil {
			return nil, err
		}
		cities = t
	}

	engine := completeness.Default()
	if c.Extraction.CompletenessTable != "" {
		table, err := completeness.LoadTable(c.Extraction.CompletenessTable)
		if err != nil {
			return nil, err
		}
		engine = completeness.New(table)
	}

	env := &coreEnv{
		Registry:        reg,
		Prompts:         prompt.NewBuilder(reg),
		Completeness:    engine,
		MinTextLength:   c.Extraction.MinTextLength,
		DefaultContext:  c.Extraction.DefaultContext,
		DefaultStrategy: c.Extraction.DefaultStrategy,
		Breakers: resilience.NewBreakers(resilience.Config{
			Threshold: c.LLM.Breaker.Threshold,
			CoolDown:  time.Duration(c.LLM.Breaker.CoolDownSecs) * time.Second,
			Counts:    resilience.IsUpstreamFailure,
		}),
	}

	client, err := newLLMClient(c.LLM)
	if err != nil {
		return nil, err
	}
	var extractor pipeline.LLMExtractor
	if client != nil {
		rates := cost.DefaultRates()
		if c.LLM.PricingFile != "" {
			extra, err := cost.LoadRates(c.LLM.PricingFile)
			if err != nil {
				return nil, err
			}
			rates = rates.Merge(extra)
		}
		env.Gateway = gateway.New(client, gateway.Config{
			Model:               c.LLM.Model,
			FallbackModel:       c.LLM.FallbackModel,
			Temperature:         c.LLM.Temperature,
			WorkflowTemperature: c.LLM.WorkflowTemperature,
			MaxTokens:           c.LLM.MaxTokens,
			JSONMode:            c.LLM.JSONMode,
		}, gateway.WithRegistry(reg),
			gateway.WithBreakers(env.Breakers),
			gateway.WithPricing(cost.NewCalculator(rates)),
		)
		extractor = env.Gateway
	} else {
		zap.L().Warn("llm provider disabled, extraction is keyword-only")
	}

	env.Pipeline = pipeline.New(extract.New(cities).Entities, extractor)
	return env, nil
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// newLLMClient builds the configured transport, rate limited when rps > 0.
// Provider "none" returns a nil client.
func newLLMClient(c config.LLMConfig) (llm.Client, error) {
	var client llm.Client
	switch c.Provider {
	case "none":
		return nil, nil
	case "anthropic":
		opts := []anthropicpkg.Option{anthropicpkg.WithTimeout(c.Timeout())}
		if c.BaseURL != "" {
			opts = append(opts, anthropicpkg.WithBaseURL(c.BaseURL))
		}
		client = llm.NewAnthropicClient(anthropicpkg.NewClient(c.APIKey, opts...))
	case "openai":
		baseURL := c.BaseURL
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		client = llm.NewOpenAIClient(baseURL, c.APIKey, c.Timeout())
	default:
		return nil, eris.Errorf("unknown llm provider %q", c.Provider)
	}
	if c.RPS > 0 {
		client = llm.RateLimited(client, llm.NewLimiter(c.RPS, c.Burst))
	}
	return client, nil
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context, c config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, c.DatabaseURL, &store.PoolConfig{MaxConns: c.MaxConns, MinConns: c.MinConns})
	case "sqlite":
		st, err = store.NewSQLite(c.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q", c.Driver)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "open %s store", c.Driver)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	zap.L().Info("store ready", zap.String("driver", c.Driver))
	return st, nil
}
