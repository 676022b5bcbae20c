// Package pipeline binds the keyword pass and the LLM gateway into one
// hybrid extraction call. Keyword extraction always runs first and decides
// whether the model is consulted at all.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/youcodecowboy/disco-grid-sub000/internal/gateway"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// KeywordFunc is the deterministic first pass, normally extract.Entities.
type KeywordFunc func(text string) []model.Entity

// LLMExtractor is the model-backed pass, normally *gateway.Gateway.
type LLMExtractor interface {
	Extract(ctx context.Context, text, contextName, strategy string) (*gateway.Result, error)
}

// Pipeline runs hybrid extraction. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	keyword KeywordFunc
	llm     LLMExtractor
}

// New creates a Pipeline. A nil llm makes every call keyword-only.
func New(keyword KeywordFunc, llm LLMExtractor) *Pipeline {
	return &Pipeline{keyword: keyword, llm: llm}
}

// Extract runs the hybrid policy for req, which the caller has already
// validated with Request.Validate:
//
//  1. keyword pass;
//  2. if it found something and all of it is explicit, return it as is;
//  3. otherwise ask the gateway and merge with type-level LLM precedence;
//  4. on gateway failure or an empty answer, return the keyword result with
//     the failure recorded in Warning.
//
// Extract never fails; gateway errors degrade the result instead.
func (p *Pipeline) Extract(ctx context.Context, req Request) *model.ExtractionResult {
	log := zap.L().With(zap.String("context", req.Context), zap.String("strategy", req.Strategy))
	start := time.Now()

	kw := p.keyword(req.Text)
	tagProvenance(kw, model.ProvenanceKeyword)

	if allExplicit(kw) {
		log.Debug("pipeline: keyword short-circuit", zap.Int("entities", len(kw)))
		return &model.ExtractionResult{Entities: kw, Source: model.SourceKeyword}
	}

	if p.llm == nil {
		return degraded(kw, "llm extractor not configured", false)
	}

	res, err := p.llm.Extract(ctx, req.Text, req.Context, req.Strategy)
	if err != nil {
		log.Warn("pipeline: gateway failed, using keyword results",
			zap.String("kind", string(gateway.KindOf(err))),
			zap.Int("keyword_entities", len(kw)),
			zap.Error(err),
		)
		return degraded(kw, err.Error(), true)
	}
	if len(res.Entities) == 0 {
		log.Info("pipeline: gateway returned no entities, using keyword results",
			zap.Int("dropped", res.Dropped))
		out := degraded(kw, "llm returned no entities", true)
		out.Model = res.Model
		out.TokenUsage = res.Usage
		return out
	}

	merged := MergeEntities(res.Entities, kw)
	log.Info("pipeline: hybrid extraction complete",
		zap.Int("llm_entities", len(res.Entities)),
		zap.Int("keyword_entities", len(kw)),
		zap.Int("merged", len(merged)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return &model.ExtractionResult{
		Entities:   merged,
		Source:     model.SourceHybrid,
		LLMCalled:  true,
		Model:      res.Model,
		TokenUsage: res.Usage,
	}
}

// allExplicit reports whether entities is non-empty and every entity has
// explicit confidence.
func allExplicit(entities []model.Entity) bool {
	if len(entities) == 0 {
		return false
	}
	for _, e := range entities {
		if e.Confidence != model.ConfidenceExplicit {
			return false
		}
	}
	return true
}

func degraded(kw []model.Entity, warning string, called bool) *model.ExtractionResult {
	if kw == nil {
		kw = []model.Entity{}
	}
	return &model.ExtractionResult{
		Entities:  kw,
		Source:    model.SourceKeyword,
		Warning:   warning,
		LLMCalled: called,
	}
}

func tagProvenance(entities []model.Entity, p model.Provenance) {
	for i := range entities {
		entities[i].Provenance = p
	}
}
