package gateway

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/prompt"
	"github.com/youcodecowboy/disco-grid-sub000/pkg/llm"
)

// Workflow is a generated workflow draft.
type Workflow struct {
	Stages     []model.WorkflowStage `json:"stages"`
	LimboZones []string              `json:"limboZones"`
	Model      string                `json:"model"`
	Usage      model.TokenUsage      `json:"usage"`
}

type workflowEnvelope struct {
	Stages     []json.RawMessage `json:"stages"`
	LimboZones []string          `json:"limboZones"`
}

type stageObject struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// GenerateWorkflow asks the model for a stage sequence describing the
// business. It uses the workflow temperature and the same failure kinds
// and fallback rule as Extract.
func (g *Gateway) GenerateWorkflow(ctx context.Context, description, industry string) (*Workflow, error) {
	resp, usedModel, err := g.complete(ctx, llm.Request{
		Model:       g.cfg.Model,
		System:      prompt.BuildWorkflowGeneration(industry),
		User:        description,
		Temperature: g.cfg.WorkflowTemperature,
		MaxTokens:   g.cfg.MaxTokens,
		JSONMode:    g.cfg.JSONMode,
	})
	if err != nil {
		return nil, err
	}

	var env workflowEnvelope
	if err := decodeInto(resp, usedModel, &env); err != nil {
		return nil, err
	}

	wf := &Workflow{
		Stages:     parseStages(env.Stages),
		LimboZones: cleanList(env.LimboZones),
		Model:      usedModel,
		Usage:      g.usage(resp, usedModel),
	}

	zap.L().Info("gateway: workflow generated",
		zap.String("model", usedModel),
		zap.Int("stages", len(wf.Stages)),
		zap.Int("limbo_zones", len(wf.LimboZones)),
		zap.Float64("cost_usd", wf.Usage.Cost),
	)
	return wf, nil
}

// parseStages accepts stages as {name, order} objects or bare strings,
// orders them by declared order (ties keep response order) and renumbers
// from 1.
func parseStages(raw []json.RawMessage) []model.WorkflowStage {
	stages := make([]stageObject, 0, len(raw))
	for i, r := range raw {
		var s stageObject
		if err := json.Unmarshal(r, &s); err != nil {
			var name string
			if json.Unmarshal(r, &name) != nil {
				continue
			}
			s.Name = name
		}
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		if s.Order <= 0 {
			s.Order = i + 1
		}
		stages = append(stages, s)
	}
	sort.SliceStable(stages, func(i, j int) bool { return stages[i].Order < stages[j].Order })

	out := make([]model.WorkflowStage, len(stages))
	for i, s := range stages {
		out[i] = model.WorkflowStage{
			Name:  s.Name,
			Order: i + 1,
			Prov:  model.ProvenanceLLM,
			Conf:  model.ConfidenceImplied,
		}
	}
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}
