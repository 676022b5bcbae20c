package model

import (
	"encoding/json"
	"fmt"
)

// Confidence grades how directly an entity was stated in the source text.
type Confidence int

// Confidence levels, lowest to highest.
const (
	ConfidenceUnknown  Confidence = 0
	ConfidenceInferred Confidence = 1
	ConfidenceImplied  Confidence = 2
	ConfidenceExplicit Confidence = 3
)

// Clamp returns c bounded to the LLM-emittable range {1,2,3}.
func (c Confidence) Clamp() Confidence {
	if c < ConfidenceInferred {
		return ConfidenceInferred
	}
	if c > ConfidenceExplicit {
		return ConfidenceExplicit
	}
	return c
}

// Entity is one extracted fact.
type Entity struct {
	Type       string     `json:"type"`
	Value      any        `json:"value"`
	Confidence Confidence `json:"confidence"`
	RawText    string     `json:"rawText"`
	Provenance Provenance `json:"provenance,omitempty"`
}

// Key returns the dedup key "type:JSON(value)". Map values marshal with
// sorted keys so the key is stable for structurally equal values.
func (e Entity) Key() string {
	b, err := json.Marshal(e.Value)
	if err != nil {
		return e.Type + ":" + fmt.Sprintf("%v", e.Value)
	}
	return e.Type + ":" + string(b)
}

// DedupeEntities keeps the first entity for each (type, value) key,
// preserving insertion order.
func DedupeEntities(entities []Entity) []Entity {
	if len(entities) == 0 {
		return entities
	}
	seen := make(map[string]bool, len(entities))
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		k := e.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// ExtractionSource labels which path produced a hybrid extraction result.
type ExtractionSource string

const (
	SourceKeyword ExtractionSource = "keyword"
	SourceHybrid  ExtractionSource = "hybrid"
)

// ExtractionResult is the outcome of one hybrid extraction call.
type ExtractionResult struct {
	Entities []Entity         `json:"entities"`
	Source   ExtractionSource `json:"source"`
	// Warning carries the gateway failure message when the result degraded
	// to keyword-only. It is for observability, not for end users.
	Warning    string     `json:"warning,omitempty"`
	LLMCalled  bool       `json:"llmCalled"`
	Model      string     `json:"model,omitempty"`
	TokenUsage TokenUsage `json:"tokenUsage"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	Cost         float64 `json:"cost"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.Cost += other.Cost
}
