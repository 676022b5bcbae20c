package pipeline

import "github.com/youcodecowboy/disco-grid-sub000/internal/model"

// MergeEntities combines gateway and keyword results with type-level LLM
// precedence: every LLM entity is kept (tagged llm), and a keyword entity is
// kept (tagged keyword) only when the LLM produced no entity of its type.
// Keyword values for a type the LLM covered are discarded even if they
// differ. Inputs are not modified.
func MergeEntities(llmEntities, keywordEntities []model.Entity) []model.Entity {
	out := make([]model.Entity, 0, len(llmEntities)+len(keywordEntities))
	covered := make(map[string]bool, len(llmEntities))

	for _, e := range llmEntities {
		e.Provenance = model.ProvenanceLLM
		covered[e.Type] = true
		out = append(out, e)
	}
	for _, e := range keywordEntities {
		if covered[e.Type] {
			continue
		}
		e.Provenance = model.ProvenanceKeyword
		out = append(out, e)
	}
	return model.DedupeEntities(out)
}
