package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntity_Key(t *testing.T) {
	t.Parallel()

	a := Entity{Type: "location", Value: map[string]any{"city": "Istanbul", "country": "Turkey"}}
	b := Entity{Type: "location", Value: map[string]any{"country": "Turkey", "city": "Istanbul"}}
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, `location:{"city":"Istanbul","country":"Turkey"}`, a.Key())

	assert.NotEqual(t, Entity{Type: "shifts", Value: 2.0}.Key(), Entity{Type: "team_size", Value: 2.0}.Key())
	assert.NotEqual(t, Entity{Type: "shifts", Value: "2"}.Key(), Entity{Type: "shifts", Value: 2.0}.Key())
}

func TestDedupeEntities(t *testing.T) {
	t.Parallel()

	in := []Entity{
		{Type: "department", Value: "Quality", Confidence: ConfidenceExplicit},
		{Type: "department", Value: "Shipping", Confidence: ConfidenceImplied},
		{Type: "department", Value: "Quality", Confidence: ConfidenceImplied},
	}
	out := DedupeEntities(in)
	assert.Len(t, out, 2)
	assert.Equal(t, ConfidenceExplicit, out[0].Confidence, "first occurrence wins")
	assert.Equal(t, "Shipping", out[1].Value)
	assert.Empty(t, DedupeEntities(nil))
}

func TestConfidence_Clamp(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ConfidenceInferred, Confidence(0).Clamp())
	assert.Equal(t, ConfidenceInferred, Confidence(-4).Clamp())
	assert.Equal(t, ConfidenceImplied, Confidence(2).Clamp())
	assert.Equal(t, ConfidenceExplicit, Confidence(7).Clamp())
}

func TestTokenUsage_Add(t *testing.T) {
	t.Parallel()
	u := TokenUsage{InputTokens: 10, OutputTokens: 5, Cost: 0.01}
	u.Add(TokenUsage{InputTokens: 3, OutputTokens: 2, Cost: 0.02})
	assert.Equal(t, 13, u.InputTokens)
	assert.Equal(t, 7, u.OutputTokens)
	assert.InDelta(t, 0.03, u.Cost, 1e-9)
}
