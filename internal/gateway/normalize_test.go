package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
)

func extractReply(t *testing.T, body, ctxName string) *Result {
	t.Helper()
	c := &scriptedClient{replies: map[string]reply{"small": content(body)}}
	res, err := New(c, Config{Model: "small"}).Extract(context.Background(), "input", ctxName, "balanced")
	require.NoError(t, err)
	return res
}

func values(entities []model.Entity, typ string) []any {
	var out []any
	for _, e := range entities {
		if e.Type == typ {
			out = append(out, e.Value)
		}
	}
	return out
}

func TestNormalize_FlattensListTypes(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"stages_list","value":["Cutting","Sewing","Packing"],"confidence":3,"rawText":"cut, sew, pack"},
		{"type":"workflow_stage","value":"QC","confidence":2,"rawText":"QC"}
	]}`, "workflows")

	assert.Equal(t, []any{"Cutting", "Sewing", "Packing"}, values(res.Entities, "stages_list"))
	for _, e := range res.Entities {
		if e.Type == "stages_list" {
			assert.Equal(t, "cut, sew, pack", e.RawText)
		}
	}
	assert.Equal(t, []any{"QC"}, values(res.Entities, "workflow_stage"))
}

func TestNormalize_ArrayForScalarTypeIsDropped(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"ops_model","value":["MTO","MTS"],"confidence":3}
	]}`, "operations")
	assert.Empty(t, res.Entities)
	assert.Equal(t, 1, res.Dropped)
}

func TestNormalize_CanonicalSynonyms(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"planning_method","value":"whiteboard","confidence":3},
		{"type":"ops_model","value":"make to order","confidence":3}
	]}`, "operations")
	assert.Equal(t, []any{"ManualBoard"}, values(res.Entities, "planning_method"))
	assert.Equal(t, []any{"MTO"}, values(res.Entities, "ops_model"))

	res = extractReply(t, `{"entities":[{"type":"tracking_level","value":"Batch","confidence":2}]}`, "items")
	assert.Equal(t, []any{"lot"}, values(res.Entities, "tracking_level"))
}

func TestNormalize_NumericCoercion(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"capacity","value":"50,000","confidence":3},
		{"type":"shifts","value":"2","confidence":3},
		{"type":"lead_time","value":{"value":72,"unit":"hours"},"confidence":3}
	]}`, "operations")
	assert.Equal(t, []any{50000.0}, values(res.Entities, "capacity"))
	assert.Equal(t, []any{2.0}, values(res.Entities, "shifts"))
	assert.Equal(t, []any{72.0}, values(res.Entities, "lead_time"))

	res = extractReply(t, `{"entities":[{"type":"capacity","value":"50k","confidence":3}]}`, "operations")
	assert.Equal(t, []any{50000.0}, values(res.Entities, "capacity"))
}

func TestNormalize_UnitWordsAreNotMultipliers(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"capacity","value":"500 metric tons","confidence":3},
		{"type":"shifts","value":"2 main shifts","confidence":3}
	]}`, "operations")
	assert.Equal(t, []any{500.0}, values(res.Entities, "capacity"))
	assert.Equal(t, []any{2.0}, values(res.Entities, "shifts"))

	res = extractReply(t, `{"entities":[{"type":"team_size","value":"50 members","confidence":3}]}`, "teams")
	assert.Equal(t, []any{50.0}, values(res.Entities, "team_size"))
}

func TestNormalize_LeadTimeInHours(t *testing.T) {
	tests := []struct {
		value string
		want  float64
	}{
		{`"3 days"`, 72},
		{`"3 months"`, 2160},
		{`"2 weeks"`, 336},
		{`48`, 48},
		{`{"value":3,"unit":"days"}`, 72},
	}
	for _, tt := range tests {
		res := extractReply(t, `{"entities":[{"type":"lead_time","value":`+tt.value+`,"confidence":3}]}`, "operations")
		assert.Equal(t, []any{tt.want}, values(res.Entities, "lead_time"), tt.value)
	}
}

func TestNormalize_UncoercibleNumberDropped(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"capacity","value":"a lot","confidence":3},
		{"type":"shifts","value":2,"confidence":3}
	]}`, "operations")
	assert.Nil(t, values(res.Entities, "capacity"))
	assert.Equal(t, 1, res.Dropped)
}

func TestNormalize_ConfidenceClamp(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"shifts","value":1,"confidence":0},
		{"type":"capacity","value":100,"confidence":7},
		{"type":"lead_time","value":24,"confidence":"high"},
		{"type":"planning_method","value":"ERP"}
	]}`, "operations")

	got := map[string]model.Confidence{}
	for _, e := range res.Entities {
		got[e.Type] = e.Confidence
	}
	assert.Equal(t, model.ConfidenceInferred, got["shifts"])
	assert.Equal(t, model.ConfidenceExplicit, got["capacity"])
	assert.Equal(t, model.ConfidenceExplicit, got["lead_time"])
	assert.Equal(t, model.ConfidenceInferred, got["planning_method"])
}

func TestNormalize_Location(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"location","value":"Istanbul","confidence":2},
		{"type":"location","value":"Austin, TX","confidence":3},
		{"type":"location","value":{"city":"Lyon","country":"France"},"confidence":3}
	]}`, "company_profile")

	assert.Equal(t, []any{
		map[string]any{"city": "Istanbul", "country": "Turkey"},
		map[string]any{"city": "Austin", "state": "TX", "country": "United States"},
		map[string]any{"city": "Lyon", "country": "France"},
	}, values(res.Entities, "location"))
}

func TestNormalize_SchemaRejections(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"ops_model","value":"Whatever","confidence":3},
		{"type":"capacity","value":-5,"confidence":3},
		{"type":"location","value":{"country":"Turkey"},"confidence":3},
		{"type":"made_up_type","value":"x","confidence":3},
		{"type":"shifts","value":2,"confidence":3}
	]}`, "operations")

	require.Len(t, res.Entities, 1)
	assert.Equal(t, "shifts", res.Entities[0].Type)
	assert.Equal(t, 4, res.Dropped)
}

func TestNormalize_DedupesAfterCanonicalisation(t *testing.T) {
	res := extractReply(t, `{"entities":[
		{"type":"ops_model","value":"MTO","confidence":3,"rawText":"made to order"},
		{"type":"ops_model","value":"custom","confidence":2,"rawText":"custom"}
	]}`, "operations")
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "made to order", res.Entities[0].RawText)
}

func TestNormalize_ExtendedRegistry(t *testing.T) {
	reg, err := registry.Default().Extend([]registry.EntityType{
		{Name: "certification", Kind: registry.KindEnum, Enum: []string{"ITAR", "AS9100"}, Topic: "Compliance"},
	}, []registry.Context{
		{Name: "compliance", Types: []string{"certification"}},
	})
	require.NoError(t, err)

	c := &scriptedClient{replies: map[string]reply{
		"small": content(`{"entities":[{"type":"certification","value":"itar","confidence":3}]}`),
	}}
	res, err := New(c, Config{Model: "small"}, WithRegistry(reg)).Extract(context.Background(), "we are ITAR registered", "compliance", "balanced")
	require.NoError(t, err)
	assert.Equal(t, []any{"ITAR"}, values(res.Entities, "certification"))
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"Sure! ```json\n{\"a\":1}\n``` done", `{"a":1}`},
		{"Result: {\"a\":{\"b\":2}} thanks", `{"a":{"b":2}}`},
		{"nothing", "nothing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanJSON(tt.in), tt.in)
	}
}
