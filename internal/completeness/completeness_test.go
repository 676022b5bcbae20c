package completeness

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youcodecowboy/disco-grid-sub000/internal/contract"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func patched(t *testing.T, c model.Contract, path string, v any) model.Contract {
	t.Helper()
	out, err := contract.PatchContract(c, path, v)
	require.NoError(t, err)
	return out
}

func paths(fields []model.ContractField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Path
	}
	return out
}

// sixOfFifteen has the two seeded fields plus four answers.
func sixOfFifteen(t *testing.T) model.Contract {
	c := contract.NewAt("k", t0)
	c = patched(t, c, "company.name", "Acme Knits")
	c = patched(t, c, "company.industry", "apparel")
	c = patched(t, c, "operations.shifts", 2)
	c = patched(t, c, "operations.capacity", model.CapacityData{Value: 45000, Unit: "units/month", Prov: model.ProvenanceKeyword, Conf: 3})
	return c
}

func TestDefaultTable(t *testing.T) {
	required := 0
	for _, f := range DefaultTable {
		if f.Required {
			required++
		}
		assert.NotEmpty(t, f.Description, f.Path)
	}
	assert.Equal(t, 15, required)
	assert.Len(t, DefaultTable, 25)
}

func TestAnalyze_PercentOverRequiredOnly(t *testing.T) {
	c := sixOfFifteen(t)
	r := Analyze(c)

	assert.Equal(t, 40, r.PercentComplete)
	assert.False(t, r.OverallComplete)
	assert.Len(t, r.RequiredFields, 15)
	assert.Len(t, r.OptionalFields, 10)
	assert.Len(t, r.MissingRequired, 9)
	assert.NotContains(t, paths(r.MissingRequired), "company.name")
	assert.Contains(t, paths(r.MissingRequired), "company.location")

	// optional answers never move the percentage
	c = patched(t, c, "company.website", "https://acme.example")
	c = patched(t, c, "integrations.systems", []string{"Shopify"})
	assert.Equal(t, 40, Analyze(c).PercentComplete)
}

func TestAnalyze_Rounding(t *testing.T) {
	e := New([]model.FieldRequirement{
		{Path: "company.name", Required: true},
		{Path: "company.industry", Required: true},
		{Path: "company.website", Required: true},
	})
	c := patched(t, contract.NewAt("k", t0), "company.name", "Acme")
	assert.Equal(t, 33, e.Analyze(c).PercentComplete)
	c = patched(t, c, "company.industry", "apparel")
	assert.Equal(t, 67, e.Analyze(c).PercentComplete)
}

func TestAnalyze_NoRequiredFields(t *testing.T) {
	e := New([]model.FieldRequirement{{Path: "company.website"}})
	r := e.Analyze(contract.NewAt("k", t0))
	assert.Equal(t, 100, r.PercentComplete)
	assert.True(t, r.OverallComplete)
	assert.Empty(t, r.MissingRequired)
}

func TestAnalyze_SentinelIsNotAnAnswer(t *testing.T) {
	c := sixOfFifteen(t)
	c = patched(t, c, "company.name", "TBD")
	r := Analyze(c)
	assert.Equal(t, 33, r.PercentComplete)
	assert.Contains(t, paths(r.MissingRequired), "company.name")
}

func TestAnalyze_LowConfidence(t *testing.T) {
	c := sixOfFifteen(t)
	c = patched(t, c, "company.location", model.LocationData{City: "Izmir", Prov: model.ProvenanceLLM, Conf: 1})
	c = patched(t, c, "operations.leadTime", model.LeadTimeData{Hours: 72, Unit: "hours", Prov: model.ProvenanceLLM, Conf: 2})

	r := Analyze(c)
	require.Len(t, r.LowConfidenceFields, 1)
	low := r.LowConfidenceFields[0]
	assert.Equal(t, "company.location", low.Path)
	assert.True(t, low.Satisfied)
	assert.Equal(t, model.ProvenanceLLM, low.Provenance)
	require.NotNil(t, low.Confidence)
	assert.Equal(t, model.ConfidenceInferred, *low.Confidence)

	// low confidence still counts
	assert.Equal(t, 53, r.PercentComplete)
}

func TestAnalyze_SurvivesJSONRoundTrip(t *testing.T) {
	c := sixOfFifteen(t)
	c = patched(t, c, "company.location", model.LocationData{City: "Izmir", Country: "Turkey", Prov: model.ProvenanceLLM, Conf: 1})
	c = contract.CommitFields(c, "company.name", "company.location")

	data, err := json.Marshal(c)
	require.NoError(t, err)
	var back model.Contract
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, Analyze(c), Analyze(back))
	for _, p := range []string{"company.*", "company.name", "operations.*", "analytics.audiences"} {
		assert.Equal(t, ShouldSkipQuestion(c, p), ShouldSkipQuestion(back, p), p)
	}
}

func TestShouldSkipQuestion_Concrete(t *testing.T) {
	c := sixOfFifteen(t)
	assert.True(t, ShouldSkipQuestion(c, "company.name"))
	assert.False(t, ShouldSkipQuestion(c, "company.location"))
	assert.False(t, ShouldSkipQuestion(c, ""))

	// optional and unknown paths are never skippable
	c = patched(t, c, "company.website", "https://acme.example")
	assert.False(t, ShouldSkipQuestion(c, "company.website"))
	assert.False(t, ShouldSkipQuestion(c, "company.motto"))
}

func TestShouldSkipQuestion_Wildcard(t *testing.T) {
	c := sixOfFifteen(t)
	assert.False(t, ShouldSkipQuestion(c, "company.*"))

	c = patched(t, c, "company.location", model.LocationData{City: "Izmir"})
	assert.False(t, ShouldSkipQuestion(c, "company.*"))

	c = patched(t, c, "company.teamSize", model.HeadcountData{Value: 40})
	assert.True(t, ShouldSkipQuestion(c, "company.*"))

	// optional fields under the prefix do not matter
	assert.Empty(t, c.Company.Website)

	// sections with no required fields are not skippable
	assert.False(t, ShouldSkipQuestion(c, "playbooks.*"))
	assert.False(t, ShouldSkipQuestion(c, "nowhere.*"))
}

func TestGenerateGapQuestions(t *testing.T) {
	missing := Analyze(contract.NewAt("k", t0)).MissingRequired
	qs := GenerateGapQuestions(missing)
	require.Len(t, qs, len(missing))
	for i, q := range qs {
		assert.Equal(t, missing[i].Path, q.FieldPath)
		assert.NotEmpty(t, q.Question)
		assert.NotContains(t, q.Question, "Please provide", q.FieldPath)
	}

	qs = GenerateGapQuestions([]model.ContractField{
		{Path: "compliance.certifications", Description: "Certifications held"},
		{Path: "compliance.auditor"},
	})
	assert.Equal(t, "Please provide: Certifications held", qs[0].Question)
	assert.Equal(t, "Please provide: compliance.auditor", qs[1].Question)
	assert.Empty(t, GenerateGapQuestions(nil))
}
