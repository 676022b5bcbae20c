package extract

import (
	"regexp"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/normalize"
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?;\n]+`)
	arrowRe         = regexp.MustCompile(`\s*(?:->|→|=>|>)\s*`)
	thenRe          = regexp.MustCompile(`(?i),?\s*\b(?:and\s+)?then\b\s*`)
	stageLeadRe     = regexp.MustCompile(`(?i)^(?:(?:first|firstly|next|finally|lastly|after that|and|then|we|it|they|the|our|to|(?:process|workflow|flow|steps?)(?:\s+(?:is|goes|are))?(?:\s+from)?)\b[\s,:]*)+`)
)

const maxStageWords = 4

var stageTable = compileTable([]keywordEntry{
	{value: "Design", explicit: []string{"design"}},
	{value: "Cutting", explicit: []string{"cutting"}},
	{value: "Sewing", explicit: []string{"sewing", "stitching"}},
	{value: "Machining", explicit: []string{"machining"}},
	{value: "Welding", explicit: []string{"welding"}},
	{value: "Assembly", explicit: []string{"assembly"}},
	{value: "Painting", explicit: []string{"painting", "coating"}},
	{value: "Finishing", explicit: []string{"finishing"}},
	{value: "Testing", explicit: []string{"testing"}},
	{value: "Inspection", explicit: []string{"inspection", "quality check"}},
	{value: "Packaging", explicit: []string{"packaging", "packing"}},
	{value: "Shipping", explicit: []string{"shipping"}},
})

// workflowStages reads explicit sequences ("A -> B -> C", "A, then B") as
// explicit stages. Without a sequence it falls back to stage keywords.
func workflowStages(text string) []model.Entity {
	var out []model.Entity
	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		var parts []string
		switch {
		case arrowRe.MatchString(sentence):
			parts = arrowRe.Split(sentence, -1)
		case thenRe.MatchString(sentence):
			parts = thenRe.Split(sentence, -1)
		default:
			continue
		}
		var stages []string
		for _, p := range parts {
			if s := cleanStage(p); s != "" {
				stages = append(stages, s)
			}
		}
		if len(stages) < 2 {
			continue
		}
		for _, s := range stages {
			out = append(out, entity("workflow_stage", s, model.ConfidenceExplicit, strings.TrimSpace(sentence)))
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, m := range stageTable.match(text) {
		out = append(out, entity("workflow_stage", m.value, model.ConfidenceImplied, m.raw))
	}
	return out
}

func cleanStage(s string) string {
	s = strings.Trim(strings.TrimSpace(s), ",:")
	s = stageLeadRe.ReplaceAllString(s, "")
	s = strings.Trim(strings.TrimSpace(s), ",:")
	if s == "" || len(strings.Fields(s)) > maxStageWords {
		return ""
	}
	if strings.ToLower(s) != s {
		return s
	}
	return normalize.Capitalize(s)
}

var kpiTable = compileTable([]keywordEntry{
	{value: "on_time_delivery", explicit: []string{"on time delivery", "on-time delivery"}, synonyms: []string{"otd", "delivery performance", "late orders"}},
	{value: "throughput", explicit: []string{"throughput"}, synonyms: []string{"output per day", "units per hour"}},
	{value: "scrap_rate", explicit: []string{"scrap rate"}, synonyms: []string{"scrap", "waste"}},
	{value: "first_pass_yield", explicit: []string{"first pass yield"}, synonyms: []string{"fpy", "yield"}},
	{value: "oee", explicit: []string{"oee", "overall equipment effectiveness"}},
	{value: "cycle_time", explicit: []string{"cycle time"}, synonyms: []string{"cycle times"}},
	{value: "utilization", explicit: []string{"utilization"}, synonyms: []string{"utilisation", "capacity usage"}},
	{value: "defect_rate", explicit: []string{"defect rate"}, synonyms: []string{"defects", "rework"}},
	{value: "inventory_turns", explicit: []string{"inventory turns", "inventory turnover"}},
	{value: "downtime", explicit: []string{"downtime"}, synonyms: []string{"machine stoppages"}},
})

func kpis(text string) []model.Entity {
	return kpiTable.emit("kpi", text)
}
