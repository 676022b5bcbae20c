package prompt

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
)

type exampleEntity struct {
	Type       string `json:"type"`
	Value      any    `json:"value"`
	Confidence int    `json:"confidence"`
	RawText    string `json:"rawText"`
}

type example struct {
	input    string
	entities []exampleEntity
}

const minExamples = 2

var examples = []example{
	{
		input: "We're a 40-person apparel shop in Izmir, Turkey doing mostly custom orders, about 2,000 units a month.",
		entities: []exampleEntity{
			{"team_size", 40, 3, "40-person"},
			{"industry", "apparel", 3, "apparel shop"},
			{"location", map[string]string{"city": "Izmir", "country": "Turkey"}, 3, "in Izmir, Turkey"},
			{"ops_model", "MTO", 2, "mostly custom orders"},
			{"capacity", 2000, 3, "about 2,000 units a month"},
		},
	},
	{
		input: "Jobs go cutting, then sewing, then QC. Lead time is usually 90 minutes and finished bags wait on the packing shelf.",
		entities: []exampleEntity{
			{"workflow_stage", "Cutting", 3, "cutting"},
			{"workflow_stage", "Sewing", 3, "then sewing"},
			{"workflow_stage", "Quality Check", 3, "then QC"},
			{"lead_time", 1.5, 3, "Lead time is usually 90 minutes"},
			{"limbo_zone", "Packing shelf", 2, "wait on the packing shelf"},
		},
	},
	{
		input: "Production and QC look at scrap and on-time delivery every week. We plan on a whiteboard and invoice in QuickBooks.",
		entities: []exampleEntity{
			{"department", "Production", 3, "Production"},
			{"department", "Quality", 2, "QC"},
			{"kpi", "scrap_rate", 2, "scrap"},
			{"kpi", "on_time_delivery", 3, "on-time delivery"},
			{"reporting_cadence", "weekly", 3, "every week"},
			{"planning_method", "ManualBoard", 2, "plan on a whiteboard"},
			{"integration", "QuickBooks", 3, "invoice in QuickBooks"},
		},
	},
}

// writeExamples renders worked examples restricted to the context's types.
// When fewer than two examples overlap the context the unfiltered set is
// shown instead.
func writeExamples(sb *strings.Builder, types []registry.EntityType) {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t.Name] = true
	}

	var picked []example
	for _, ex := range examples {
		var kept []exampleEntity
		for _, e := range ex.entities {
			if allowed[e.Type] {
				kept = append(kept, e)
			}
		}
		if len(kept) > 0 {
			picked = append(picked, example{input: ex.input, entities: kept})
		}
	}
	filtered := len(picked) >= minExamples
	if !filtered {
		picked = examples
	}

	sb.WriteString("\nExamples:\n")
	if !filtered {
		sb.WriteString("(These examples show general types; emit only the entity types listed above.)\n")
	}
	for i, ex := range picked {
		out, _ := json.Marshal(struct {
			Entities []exampleEntity `json:"entities"`
		}{ex.entities})
		sb.WriteString("\nInput " + strconv.Itoa(i+1) + ": " + ex.input + "\n")
		sb.WriteString("Output " + strconv.Itoa(i+1) + ": " + string(out) + "\n")
	}
}
