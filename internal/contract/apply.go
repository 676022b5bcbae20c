package contract

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/normalize"
)

// Skip is an entity ApplyEntities did not write, with the reason.
type Skip struct {
	Entity model.Entity `json:"entity"`
	Reason string       `json:"reason"`
}

// Skip reasons.
const (
	SkipUnmapped  = "unmapped"
	SkipCommitted = "committed"
	SkipOutranked = "outranked"
	SkipBadValue  = "bad_value"
)

// EntityPaths maps each entity type to the contract path it fills.
var EntityPaths = map[string]string{
	"company_name":      "company.name",
	"industry":          "company.industry",
	"sub_industry":      "company.subIndustry",
	"location":          "company.location",
	"team_size":         "company.teamSize",
	"product":           "items.categories",
	"ops_model":         "operations.model",
	"capacity":          "operations.capacity",
	"shifts":            "operations.shifts",
	"lead_time":         "operations.leadTime",
	"planning_method":   "operations.planningMethod",
	"working_days":      "operations.workingDays",
	"tracking_level":    "items.trackingLevel",
	"item_attribute":    "items.attributes",
	"department":        "teams.departments",
	"workflow_stage":    "workflows.stages",
	"stages_list":       "workflows.stages",
	"limbo_zone":        "workflows.limboZones",
	"kpi":               "analytics.kpis",
	"reporting_cadence": "analytics.reportingCadence",
	"audience":          "analytics.audiences",
	"integration":       "integrations.systems",
}

// ApplyEntities writes confirmed entities into c through PatchContract, in
// order. Committed paths are never overwritten, and a provenance-bearing
// value is only replaced by an entity whose provenance does not rank below
// it. List-typed entities append unique values. All entities are also
// recorded in metadata.extractedEntities.
func ApplyEntities(c model.Contract, entities []model.Entity) (model.Contract, []Skip, error) {
	var skipped []Skip
	for _, e := range entities {
		path, ok := EntityPaths[e.Type]
		if !ok {
			skipped = append(skipped, Skip{e, SkipUnmapped})
			continue
		}
		if IsFieldCommitted(c, path) {
			skipped = append(skipped, Skip{e, SkipCommitted})
			continue
		}
		if !listTypes[e.Type] {
			if prov, _, has := FieldMeta(c, path); has && IsFieldSatisfied(c, path) && prov.Outranks(e.Provenance) {
				skipped = append(skipped, Skip{e, SkipOutranked})
				continue
			}
		}

		value, ok := entityValue(c, e)
		if !ok {
			skipped = append(skipped, Skip{e, SkipBadValue})
			continue
		}
		next, err := PatchContract(c, path, value)
		if err != nil {
			return c, skipped, err
		}
		c = next
	}

	c = clone(c)
	c.Metadata.ExtractedEntities = model.DedupeEntities(append(c.Metadata.ExtractedEntities, entities...))
	return c, skipped, nil
}

var listTypes = map[string]bool{
	"product": true, "working_days": true, "limbo_zone": true, "kpi": true,
	"audience": true, "integration": true, "item_attribute": true,
	"department": true, "workflow_stage": true, "stages_list": true,
}

func entityValue(c model.Contract, e model.Entity) (any, bool) {
	if v, isList := listValue(c, e); isList {
		return v, v != nil
	}

	switch e.Type {
	case "location":
		loc, ok := locationValue(e)
		return loc, ok
	case "team_size":
		n, ok := number(e.Value)
		if !ok || n < 1 {
			return nil, false
		}
		return model.HeadcountData{Value: int(math.Round(n)), Prov: e.Provenance, Conf: e.Confidence}, true
	case "capacity":
		n, ok := number(e.Value)
		if !ok || n <= 0 {
			return nil, false
		}
		return model.CapacityData{Value: n, Unit: "units/month", Prov: e.Provenance, Conf: e.Confidence}, true
	case "lead_time":
		n, ok := normalize.Hours(e.Value)
		if !ok || n <= 0 {
			return nil, false
		}
		return model.LeadTimeData{Hours: n, Unit: "hours", Prov: e.Provenance, Conf: e.Confidence}, true
	case "shifts":
		n, ok := number(e.Value)
		if !ok || n < 1 {
			return nil, false
		}
		return int(math.Round(n)), true
	default:
		s := text(e.Value)
		return s, s != ""
	}
}

// listValue returns the full updated list for list-typed entities. The
// bool is false for scalar types. A nil value with true means the entity
// carried nothing usable.
func listValue(c model.Contract, e model.Entity) (any, bool) {
	s := text(e.Value)
	switch e.Type {
	case "product":
		return appendUnique(c.Items.Categories, s), true
	case "working_days":
		return appendUnique(c.Operations.WorkingDays, s), true
	case "limbo_zone":
		return appendUnique(c.Workflows.LimboZones, s), true
	case "kpi":
		return appendUnique(c.Analytics.KPIs, s), true
	case "audience":
		return appendUnique(c.Analytics.Audiences, s), true
	case "integration":
		return appendUnique(c.Integrations.Systems, s), true
	case "item_attribute":
		if s == "" {
			return nil, true
		}
		key := attributeKey(s)
		attrs := slices.Clone(c.Items.Attributes)
		if !slices.ContainsFunc(attrs, func(a model.ItemAttribute) bool { return a.Key == key }) {
			attrs = append(attrs, model.ItemAttribute{Key: key, Label: normalize.Capitalize(s), Type: "text"})
		}
		return attrs, true
	case "department":
		if s == "" {
			return nil, true
		}
		deps := slices.Clone(c.Teams.Departments)
		if !slices.ContainsFunc(deps, func(d model.Department) bool { return strings.EqualFold(d.Name, s) }) {
			deps = append(deps, model.Department{Name: s, Prov: e.Provenance, Conf: e.Confidence})
		}
		return deps, true
	case "workflow_stage", "stages_list":
		if s == "" {
			return nil, true
		}
		stages := slices.Clone(c.Workflows.Stages)
		if !slices.ContainsFunc(stages, func(st model.WorkflowStage) bool { return strings.EqualFold(st.Name, s) }) {
			stages = append(stages, model.WorkflowStage{Name: s, Order: len(stages) + 1, Prov: e.Provenance, Conf: e.Confidence})
		}
		return stages, true
	}
	return nil, false
}

func appendUnique(list []string, s string) any {
	if s == "" {
		return nil
	}
	out := slices.Clone(list)
	if !slices.ContainsFunc(out, func(x string) bool { return strings.EqualFold(x, s) }) {
		out = append(out, s)
	}
	return out
}

func locationValue(e model.Entity) (model.LocationData, bool) {
	loc := model.LocationData{Prov: e.Provenance, Conf: e.Confidence}
	switch v := e.Value.(type) {
	case map[string]any:
		loc.City = text(v["city"])
		loc.State = text(v["state"])
		loc.Country = text(v["country"])
	case string:
		loc.City = strings.TrimSpace(v)
	}
	if loc.City == "" {
		return loc, false
	}
	if info, ok := normalize.LookupCity(loc.City); ok {
		if loc.Country == "" {
			loc.Country = info.Country
		}
		loc.Timezone = info.Timezone
	}
	return loc, true
}

func attributeKey(label string) string {
	return strings.ReplaceAll(normalize.NormalizeText(label), " ", "_")
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		return normalize.NormalizeCapacity(x)
	}
	return 0, false
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
