package registry

// ValueKind is the broad shape of an entity value.
type ValueKind string

const (
	KindString   ValueKind = "string"
	KindNumber   ValueKind = "number"
	KindInteger  ValueKind = "integer"
	KindEnum     ValueKind = "enum"
	KindLocation ValueKind = "location"
)

// EntityType describes one entity type name and the values it accepts.
type EntityType struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Topic       string    `json:"topic" yaml:"topic"`
	Kind        ValueKind `json:"kind" yaml:"kind"`
	Enum        []string  `json:"enum,omitempty" yaml:"enum,omitempty"`
	// List types are emitted as one entity per element.
	List bool `json:"list,omitempty" yaml:"list,omitempty"`
	// Synonyms maps lowercase variants to a canonical enum value.
	Synonyms map[string]string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	// Schema overrides the JSON Schema derived from Kind and Enum.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Numeric reports whether values of this type are numbers.
func (t EntityType) Numeric() bool {
	return t.Kind == KindNumber || t.Kind == KindInteger
}

// Context is a named subset of entity types relevant to one onboarding section.
type Context struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Types       []string `json:"types" yaml:"types"`
}

var builtinTypes = []EntityType{
	{Name: "company_name", Topic: "Company", Kind: KindString, Description: "legal or trading name of the business"},
	{Name: "industry", Topic: "Company", Kind: KindEnum, Description: "primary industry",
		Enum: []string{"apparel", "furniture", "electronics", "automotive", "aerospace", "food_beverage", "construction", "defense", "metal_fabrication", "chemicals", "manufacturing", "other"},
		Synonyms: map[string]string{
			"garments": "apparel", "clothing": "apparel", "textiles": "apparel", "fashion": "apparel",
			"food": "food_beverage", "food and beverage": "food_beverage", "beverage": "food_beverage",
			"metal": "metal_fabrication", "fabrication": "metal_fabrication", "machining": "metal_fabrication",
			"defence": "defense", "auto": "automotive",
		}},
	{Name: "sub_industry", Topic: "Company", Kind: KindString, Description: "niche within the industry, e.g. knitwear or cabinetry"},
	{Name: "location", Topic: "Company", Kind: KindLocation, Description: "headquarters or main site as {city, state, country}"},
	{Name: "team_size", Topic: "Company", Kind: KindInteger, Description: "total headcount"},
	{Name: "product", Topic: "Company", Kind: KindString, List: true, Description: "a product the company makes"},
	{Name: "ops_model", Topic: "Operations", Kind: KindEnum, Description: "operating model",
		Enum: []string{"MTO", "MTS", "ETO", "Hybrid"},
		Synonyms: map[string]string{
			"make to order": "MTO", "make-to-order": "MTO", "made to order": "MTO", "build to order": "MTO",
			"custom": "MTO", "custom orders": "MTO", "bespoke": "MTO",
			"make to stock": "MTS", "make-to-stock": "MTS", "stock": "MTS", "inventory": "MTS",
			"engineer to order": "ETO", "engineer-to-order": "ETO", "engineered to order": "ETO",
			"mixed": "Hybrid", "both": "Hybrid", "hybrid": "Hybrid",
		}},
	{Name: "capacity", Topic: "Operations", Kind: KindNumber, Description: "units produced per month"},
	{Name: "shifts", Topic: "Operations", Kind: KindInteger, Description: "shifts per working day"},
	{Name: "lead_time", Topic: "Operations", Kind: KindNumber, Description: "typical order lead time in hours"},
	{Name: "planning_method", Topic: "Operations", Kind: KindEnum, Description: "how production is planned today",
		Enum: []string{"ManualBoard", "Spreadsheet", "ERP", "MES", "None"},
		Synonyms: map[string]string{
			"whiteboard": "ManualBoard", "board": "ManualBoard", "manual": "ManualBoard", "paper": "ManualBoard", "manual board": "ManualBoard",
			"excel": "Spreadsheet", "spreadsheets": "Spreadsheet", "google sheets": "Spreadsheet", "sheets": "Spreadsheet",
			"sap": "ERP", "netsuite": "ERP", "odoo": "ERP", "erp system": "ERP",
			"mes system": "MES", "none": "None", "nothing": "None", "no system": "None",
		}},
	{Name: "working_days", Topic: "Operations", Kind: KindString, List: true, Description: "a working weekday"},
	{Name: "tracking_level", Topic: "Items", Kind: KindEnum, Description: "granularity of item tracking",
		Enum: []string{"serial", "lot", "item", "none"},
		Synonyms: map[string]string{
			"serial number": "serial", "serialized": "serial", "unit": "serial", "per unit": "serial",
			"batch": "lot", "batches": "lot", "lot number": "lot", "sku": "item", "product": "item",
			"no tracking": "none",
		}},
	{Name: "item_attribute", Topic: "Items", Kind: KindString, List: true, Description: "an attribute tracked per item, e.g. size or color"},
	{Name: "department", Topic: "Teams", Kind: KindString, List: true, Description: "a department or team"},
	{Name: "workflow_stage", Topic: "Workflows", Kind: KindString, List: true, Description: "one production stage, in order"},
	{Name: "stages_list", Topic: "Workflows", Kind: KindString, List: true, Description: "one stage of a described sequence"},
	{Name: "limbo_zone", Topic: "Workflows", Kind: KindString, List: true, Description: "a place where work waits between stages"},
	{Name: "kpi", Topic: "Analytics", Kind: KindEnum, List: true, Description: "a tracked metric",
		Enum: []string{"on_time_delivery", "throughput", "scrap_rate", "first_pass_yield", "oee", "cycle_time", "utilization", "defect_rate", "inventory_turns", "downtime"},
		Synonyms: map[string]string{
			"otd": "on_time_delivery", "on-time delivery": "on_time_delivery", "on time delivery": "on_time_delivery",
			"scrap": "scrap_rate", "waste": "scrap_rate", "fpy": "first_pass_yield", "yield": "first_pass_yield",
			"defects": "defect_rate", "rework": "defect_rate", "cycle time": "cycle_time",
		}},
	{Name: "reporting_cadence", Topic: "Analytics", Kind: KindEnum, Description: "how often reports are reviewed",
		Enum: []string{"daily", "weekly", "monthly", "quarterly"}},
	{Name: "audience", Topic: "Analytics", Kind: KindString, List: true, Description: "a role that reads reports"},
	{Name: "integration", Topic: "Integrations", Kind: KindString, List: true, Description: "an external system in use, e.g. Shopify or QuickBooks"},
}

var builtinContexts = []Context{
	{Name: "company_profile", Description: "who the company is", Types: []string{"company_name", "industry", "sub_industry", "location", "team_size", "product"}},
	{Name: "operations", Description: "how production runs", Types: []string{"ops_model", "capacity", "shifts", "lead_time", "planning_method", "working_days"}},
	{Name: "items", Description: "what is tracked", Types: []string{"product", "item_attribute", "tracking_level"}},
	{Name: "workflows", Description: "how work flows through the shop", Types: []string{"workflow_stage", "stages_list", "limbo_zone", "lead_time"}},
	{Name: "teams", Description: "who does the work", Types: []string{"department", "team_size"}},
	{Name: "analytics", Description: "what is measured", Types: []string{"kpi", "reporting_cadence", "audience"}},
	{Name: "integrations", Description: "systems in use", Types: []string{"integration", "planning_method"}},
	{Name: "general", Description: "everything", Types: []string{
		"company_name", "industry", "sub_industry", "location", "team_size", "product",
		"ops_model", "capacity", "shifts", "lead_time", "planning_method", "working_days",
		"item_attribute", "tracking_level", "department", "workflow_stage", "limbo_zone",
		"kpi", "reporting_cadence", "audience", "integration",
	}},
}
