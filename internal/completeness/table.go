package completeness

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// DefaultTable is the built-in requirement table: 15 required and 10
// optional contract paths.
var DefaultTable = []model.FieldRequirement{
	{Path: "company.name", Required: true, Description: "Company name"},
	{Path: "company.industry", Required: true, Description: "Industry"},
	{Path: "company.location", Required: true, Description: "Primary location"},
	{Path: "company.teamSize", Required: true, Description: "Team size"},
	{Path: "operations.model", Required: true, Description: "Operating model (MTO, MTS, ETO)"},
	{Path: "operations.capacity", Required: true, Description: "Monthly production capacity"},
	{Path: "operations.shifts", Required: true, Description: "Shifts per day"},
	{Path: "operations.leadTime", Required: true, Description: "Typical lead time"},
	{Path: "operations.planningMethod", Required: true, Description: "Current planning method"},
	{Path: "items.attributes", Required: true, Description: "Tracked item attributes"},
	{Path: "items.trackingLevel", Required: true, Description: "Item tracking level"},
	{Path: "workflows.stages", Required: true, Description: "Workflow stages"},
	{Path: "teams.departments", Required: true, Description: "Departments"},
	{Path: "analytics.kpis", Required: true, Description: "Key metrics"},
	{Path: "analytics.audiences", Required: true, Description: "Report audiences"},

	{Path: "company.subIndustry", Description: "Sub-industry"},
	{Path: "company.description", Description: "Business description"},
	{Path: "company.website", Description: "Website"},
	{Path: "operations.workingDays", Description: "Working days"},
	{Path: "items.categories", Description: "Product categories"},
	{Path: "workflows.limboZones", Description: "Waiting areas between stages"},
	{Path: "sites.locations", Description: "Additional sites"},
	{Path: "integrations.systems", Description: "Connected systems"},
	{Path: "analytics.reportingCadence", Description: "Reporting cadence"},
	{Path: "playbooks.list", Description: "Automation playbooks"},
}

type tableFile struct {
	Fields []model.FieldRequirement `yaml:"fields"`
}

// LoadTable reads a requirement table from a YAML file of the form
// "fields: [{path, required, description}]".
func LoadTable(path string) ([]model.FieldRequirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "completeness: read table %s", path)
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "completeness: parse table %s", path)
	}
	seen := make(map[string]bool, len(f.Fields))
	for i, fr := range f.Fields {
		if fr.Path == "" {
			return nil, eris.Errorf("completeness: field %d has no path", i)
		}
		if seen[fr.Path] {
			return nil, eris.Errorf("completeness: duplicate path %q", fr.Path)
		}
		seen[fr.Path] = true
	}
	if len(f.Fields) == 0 {
		return nil, eris.Errorf("completeness: table %s declares no fields", path)
	}
	return f.Fields, nil
}
