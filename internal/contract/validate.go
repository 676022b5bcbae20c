package contract

import (
	"fmt"
	"slices"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
)

// ValidationError is one problem found in a contract.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// enumFields checks contract values against the registered entity types.
var enumFields = []struct {
	path string
	typ  string
	get  func(model.Contract) []string
}{
	{"company.industry", "industry", func(c model.Contract) []string { return nonEmpty(c.Company.Industry) }},
	{"operations.model", "ops_model", func(c model.Contract) []string { return nonEmpty(c.Operations.Model) }},
	{"operations.planningMethod", "planning_method", func(c model.Contract) []string { return nonEmpty(c.Operations.PlanningMethod) }},
	{"items.trackingLevel", "tracking_level", func(c model.Contract) []string { return nonEmpty(c.Items.TrackingLevel) }},
	{"analytics.reportingCadence", "reporting_cadence", func(c model.Contract) []string { return nonEmpty(c.Analytics.ReportingCadence) }},
	{"analytics.kpis", "kpi", func(c model.Contract) []string { return c.Analytics.KPIs }},
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// Validate checks c against the contract shape and the default registry,
// returning every problem found. An empty result means c is valid.
func Validate(c model.Contract) []ValidationError {
	return ValidateWith(c, registry.Default())
}

// ValidateWith is Validate against a specific registry.
func ValidateWith(c model.Contract, reg *registry.Registry) []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Version != model.ContractVersion {
		add("version", "must be %q, got %q", model.ContractVersion, c.Version)
	}
	if c.Metadata.IdempotencyKey == "" {
		add("metadata.idempotencyKey", "is required")
	}
	if !c.Metadata.UpdatedAt.IsZero() && c.Metadata.UpdatedAt.Before(c.Metadata.CreatedAt) {
		add("metadata.updatedAt", "is before createdAt")
	}
	if at := c.Metadata.CompletedAt; at != nil && at.Before(c.Metadata.CreatedAt) {
		add("metadata.completedAt", "is before createdAt")
	}
	seen := map[string]bool{}
	for _, p := range c.Metadata.CommittedFields {
		if seen[p] {
			add("metadata.committedFields", "duplicate path %q", p)
		}
		seen[p] = true
	}

	for _, s := range SeedAttributes {
		if !slices.ContainsFunc(c.Items.Attributes, func(a model.ItemAttribute) bool { return a.Key == s.Key }) {
			add("items.attributes", "missing seed attribute %q", s.Key)
		}
	}
	keys := map[string]bool{}
	for i, a := range c.Items.Attributes {
		if a.Key == "" {
			add(fmt.Sprintf("items.attributes.%d.key", i), "is required")
		} else if keys[a.Key] {
			add(fmt.Sprintf("items.attributes.%d.key", i), "duplicate key %q", a.Key)
		}
		keys[a.Key] = true
	}

	if reg != nil {
		for _, f := range enumFields {
			for _, v := range f.get(c) {
				if err := reg.Validate(f.typ, v); err != nil {
					add(f.path, "%q is not a valid %s", v, f.typ)
				}
			}
		}
	}

	if c.Operations.Shifts < 0 || c.Operations.Shifts > 4 {
		add("operations.shifts", "must be between 0 and 4, got %d", c.Operations.Shifts)
	}
	if cp := c.Operations.Capacity; cp != nil {
		if cp.Value < 0 {
			add("operations.capacity.value", "must not be negative")
		}
		checkMeta(add, "operations.capacity", cp.Prov, cp.Conf)
	}
	if lt := c.Operations.LeadTime; lt != nil {
		if lt.Hours < 0 {
			add("operations.leadTime.value", "must not be negative")
		}
		checkMeta(add, "operations.leadTime", lt.Prov, lt.Conf)
	}
	if ts := c.Company.TeamSize; ts != nil {
		if ts.Value < 0 || ts.Value >= 100000 {
			add("company.teamSize.value", "must be in [0, 100000), got %d", ts.Value)
		}
		checkMeta(add, "company.teamSize", ts.Prov, ts.Conf)
	}
	if loc := c.Company.Location; loc != nil {
		if loc.City == "" {
			add("company.location.city", "is required when a location is set")
		}
		checkMeta(add, "company.location", loc.Prov, loc.Conf)
	}

	orders := map[int]bool{}
	for i, st := range c.Workflows.Stages {
		field := fmt.Sprintf("workflows.stages.%d", i)
		if st.Name == "" {
			add(field+".name", "is required")
		}
		if st.Order < 1 {
			add(field+".order", "must be positive, got %d", st.Order)
		} else if orders[st.Order] {
			add(field+".order", "duplicate order %d", st.Order)
		}
		orders[st.Order] = true
		checkMeta(add, field, st.Prov, st.Conf)
	}
	for i, d := range c.Teams.Departments {
		field := fmt.Sprintf("teams.departments.%d", i)
		if d.Name == "" {
			add(field+".name", "is required")
		}
		checkMeta(add, field, d.Prov, d.Conf)
	}
	for i, e := range c.Metadata.ExtractedEntities {
		field := fmt.Sprintf("metadata.extractedEntities.%d", i)
		if e.Type == "" {
			add(field+".type", "is required")
		}
		checkMeta(add, field, e.Provenance, e.Confidence)
	}
	return errs
}

func checkMeta(add func(string, string, ...any), field string, p model.Provenance, c model.Confidence) {
	if p != "" && !p.Valid() {
		add(field+".prov", "unknown provenance %q", p)
	}
	if c < model.ConfidenceUnknown || c > model.ConfidenceExplicit {
		add(field+".conf", "must be between 0 and 3, got %d", c)
	}
}
