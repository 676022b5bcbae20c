package model

import "time"

// ContractVersion is the literal version stamped on every contract.
const ContractVersion = "1.0.0"

// Contract is the aggregate onboarding record (the "Generation Contract").
// It is a plain value: helpers in internal/contract return updated copies
// instead of mutating it in place.
type Contract struct {
	Version      string              `json:"version"`
	Company      CompanySection      `json:"company"`
	Operations   OperationsSection   `json:"operations"`
	Items        ItemsSection        `json:"items"`
	Workflows    WorkflowsSection    `json:"workflows"`
	Sites        SitesSection        `json:"sites"`
	Teams        TeamsSection        `json:"teams"`
	Integrations IntegrationsSection `json:"integrations"`
	Analytics    AnalyticsSection    `json:"analytics"`
	Playbooks    PlaybooksSection    `json:"playbooks"`
	Metadata     ContractMetadata    `json:"metadata"`
}

// CompanySection describes the business itself.
type CompanySection struct {
	Name        string         `json:"name,omitempty"`
	Industry    string         `json:"industry,omitempty"`
	SubIndustry string         `json:"subIndustry,omitempty"`
	Description string         `json:"description,omitempty"`
	Website     string         `json:"website,omitempty"`
	Location    *LocationData  `json:"location,omitempty"`
	TeamSize    *HeadcountData `json:"teamSize,omitempty"`
}

// LocationData is a place populated from a widget or from free text.
type LocationData struct {
	City     string     `json:"city,omitempty"`
	State    string     `json:"state,omitempty"`
	Country  string     `json:"country,omitempty"`
	Timezone string     `json:"timezone,omitempty"`
	Prov     Provenance `json:"prov,omitempty"`
	Conf     Confidence `json:"conf,omitempty"`
}

// HeadcountData is a people count with inline provenance.
type HeadcountData struct {
	Value int        `json:"value,omitempty"`
	Prov  Provenance `json:"prov,omitempty"`
	Conf  Confidence `json:"conf,omitempty"`
}

// OperationsSection describes how the business produces.
type OperationsSection struct {
	Model          string        `json:"model,omitempty"` // MTO, MTS, ETO, Hybrid
	Capacity       *CapacityData `json:"capacity,omitempty"`
	Shifts         int           `json:"shifts,omitempty"`
	LeadTime       *LeadTimeData `json:"leadTime,omitempty"`
	PlanningMethod string        `json:"planningMethod,omitempty"`
	WorkingDays    []string      `json:"workingDays,omitempty"`
}

// CapacityData is monthly output volume.
type CapacityData struct {
	Value float64    `json:"value,omitempty"`
	Unit  string     `json:"unit,omitempty"`
	Prov  Provenance `json:"prov,omitempty"`
	Conf  Confidence `json:"conf,omitempty"`
}

// LeadTimeData is a lead time expressed in hours.
type LeadTimeData struct {
	Hours float64    `json:"value,omitempty"`
	Unit  string     `json:"unit,omitempty"`
	Prov  Provenance `json:"prov,omitempty"`
	Conf  Confidence `json:"conf,omitempty"`
}

// ItemsSection describes what is tracked.
type ItemsSection struct {
	Attributes    []ItemAttribute `json:"attributes"`
	Categories    []string        `json:"categories,omitempty"`
	TrackingLevel string          `json:"trackingLevel,omitempty"` // serial, lot, none
}

// ItemAttribute is one column of the item record.
type ItemAttribute struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// WorkflowsSection describes the production flow.
type WorkflowsSection struct {
	Stages     []WorkflowStage `json:"stages,omitempty"`
	LimboZones []string        `json:"limboZones,omitempty"`
}

// WorkflowStage is one step of a workflow.
type WorkflowStage struct {
	Name  string     `json:"name"`
	Order int        `json:"order"`
	Prov  Provenance `json:"prov,omitempty"`
	Conf  Confidence `json:"conf,omitempty"`
}

// SitesSection lists physical locations.
type SitesSection struct {
	Locations []Site `json:"locations,omitempty"`
}

// Site is one facility.
type Site struct {
	Name     string        `json:"name"`
	Type     string        `json:"type,omitempty"`
	Location *LocationData `json:"location,omitempty"`
}

// TeamsSection lists departments.
type TeamsSection struct {
	Departments []Department `json:"departments,omitempty"`
}

// Department is one team.
type Department struct {
	Name string     `json:"name"`
	Size int        `json:"size,omitempty"`
	Prov Provenance `json:"prov,omitempty"`
	Conf Confidence `json:"conf,omitempty"`
}

// IntegrationsSection lists external systems.
type IntegrationsSection struct {
	Systems []string `json:"systems,omitempty"`
}

// AnalyticsSection lists reporting needs.
type AnalyticsSection struct {
	Audiences        []string `json:"audiences"`
	KPIs             []string `json:"kpis,omitempty"`
	ReportingCadence string   `json:"reportingCadence,omitempty"`
}

// PlaybooksSection lists automation rules.
type PlaybooksSection struct {
	List []Playbook `json:"list,omitempty"`
}

// Playbook is a trigger and its actions.
type Playbook struct {
	Name    string   `json:"name"`
	Trigger string   `json:"trigger"`
	Actions []string `json:"actions,omitempty"`
}

// ContractMetadata holds bookkeeping for the onboarding session.
type ContractMetadata struct {
	IdempotencyKey    string     `json:"idempotencyKey"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
	CommittedFields   []string   `json:"committedFields"`
	ExtractedEntities []Entity   `json:"extractedEntities,omitempty"`
}
