package model

// Question is an onboarding question as declared by the UI layer. The core
// reads these fields but never mutates them.
type Question struct {
	ID              string       `json:"id" yaml:"id"`
	Title           string       `json:"title,omitempty" yaml:"title,omitempty"`
	MapsTo          string       `json:"mapsTo,omitempty" yaml:"mapsTo,omitempty"`
	Conditional     *Conditional `json:"conditional,omitempty" yaml:"conditional,omitempty"`
	SkipIfCommitted bool         `json:"skipIfCommitted,omitempty" yaml:"skipIfCommitted,omitempty"`
	Industries      []string     `json:"industries,omitempty" yaml:"industries,omitempty"`
	SubIndustries   []string     `json:"subIndustries,omitempty" yaml:"subIndustries,omitempty"`
}

// Conditional gates a question behind another answer. DependsOn is either a
// question ID or a contract path. ShowIf is a single value or a list of
// accepted values.
type Conditional struct {
	DependsOn string `json:"dependsOn" yaml:"dependsOn"`
	ShowIf    any    `json:"showIf" yaml:"showIf"`
}

// GapQuestion is a generated prompt for an unmet required field.
type GapQuestion struct {
	FieldPath string `json:"fieldPath"`
	Question  string `json:"question"`
	Helper    string `json:"helper"`
}
