// Package completeness audits a contract against the field requirement
// table and decides which questions can be skipped.
package completeness

import (
	"math"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/contract"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// Report is a point-in-time completeness audit.
type Report struct {
	OverallComplete     bool                  `json:"overallComplete"`
	PercentComplete     int                   `json:"percentComplete"`
	RequiredFields      []model.ContractField `json:"requiredFields"`
	OptionalFields      []model.ContractField `json:"optionalFields"`
	MissingRequired     []model.ContractField `json:"missingRequired"`
	LowConfidenceFields []model.ContractField `json:"lowConfidenceFields"`
}

// Engine evaluates contracts against one requirement table.
type Engine struct {
	fields *model.FieldRegistry
}

// New creates an Engine over table.
func New(table []model.FieldRequirement) *Engine {
	return &Engine{fields: model.NewFieldRegistry(table)}
}

var defaultEngine = New(DefaultTable)

// Default returns the Engine over DefaultTable.
func Default() *Engine {
	return defaultEngine
}

// Analyze runs the default Engine.
func Analyze(c model.Contract) Report {
	return defaultEngine.Analyze(c)
}

// ShouldSkipQuestion runs the default Engine.
func ShouldSkipQuestion(c model.Contract, mapsTo string) bool {
	return defaultEngine.ShouldSkipQuestion(c, mapsTo)
}

// Table returns the requirement table in order.
func (e *Engine) Table() []model.FieldRequirement {
	return e.fields.Fields
}

// Requirement returns the requirement for path.
func (e *Engine) Requirement(path string) (model.FieldRequirement, bool) {
	f := e.fields.ByPath(path)
	if f == nil {
		return model.FieldRequirement{}, false
	}
	return *f, true
}

// Analyze evaluates every table entry against c. PercentComplete counts
// required fields only. A satisfied field whose inline confidence is below
// implied is reported in LowConfidenceFields; it still counts as satisfied.
func (e *Engine) Analyze(c model.Contract) Report {
	view := contract.NewView(c)
	r := Report{
		RequiredFields:      []model.ContractField{},
		OptionalFields:      []model.ContractField{},
		MissingRequired:     []model.ContractField{},
		LowConfidenceFields: []model.ContractField{},
	}

	satisfiedRequired := 0
	for _, fr := range e.fields.Fields {
		f := evaluate(view, fr)
		if fr.Required {
			r.RequiredFields = append(r.RequiredFields, f)
			if f.Satisfied {
				satisfiedRequired++
			} else {
				r.MissingRequired = append(r.MissingRequired, f)
			}
		} else {
			r.OptionalFields = append(r.OptionalFields, f)
		}
		if f.Satisfied && f.Confidence != nil && *f.Confidence < model.ConfidenceImplied {
			r.LowConfidenceFields = append(r.LowConfidenceFields, f)
		}
	}

	total := len(r.RequiredFields)
	if total == 0 {
		r.PercentComplete = 100
	} else {
		r.PercentComplete = int(math.Round(float64(satisfiedRequired) / float64(total) * 100))
	}
	r.OverallComplete = satisfiedRequired == total
	return r
}

func evaluate(view contract.View, fr model.FieldRequirement) model.ContractField {
	f := model.ContractField{
		Path:        fr.Path,
		Required:    fr.Required,
		Description: fr.Description,
		Satisfied:   view.Satisfied(fr.Path),
	}
	if v, ok := view.Value(fr.Path); ok {
		f.Value = v
	}
	if prov, conf, ok := view.Meta(fr.Path); ok {
		f.Provenance = prov
		f.Confidence = &conf
	}
	return f
}

// ShouldSkipQuestion decides whether a question mapped to mapsTo is already
// answered. A wildcard "section.*" is skippable only when the section has at
// least one required field and all of them are satisfied. A concrete path
// is skippable when it is a required table entry and satisfied. Paths not
// in the table are never skippable.
func (e *Engine) ShouldSkipQuestion(c model.Contract, mapsTo string) bool {
	mapsTo = strings.TrimSpace(mapsTo)
	if mapsTo == "" {
		return false
	}
	view := contract.NewView(c)

	if prefix, ok := strings.CutSuffix(mapsTo, "*"); ok {
		required := e.fields.RequiredUnder(prefix)
		if len(required) == 0 {
			return false
		}
		for _, f := range required {
			if !view.Satisfied(f.Path) {
				return false
			}
		}
		return true
	}

	f := e.fields.ByPath(mapsTo)
	return f != nil && f.Required && view.Satisfied(mapsTo)
}
