// Package flow decides which onboarding questions are shown. Every function
// is pure over (questions, index, contract); there is no cursor state.
package flow

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/completeness"
	"github.com/youcodecowboy/disco-grid-sub000/internal/contract"
	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// Reason explains a visibility decision.
type Reason string

const (
	ReasonVisible             Reason = "visible"
	ReasonIndustryMismatch    Reason = "industry_mismatch"
	ReasonSubIndustryMismatch Reason = "sub_industry_mismatch"
	ReasonDependencyUnmet     Reason = "dependency_unmet"
	ReasonAlreadyAnswered     Reason = "already_answered"
)

// Decision is the outcome for one question.
type Decision struct {
	Visible bool   `json:"visible"`
	Reason  Reason `json:"reason"`
}

// Step pairs a question with its decision.
type Step struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Decision
}

// state is one contract snapshot shared across a scan.
type state struct {
	c    model.Contract
	view contract.View
	byID map[string]*model.Question
}

func newState(questions []model.Question, c model.Contract) *state {
	s := &state{c: c, view: contract.NewView(c), byID: make(map[string]*model.Question, len(questions))}
	for i := range questions {
		s.byID[questions[i].ID] = &questions[i]
	}
	return s
}

// Evaluate decides whether q is shown. The checks run in order and the
// first failing one names the reason: industry, sub-industry, dependency,
// then the opt-in already-answered skip.
func Evaluate(q model.Question, questions []model.Question, c model.Contract) Decision {
	return newState(questions, c).evaluate(q)
}

// IsVisible is Evaluate reduced to a bool.
func IsVisible(q model.Question, questions []model.Question, c model.Contract) bool {
	return Evaluate(q, questions, c).Visible
}

func (s *state) evaluate(q model.Question) Decision {
	if len(q.Industries) > 0 && !containsFold(q.Industries, s.c.Company.Industry) {
		return Decision{Reason: ReasonIndustryMismatch}
	}
	// an unset sub-industry never hides a question
	if len(q.SubIndustries) > 0 && strings.TrimSpace(s.c.Company.SubIndustry) != "" &&
		!containsFold(q.SubIndustries, s.c.Company.SubIndustry) {
		return Decision{Reason: ReasonSubIndustryMismatch}
	}
	if q.Conditional != nil && q.Conditional.DependsOn != "" && !s.dependencyMet(q.Conditional) {
		return Decision{Reason: ReasonDependencyUnmet}
	}
	if q.SkipIfCommitted && s.answered(q.MapsTo) {
		return Decision{Reason: ReasonAlreadyAnswered}
	}
	return Decision{Visible: true, Reason: ReasonVisible}
}

// dependencyMet resolves DependsOn as a question id first, then as a
// contract path. A nil ShowIf only requires the dependency to be satisfied.
func (s *state) dependencyMet(cond *model.Conditional) bool {
	path := cond.DependsOn
	if dep, ok := s.byID[cond.DependsOn]; ok {
		path = dep.MapsTo
	}
	if path == "" || strings.HasSuffix(path, "*") {
		return false
	}
	if cond.ShowIf == nil {
		return s.view.Satisfied(path)
	}
	got, ok := s.view.Value(path)
	if !ok {
		return false
	}
	want := generic(cond.ShowIf)
	if list, isList := want.([]any); isList {
		for _, w := range list {
			if matches(got, w) {
				return true
			}
		}
		return false
	}
	return matches(got, want)
}

// answered reports whether mapsTo is committed and holds a real answer. A
// "section.*" path is committed when anything under the section is, and
// answered when every required field under it is satisfied.
func (s *state) answered(mapsTo string) bool {
	if mapsTo == "" {
		return false
	}
	if prefix, ok := strings.CutSuffix(mapsTo, "*"); ok {
		committed := false
		for _, p := range s.c.Metadata.CommittedFields {
			if p == mapsTo || strings.HasPrefix(p, prefix) {
				committed = true
				break
			}
		}
		return committed && completeness.ShouldSkipQuestion(s.c, mapsTo)
	}
	return contract.IsFieldCommitted(s.c, mapsTo) && s.view.Satisfied(mapsTo)
}

// matches is strict equality on the JSON form. Value objects such as
// {"value": 2, "unit": ...} also match on their value.
func matches(got, want any) bool {
	if reflect.DeepEqual(got, want) {
		return true
	}
	if m, ok := got.(map[string]any); ok {
		if inner, has := m["value"]; has {
			return reflect.DeepEqual(inner, want)
		}
	}
	return false
}

// generic brings a declared ShowIf into the same shape as contract values.
func generic(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
