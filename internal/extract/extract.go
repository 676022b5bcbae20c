// Package extract is the zero-cost keyword and pattern pass over free text.
// Every sub-extractor is independent, deterministic and free of I/O.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/normalize"
)

// Extractor runs the keyword sub-extractors over raw text.
type Extractor struct {
	cities *normalize.CityTable
}

// New creates an Extractor backed by the given city table. A nil table falls
// back to the built-in one.
func New(cities *normalize.CityTable) *Extractor {
	if cities == nil {
		cities = normalize.DefaultCityTable()
	}
	return &Extractor{cities: cities}
}

var defaultExtractor = New(nil)

// Entities runs the default Extractor.
func Entities(text string) []model.Entity {
	return defaultExtractor.Entities(text)
}

type subExtractor struct {
	name string
	fn   func(text string) []model.Entity
}

func (x *Extractor) subExtractors() []subExtractor {
	return []subExtractor{
		{"location", x.locations},
		{"capacity", capacities},
		{"industry", industries},
		{"product", products},
		{"operations", operations},
		{"team_size", teamSizes},
		{"department", departments},
		{"workflow_stage", workflowStages},
		{"kpi", kpis},
	}
}

// Entities returns the deduplicated keyword entities for text, in sub-extractor
// order. Blank input yields nil.
func (x *Extractor) Entities(text string) []model.Entity {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []model.Entity
	for _, sub := range x.subExtractors() {
		found := safeRun(sub, text)
		for i := range found {
			found[i].Provenance = model.ProvenanceKeyword
		}
		out = append(out, found...)
	}
	return model.DedupeEntities(out)
}

// safeRun isolates a sub-extractor so a fault yields an empty result for that
// family only.
func safeRun(sub subExtractor, text string) (found []model.Entity) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("extract: sub-extractor panicked",
				zap.String("extractor", sub.name),
				zap.Any("panic", r),
			)
			found = nil
		}
	}()
	return sub.fn(text)
}

func entity(typ string, value any, conf model.Confidence, raw string) model.Entity {
	return model.Entity{
		Type:       typ,
		Value:      value,
		Confidence: conf,
		RawText:    strings.TrimSpace(raw),
	}
}
