package extract

import (
	"regexp"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/normalize"
)

var capacityRe = regexp.MustCompile(`(?i)(\d[\d,]*(?:\.\d+)?\s*[km]?)\s*` +
	`(?:units?|pieces?|pcs|items?|parts?|garments?|products?|orders?|boxes|cases|pallets|tons?)\b` +
	`(?:\s*(?:per|a|an|each|every|/)\s*(?:day|week|month|shift)\b|\s+(?:daily|weekly|monthly)\b)?`)

// capacities finds "<number> <unit> [per period]" phrases and scales them to a
// monthly figure: day x30, week x4, month or no period unscaled.
func capacities(text string) []model.Entity {
	var out []model.Entity
	for _, m := range capacityRe.FindAllStringSubmatch(text, -1) {
		n, ok := normalize.NormalizeCapacity(m[1])
		if !ok || n <= 0 {
			continue
		}
		lower := strings.ToLower(m[0])
		switch {
		case strings.Contains(lower, "day") || strings.Contains(lower, "daily"):
			n *= 30
		case strings.Contains(lower, "week"):
			n *= 4
		}
		out = append(out, entity("capacity", n, model.ConfidenceExplicit, m[0]))
	}
	return out
}
