package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/normalize"
)

var industryTable = compileTable([]keywordEntry{
	{value: "apparel", explicit: []string{"apparel", "garment", "garments", "clothing"}, synonyms: []string{"textile", "textiles", "fashion", "sewing"}},
	{value: "furniture", explicit: []string{"furniture"}, synonyms: []string{"cabinetry", "woodworking", "upholstery"}},
	{value: "electronics", explicit: []string{"electronics"}, synonyms: []string{"pcb", "pcbs", "circuit boards", "semiconductor"}},
	{value: "automotive", explicit: []string{"automotive"}, synonyms: []string{"auto parts", "car parts", "vehicle"}},
	{value: "aerospace", explicit: []string{"aerospace"}, synonyms: []string{"aircraft", "aviation"}},
	{value: "food_beverage", explicit: []string{"food and beverage", "food & beverage"}, synonyms: []string{"bakery", "brewery", "beverages", "snacks", "food production"}},
	{value: "construction", explicit: []string{"construction"}, synonyms: []string{"contractor", "building sites", "general contracting"}},
	{value: "defense", explicit: []string{"defense", "defence"}, synonyms: []string{"military", "munitions"}},
	{value: "metal_fabrication", explicit: []string{"metal fabrication"}, synonyms: []string{"machining", "welding", "sheet metal", "cnc"}},
	{value: "chemicals", explicit: []string{"chemicals", "chemical"}, synonyms: []string{"coatings", "resins"}},
	{value: "manufacturing", explicit: []string{"manufacturing", "manufacturer"}, synonyms: []string{"factory", "production line", "plant"}},
})

var productTable = compileTable([]keywordEntry{
	{value: "t-shirts", explicit: []string{"t-shirts", "tshirts", "tees"}},
	{value: "jackets", explicit: []string{"jackets", "outerwear"}},
	{value: "dresses", explicit: []string{"dresses"}},
	{value: "jeans", explicit: []string{"jeans", "denim"}},
	{value: "uniforms", explicit: []string{"uniforms", "workwear"}},
	{value: "chairs", explicit: []string{"chairs"}},
	{value: "tables", explicit: []string{"tables"}},
	{value: "cabinets", explicit: []string{"cabinets"}},
	{value: "circuit boards", explicit: []string{"circuit boards", "pcbs"}},
	{value: "sensors", explicit: []string{"sensors"}},
	{value: "brackets", explicit: []string{"brackets"}},
	{value: "valves", explicit: []string{"valves"}},
	{value: "pumps", explicit: []string{"pumps"}},
	{value: "enclosures", explicit: []string{"enclosures"}},
	{value: "packaging", explicit: []string{"boxes", "cartons"}},
})

var productPhraseRe = regexp.MustCompile(`(?i)\bwe\s+(?:make|manufacture|produce|build|assemble|fabricate|sew)\s+([a-z][a-z\- ]{2,40}?)(?:[.,;!?]|\s+(?:for|in|at|and|with|from|to)\b|$)`)

var opsModelTable = compileTable([]keywordEntry{
	{value: "MTO", explicit: []string{"make to order", "made to order", "build to order", "mto"}, synonyms: []string{"custom orders", "custom order", "bespoke", "per order", "on demand"}},
	{value: "MTS", explicit: []string{"make to stock", "made to stock", "mts"}, synonyms: []string{"ship from stock", "from inventory", "build inventory", "stock items"}},
	{value: "ETO", explicit: []string{"engineer to order", "engineered to order", "eto"}, synonyms: []string{"custom engineering", "custom engineered", "one-off projects"}},
})

var (
	shiftsRe        = regexp.MustCompile(`(?i)\b(\d|one|two|three|four|single|double|triple)[\s-]+shifts?\b`)
	roundTheClockRe = regexp.MustCompile(`(?i)\b24/7\b|\baround the clock\b|\bround the clock\b`)
	leadTimeRe      = regexp.MustCompile(`(?i)\b(lead[\s-]?times?|turnaround(?:\s+time)?|deliver(?:y|s)?\s+within)\s*(?:is|of|are|:|runs|averages)?\s*(?:about|around|roughly|approximately|typically|usually|~)?\s*` +
		`(\d+(?:\.\d+)?)(?:\s*(?:-|to)\s*\d+(?:\.\d+)?)?\s*(minutes?|mins?|hours?|hrs?|days?|weeks?|wks?|months?)\b`)
)

var shiftWords = map[string]float64{
	"one": 1, "single": 1, "two": 2, "double": 2, "three": 3, "triple": 3, "four": 4,
}

func industries(text string) []model.Entity {
	return industryTable.emit("industry", text)
}

// products prefers a "we make X" phrase and falls back to the product table.
func products(text string) []model.Entity {
	var out []model.Entity
	for _, m := range productPhraseRe.FindAllStringSubmatch(text, -1) {
		p := strings.ToLower(strings.TrimSpace(m[1]))
		if len(strings.Fields(p)) > 4 {
			continue
		}
		out = append(out, entity("product", p, model.ConfidenceExplicit, m[0]))
	}
	return append(out, productTable.emit("product", text)...)
}

// operations covers the operating model, shift count and lead time.
func operations(text string) []model.Entity {
	out := opsModelTable.emit("ops_model", text)
	out = append(out, shifts(text)...)
	return append(out, leadTimes(text)...)
}

func shifts(text string) []model.Entity {
	var out []model.Entity
	for _, m := range shiftsRe.FindAllStringSubmatch(text, -1) {
		word := strings.ToLower(m[1])
		n, ok := shiftWords[word]
		if !ok {
			v, err := strconv.Atoi(word)
			if err != nil {
				continue
			}
			n = float64(v)
		}
		if n < 1 || n > 4 {
			continue
		}
		out = append(out, entity("shifts", n, model.ConfidenceExplicit, m[0]))
	}
	if len(out) == 0 {
		if raw := roundTheClockRe.FindString(text); raw != "" {
			out = append(out, entity("shifts", float64(3), model.ConfidenceImplied, raw))
		}
	}
	return out
}

// leadTimes converts lead-time phrases to hours. A range keeps its lower
// bound. "lead time" is explicit; turnaround and delivery phrasing is implied.
func leadTimes(text string) []model.Entity {
	var out []model.Entity
	for _, m := range leadTimeRe.FindAllStringSubmatch(text, -1) {
		hours, ok := normalize.ParseDuration(m[2] + " " + m[3])
		if !ok || hours <= 0 {
			continue
		}
		conf := model.ConfidenceImplied
		if strings.HasPrefix(strings.ToLower(m[1]), "lead") {
			conf = model.ConfidenceExplicit
		}
		out = append(out, entity("lead_time", hours, conf, m[0]))
	}
	return out
}
