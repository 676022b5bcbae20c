package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

const maxTeamSize = 100000

type teamPhrasing struct {
	re   *regexp.Regexp
	conf model.Confidence
}

// teamPhrasings are the six independent team-size patterns, in priority order.
var teamPhrasings = []teamPhrasing{
	{regexp.MustCompile(`(?i)\bteam\s+of\s+(\d[\d,]*)`), model.ConfidenceExplicit},
	{regexp.MustCompile(`(?i)\b(\d[\d,]*)\+?\s+(?:full[\s-]time\s+)?(?:employees|staff|workers|team members)\b`), model.ConfidenceExplicit},
	{regexp.MustCompile(`(?i)\bwe\s+(?:have|employ)\s+(?:about\s+|around\s+|roughly\s+|over\s+)?(\d[\d,]*)\s+(?:people|employees|workers|staff)\b`), model.ConfidenceExplicit},
	{regexp.MustCompile(`(?i)\bhead\s*count\s*(?:of|is|:)?\s*(?:about\s+|around\s+)?(\d[\d,]*)`), model.ConfidenceExplicit},
	{regexp.MustCompile(`(?i)\b(\d[\d,]*)[\s-]person\s+(?:team|company|shop|crew|operation)\b`), model.ConfidenceExplicit},
	{regexp.MustCompile(`(?i)\b(?:about|around|roughly|approximately|nearly)\s+(\d[\d,]*)\s+(?:people|employees|workers|folks)\b`), model.ConfidenceImplied},
}

// teamSizes collects headcount figures across all phrasings, keeping the
// first hit per value and dropping values outside [1, 100000).
func teamSizes(text string) []model.Entity {
	var out []model.Entity
	seen := make(map[float64]bool)
	for _, p := range teamPhrasings {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil || n < 1 || n >= maxTeamSize || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, entity("team_size", n, p.conf, m[0]))
		}
	}
	return out
}

var departmentTable = compileTable([]keywordEntry{
	{value: "Production", explicit: []string{"production"}, synonyms: []string{"shop floor", "manufacturing floor"}},
	{value: "Quality", explicit: []string{"quality", "quality control", "quality assurance"}, synonyms: []string{"qc", "qa", "inspection team"}},
	{value: "Cutting", explicit: []string{"cutting"}, synonyms: []string{"cutters"}},
	{value: "Sewing", explicit: []string{"sewing"}, synonyms: []string{"stitching", "seamstresses"}},
	{value: "Assembly", explicit: []string{"assembly"}, synonyms: []string{"assemblers"}},
	{value: "Packaging", explicit: []string{"packaging"}, synonyms: []string{"packing"}},
	{value: "Shipping", explicit: []string{"shipping"}, synonyms: []string{"logistics", "dispatch", "fulfillment"}},
	{value: "Warehouse", explicit: []string{"warehouse"}, synonyms: []string{"stores", "receiving"}},
	{value: "Design", explicit: []string{"design"}, synonyms: []string{"designers", "pattern making"}},
	{value: "Engineering", explicit: []string{"engineering"}, synonyms: []string{"engineers"}},
	{value: "Maintenance", explicit: []string{"maintenance"}, synonyms: []string{"technicians"}},
	{value: "Sales", explicit: []string{"sales"}, synonyms: []string{"account managers", "business development"}},
	{value: "Customer Service", explicit: []string{"customer service"}, synonyms: []string{"customer support", "support team"}},
	{value: "Finance", explicit: []string{"finance"}, synonyms: []string{"accounting", "bookkeeping"}},
	{value: "Human Resources", explicit: []string{"human resources"}, synonyms: []string{"hr", "people ops"}},
	{value: "Purchasing", explicit: []string{"purchasing"}, synonyms: []string{"procurement", "sourcing"}},
	{value: "Planning", explicit: []string{"planning"}, synonyms: []string{"scheduling", "planners"}},
})

func departments(text string) []model.Entity {
	return departmentTable.emit("department", text)
}
