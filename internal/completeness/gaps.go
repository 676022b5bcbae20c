package completeness

import "github.com/youcodecowboy/disco-grid-sub000/internal/model"

type gapPrompt struct {
	question string
	helper   string
}

var gapPrompts = map[string]gapPrompt{
	"company.name":              {"What is your company called?", "The name your team and customers use."},
	"company.industry":          {"Which industry are you in?", "For example apparel, furniture or electronics."},
	"company.location":          {"Where is your main facility?", "City and country are enough."},
	"company.teamSize":          {"How many people work in your operation?", "A rough headcount is fine."},
	"operations.model":          {"Do you make to order, make to stock, or engineer to order?", "Custom orders usually mean make to order."},
	"operations.capacity":       {"How many units do you produce per month?", "Give a typical month; we convert daily or weekly figures."},
	"operations.shifts":         {"How many shifts do you run per day?", "Count shifts on a normal working day."},
	"operations.leadTime":       {"What is your typical lead time from order to delivery?", "Days or weeks are fine."},
	"operations.planningMethod": {"How do you plan production today?", "Whiteboard, spreadsheet, ERP or something else."},
	"items.attributes":          {"What do you track for each item?", "Size, color, batch number and so on."},
	"items.trackingLevel":       {"Do you track individual units, batches, or product lines?", "Serial, lot or item level."},
	"workflows.stages":          {"What stages does an order go through?", "List them in order, e.g. cutting, sewing, packing."},
	"teams.departments":         {"Which departments or teams do you have?", "For example production, quality, shipping."},
	"analytics.kpis":            {"Which metrics matter most to you?", "On-time delivery, throughput, scrap rate and so on."},
	"analytics.audiences":       {"Who reads your reports?", "Roles such as owner, plant manager or supervisor."},
}

// GenerateGapQuestions returns one question per missing field, in order.
// Paths without an authored prompt fall back to "Please provide: <description>".
func GenerateGapQuestions(missing []model.ContractField) []model.GapQuestion {
	out := make([]model.GapQuestion, 0, len(missing))
	for _, f := range missing {
		if p, ok := gapPrompts[f.Path]; ok {
			out = append(out, model.GapQuestion{FieldPath: f.Path, Question: p.question, Helper: p.helper})
			continue
		}
		desc := f.Description
		if desc == "" {
			desc = f.Path
		}
		out = append(out, model.GapQuestion{
			FieldPath: f.Path,
			Question:  "Please provide: " + desc,
			Helper:    "This helps us complete your setup.",
		})
	}
	return out
}
