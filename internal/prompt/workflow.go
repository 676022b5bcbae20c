package prompt

import "strings"

const workflowEnvelope = `{"stages":[{"name":"<stage name>","order":<1-based position>}],"limboZones":["<where work waits between stages>"]}`

const workflowGeneration = `You design production workflows for small manufacturers.
Given a short description of the business, propose the ordered stages work passes through and the places where work typically waits between stages.
Respond with a single JSON object and nothing else.

Output format (JSON object):
` + workflowEnvelope + `

Rules:
1. Propose between 3 and 10 stages, ordered from order intake to shipping.
2. Stage names are short title-case nouns, e.g. "Cutting" or "Final Inspection".
3. Limbo zones name a physical or logical waiting place, e.g. "Awaiting QC".
4. Stay within the industry described; do not add stages the business clearly does not run.`

// BuildWorkflowGeneration returns the system prompt for generating a workflow
// draft. When industry is set it is appended as a hint.
func BuildWorkflowGeneration(industry string) string {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return workflowGeneration
	}
	return workflowGeneration + "\n5. The business is in the " + industry + " industry."
}
