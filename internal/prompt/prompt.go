// Package prompt builds the system prompts sent to the LLM extractor.
// Output is a pure function of (context, strategy): no I/O, no randomness.
package prompt

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
)

// Strategy trades prompt size for extraction accuracy.
type Strategy string

const (
	Minimal   Strategy = "minimal"
	Optimized Strategy = "optimized"
	Balanced  Strategy = "balanced"
	FewShot   Strategy = "few_shot"

	// DefaultStrategy is used when the caller names none.
	DefaultStrategy = Balanced
)

// Strategies lists the accepted strategy names, aliases excluded.
var Strategies = []Strategy{Minimal, Optimized, Balanced, FewShot}

// ParseStrategy resolves a strategy name. "enhanced" is an alias for
// few_shot and the empty string selects DefaultStrategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultStrategy, nil
	case "minimal":
		return Minimal, nil
	case "optimized":
		return Optimized, nil
	case "balanced":
		return Balanced, nil
	case "few_shot", "few-shot", "fewshot", "enhanced":
		return FewShot, nil
	}
	return "", eris.Errorf("prompt: unknown strategy %q", s)
}

const envelope = `{"entities":[{"type":"<entity type>","value":<value>,"confidence":<1|2|3>,"rawText":"<exact span from the input>"}]}`

// ListRule is included in every strategy. The gateway relies on it when
// flattening list-typed entities.
const ListRule = `List-typed extractions (for example a sequence of workflow stages) must be emitted as multiple single-valued entities of the same "type", never as one entity whose value is an array.`

const header = `You extract structured onboarding facts from a business owner's free-text answer.
Respond with a single JSON object and nothing else.`

// Builder renders prompts against an entity-type registry.
type Builder struct {
	reg *registry.Registry
}

// NewBuilder creates a Builder. A nil registry uses registry.Default().
func NewBuilder(reg *registry.Registry) *Builder {
	if reg == nil {
		reg = registry.Default()
	}
	return &Builder{reg: reg}
}

var defaultBuilder = NewBuilder(nil)

// Build renders the prompt for context and strategy with the built-in
// registry.
func Build(context, strategy string) (string, error) {
	return defaultBuilder.Build(context, strategy)
}

// Build renders the system prompt for one extraction context. The output is
// always: the JSON envelope, the entity types with their value domains, then
// the rules.
func (b *Builder) Build(context, strategy string) (string, error) {
	s, err := ParseStrategy(strategy)
	if err != nil {
		return "", err
	}
	types, err := b.reg.ContextTypes(context)
	if err != nil {
		return "", eris.Wrap(err, "prompt: build")
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")

	switch s {
	case Minimal:
		writeEnvelope(&sb, false)
		writeTerseTypes(&sb, types)
		sb.WriteString("\nRules:\n- " + ListRule + "\n")
	case Optimized:
		writeEnvelope(&sb, true)
		writeTypeList(&sb, types)
		writeRules(&sb, formatRules)
	case Balanced:
		writeEnvelope(&sb, true)
		writeGroupedTypes(&sb, types)
		writeRules(&sb, append(append([]string{}, formatRules...), guidanceRules...))
	case FewShot:
		writeEnvelope(&sb, true)
		writeGroupedTypes(&sb, types)
		writeRules(&sb, append(append([]string{}, formatRules...), guidanceRules...))
		writeExamples(&sb, types)
	}
	return sb.String(), nil
}

var formatRules = []string{
	ListRule,
	`"confidence" is an integer: 3 when stated explicitly, 2 when clearly implied, 1 when inferred.`,
	`"rawText" must quote the span of the input that justifies the value.`,
	`Numeric types take JSON numbers, not strings: write 50000, not "50k" or "50,000".`,
	`Enum types take exactly one of the listed values.`,
	`Omit anything not supported by the text. Return {"entities":[]} when nothing applies.`,
}

var guidanceRules = []string{
	`Map wording to the closest enum value: "custom orders" or "made to order" is MTO, "we keep stock" is MTS, "whiteboard" or "paper" planning is ManualBoard.`,
	`Convert durations to hours: 90 minutes is 1.5, 2 days is 48, 1 week is 168.`,
	`Convert capacity to units per month: per day x30, per week x4.`,
	`Keep stage order as described; emit one workflow_stage entity per stage.`,
	`Never invent a company name, location or number that the text does not mention.`,
}

func writeEnvelope(sb *strings.Builder, withHeading bool) {
	if withHeading {
		sb.WriteString("Output format (JSON object):\n")
	}
	sb.WriteString(envelope)
	sb.WriteString("\n\n")
}

func writeTerseTypes(sb *strings.Builder, types []registry.EntityType) {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		if t.Kind == registry.KindEnum {
			parts = append(parts, fmt.Sprintf("%s(%s)", t.Name, strings.Join(t.Enum, "|")))
			continue
		}
		parts = append(parts, t.Name)
	}
	sb.WriteString("Types: " + strings.Join(parts, ", ") + "\n")
}

func writeTypeList(sb *strings.Builder, types []registry.EntityType) {
	sb.WriteString("Entity types:\n")
	for _, t := range types {
		sb.WriteString("- " + t.Name + ": " + domain(t) + "\n")
	}
	sb.WriteString("\n")
}

// writeGroupedTypes lists types under their topic, topics in first-seen order.
func writeGroupedTypes(sb *strings.Builder, types []registry.EntityType) {
	var topics []string
	byTopic := make(map[string][]registry.EntityType)
	for _, t := range types {
		topic := t.Topic
		if topic == "" {
			topic = "Other"
		}
		if _, ok := byTopic[topic]; !ok {
			topics = append(topics, topic)
		}
		byTopic[topic] = append(byTopic[topic], t)
	}

	sb.WriteString("Entity types:\n")
	for _, topic := range topics {
		sb.WriteString("\n" + topic + ":\n")
		for _, t := range byTopic[topic] {
			line := "- " + t.Name + ": " + domain(t)
			if t.Description != "" {
				line += " - " + t.Description
			}
			if t.List {
				line += " (list: one entity per item)"
			}
			sb.WriteString(line + "\n")
		}
	}
	sb.WriteString("\n")
}

func writeRules(sb *strings.Builder, rules []string) {
	sb.WriteString("Rules:\n")
	for i, r := range rules {
		fmt.Fprintf(sb, "%d. %s\n", i+1, r)
	}
}

func domain(t registry.EntityType) string {
	switch t.Kind {
	case registry.KindEnum:
		return "one of " + strings.Join(t.Enum, ", ")
	case registry.KindNumber:
		return "number"
	case registry.KindInteger:
		return "integer"
	case registry.KindLocation:
		return `object {"city", "state", "country"}`
	}
	return "text"
}
