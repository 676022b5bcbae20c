package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/youcodecowboy/disco-grid-sub000/internal/prompt"
	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
)

// DefaultMinTextLength is the shortest text worth extracting from.
const DefaultMinTextLength = 3

// ErrTextTooShort rejects input below the minimum length.
var ErrTextTooShort = eris.New("pipeline: text too short")

// Request is one hybrid extraction call.
type Request struct {
	Text     string `json:"text"`
	Context  string `json:"context"`
	Strategy string `json:"strategy"`
}

// ValidateInput rejects text whose trimmed length is below minLength runes.
func ValidateInput(text string, minLength int) error {
	if minLength <= 0 {
		minLength = DefaultMinTextLength
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < minLength {
		return eris.Wrapf(ErrTextTooShort, "got %d characters, need at least %d", n, minLength)
	}
	return nil
}

// Validate checks the text length and resolves Context and Strategy against
// reg, filling defaults: an empty context becomes "general" and an empty
// strategy the prompt default. It returns the normalized request.
func (r Request) Validate(reg *registry.Registry, minLength int) (Request, error) {
	if err := ValidateInput(r.Text, minLength); err != nil {
		return r, err
	}
	if reg == nil {
		reg = registry.Default()
	}

	r.Context = strings.TrimSpace(r.Context)
	if r.Context == "" {
		r.Context = "general"
	}
	if _, ok := reg.Context(r.Context); !ok {
		return r, eris.Errorf("pipeline: unknown context %q (known: %s)", r.Context, strings.Join(reg.ContextNames(), ", "))
	}

	s, err := prompt.ParseStrategy(r.Strategy)
	if err != nil {
		return r, eris.Wrap(err, "pipeline: strategy")
	}
	r.Strategy = string(s)
	return r, nil
}
