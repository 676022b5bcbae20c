package extract

import (
	"regexp"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// keywordEntry maps a canonical value to the phrases that imply it. Explicit
// phrases name the value directly and score 3; synonyms score 2.
type keywordEntry struct {
	value    string
	explicit []string
	synonyms []string
}

type phrase struct {
	re   *regexp.Regexp
	conf model.Confidence
}

type compiledEntry struct {
	value   string
	phrases []phrase
}

// keywordTable is an ordered list of entries. Order is the output order.
type keywordTable []compiledEntry

func compileTable(entries []keywordEntry) keywordTable {
	t := make(keywordTable, 0, len(entries))
	for _, e := range entries {
		c := compiledEntry{value: e.value}
		for _, p := range e.explicit {
			c.phrases = append(c.phrases, phrase{re: wordRe(p), conf: model.ConfidenceExplicit})
		}
		for _, p := range e.synonyms {
			c.phrases = append(c.phrases, phrase{re: wordRe(p), conf: model.ConfidenceImplied})
		}
		t = append(t, c)
	}
	return t
}

func wordRe(p string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(p), " ", `[\s-]+`) + `\b`)
}

type tableMatch struct {
	value string
	conf  model.Confidence
	raw   string
}

// match returns at most one match per entry, taking the first phrase that
// hits in declaration order.
func (t keywordTable) match(text string) []tableMatch {
	var out []tableMatch
	for _, e := range t {
		for _, p := range e.phrases {
			if raw := p.re.FindString(text); raw != "" {
				out = append(out, tableMatch{value: e.value, conf: p.conf, raw: raw})
				break
			}
		}
	}
	return out
}

// emit converts table matches into entities of one type.
func (t keywordTable) emit(typ, text string) []model.Entity {
	var out []model.Entity
	for _, m := range t.match(text) {
		out = append(out, entity(typ, m.value, m.conf, m.raw))
	}
	return out
}
