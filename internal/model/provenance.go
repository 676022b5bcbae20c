package model

// Provenance records which subsystem produced a value.
type Provenance string

const (
	ProvenanceLLM       Provenance = "llm"
	ProvenanceKeyword   Provenance = "keyword"
	ProvenanceUserInput Provenance = "user_input"
	ProvenanceNLP       Provenance = "nlp"
)

// provenanceRank maps provenance to merge priority. Lower rank wins.
var provenanceRank = map[Provenance]int{
	ProvenanceUserInput: 0,
	ProvenanceLLM:       1,
	ProvenanceNLP:       2,
	ProvenanceKeyword:   3,
}

// Valid reports whether p is one of the known provenance values.
func (p Provenance) Valid() bool {
	_, ok := provenanceRank[p]
	return ok
}

// Outranks reports whether p takes precedence over other when both carry a
// value for the same field. Unknown provenance never outranks a known one.
func (p Provenance) Outranks(other Provenance) bool {
	pr, ok := provenanceRank[p]
	if !ok {
		return false
	}
	or, ok := provenanceRank[other]
	if !ok {
		return true
	}
	return pr < or
}
