package model

import "strings"

// FieldRequirement declares one contract path in the requirement table.
type FieldRequirement struct {
	Path        string `json:"path" yaml:"path"`
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description" yaml:"description"`
}

// ContractField is a requirement evaluated against one contract snapshot.
// It is derived on demand and never persisted.
type ContractField struct {
	Path        string      `json:"path"`
	Required    bool        `json:"required"`
	Description string      `json:"description"`
	Satisfied   bool        `json:"satisfied"`
	Value       any         `json:"value,omitempty"`
	Provenance  Provenance  `json:"provenance,omitempty"`
	Confidence  *Confidence `json:"confidence,omitempty"`
}

// FieldRegistry is an indexed, ordered requirement table.
type FieldRegistry struct {
	Fields   []FieldRequirement
	byPath   map[string]*FieldRequirement
	required []*FieldRequirement
}

// NewFieldRegistry creates a FieldRegistry with indexed lookups. Order of
// fields is preserved for every listing method.
func NewFieldRegistry(fields []FieldRequirement) *FieldRegistry {
	r := &FieldRegistry{
		Fields: fields,
		byPath: make(map[string]*FieldRequirement, len(fields)),
	}
	for i := range r.Fields {
		f := &r.Fields[i]
		r.byPath[f.Path] = f
		if f.Required {
			r.required = append(r.required, f)
		}
	}
	return r
}

// ByPath returns the requirement for the given path, or nil if not found.
func (r *FieldRegistry) ByPath(path string) *FieldRequirement {
	return r.byPath[path]
}

// Required returns all required fields in table order.
func (r *FieldRegistry) Required() []*FieldRequirement {
	return r.required
}

// RequiredUnder returns required fields whose path starts with prefix.
func (r *FieldRegistry) RequiredUnder(prefix string) []*FieldRequirement {
	var out []*FieldRequirement
	for _, f := range r.required {
		if strings.HasPrefix(f.Path, prefix) {
			out = append(out, f)
		}
	}
	return out
}
