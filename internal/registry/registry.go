// Package registry holds the entity-type schema registry and the extraction
// contexts that group entity types per onboarding section.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaBaseURL = "https://schemas.disco-grid.local/entity/"

// Registry maps entity type names to value shapes and compiled schemas.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	types    []EntityType
	byName   map[string]int
	schemas  map[string]*jsonschema.Schema
	contexts []Context
	ctxIndex map[string]int
}

// New compiles a registry. Every context must reference registered types.
func New(types []EntityType, contexts []Context) (*Registry, error) {
	r := &Registry{
		byName:   make(map[string]int, len(types)),
		schemas:  make(map[string]*jsonschema.Schema, len(types)),
		ctxIndex: make(map[string]int, len(contexts)),
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	for _, t := range types {
		if t.Name == "" {
			return nil, eris.New("registry: entity type with empty name")
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, eris.Errorf("registry: duplicate entity type %q", t.Name)
		}
		src := t.Schema
		if src == "" {
			src = deriveSchema(t)
		}
		url := schemaBaseURL + t.Name + ".schema.json"
		if err := c.AddResource(url, strings.NewReader(src)); err != nil {
			return nil, eris.Wrapf(err, "registry: add schema for %s", t.Name)
		}
		schema, err := c.Compile(url)
		if err != nil {
			return nil, eris.Wrapf(err, "registry: compile schema for %s", t.Name)
		}
		r.byName[t.Name] = len(r.types)
		r.types = append(r.types, t)
		r.schemas[t.Name] = schema
	}

	for _, ctx := range contexts {
		if _, dup := r.ctxIndex[ctx.Name]; dup {
			return nil, eris.Errorf("registry: duplicate context %q", ctx.Name)
		}
		for _, name := range ctx.Types {
			if _, ok := r.byName[name]; !ok {
				return nil, eris.Errorf("registry: context %q references unknown type %q", ctx.Name, name)
			}
		}
		r.ctxIndex[ctx.Name] = len(r.contexts)
		r.contexts = append(r.contexts, ctx)
	}
	return r, nil
}

var builtin *Registry

func init() {
	r, err := New(builtinTypes, builtinContexts)
	if err != nil {
		panic(fmt.Sprintf("registry: builtin registry: %v", err))
	}
	builtin = r
}

// Default returns the built-in registry.
func Default() *Registry {
	return builtin
}

// Extend returns a new registry with extra types and contexts layered over r.
// Extra types replace built-in types of the same name.
func (r *Registry) Extend(types []EntityType, contexts []Context) (*Registry, error) {
	merged := make([]EntityType, 0, len(r.types)+len(types))
	override := make(map[string]EntityType, len(types))
	for _, t := range types {
		override[t.Name] = t
	}
	for _, t := range r.types {
		if o, ok := override[t.Name]; ok {
			merged = append(merged, o)
			delete(override, t.Name)
			continue
		}
		merged = append(merged, t)
	}
	for _, t := range types {
		if _, ok := override[t.Name]; ok {
			merged = append(merged, t)
		}
	}

	ctxs := make([]Context, 0, len(r.contexts)+len(contexts))
	replaced := make(map[string]Context, len(contexts))
	for _, c := range contexts {
		replaced[c.Name] = c
	}
	for _, c := range r.contexts {
		if o, ok := replaced[c.Name]; ok {
			ctxs = append(ctxs, o)
			delete(replaced, c.Name)
			continue
		}
		ctxs = append(ctxs, c)
	}
	for _, c := range contexts {
		if _, ok := replaced[c.Name]; ok {
			ctxs = append(ctxs, c)
		}
	}
	return New(merged, ctxs)
}

// Type returns the entity type with the given name.
func (r *Registry) Type(name string) (EntityType, bool) {
	i, ok := r.byName[name]
	if !ok {
		return EntityType{}, false
	}
	return r.types[i], true
}

// Types returns all entity types in registration order.
func (r *Registry) Types() []EntityType {
	return append([]EntityType(nil), r.types...)
}

// Context returns the named extraction context.
func (r *Registry) Context(name string) (Context, bool) {
	i, ok := r.ctxIndex[name]
	if !ok {
		return Context{}, false
	}
	return r.contexts[i], true
}

// ContextNames returns every context name, sorted.
func (r *Registry) ContextNames() []string {
	names := make([]string, 0, len(r.contexts))
	for _, c := range r.contexts {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// ContextTypes resolves the entity types of a context in declaration order.
func (r *Registry) ContextTypes(name string) ([]EntityType, error) {
	ctx, ok := r.Context(name)
	if !ok {
		return nil, eris.Errorf("registry: unknown context %q", name)
	}
	out := make([]EntityType, 0, len(ctx.Types))
	for _, n := range ctx.Types {
		t, _ := r.Type(n)
		out = append(out, t)
	}
	return out, nil
}

// Validate checks value against the registered shape for typ. Values must be
// in their decoded JSON form (string, float64, map[string]any, ...).
func (r *Registry) Validate(typ string, value any) error {
	schema, ok := r.schemas[typ]
	if !ok {
		return eris.Errorf("registry: unknown entity type %q", typ)
	}
	if err := schema.Validate(value); err != nil {
		return eris.Wrapf(err, "registry: invalid %s value", typ)
	}
	return nil
}

// Canonical maps a value synonym to its canonical enum value. Matching is
// case-insensitive against both the enum and the synonym table. The input is
// returned unchanged when nothing matches.
func (t EntityType) Canonical(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, e := range t.Enum {
		if strings.ToLower(e) == v {
			return e
		}
	}
	if c, ok := t.Synonyms[v]; ok {
		return c
	}
	return value
}

func deriveSchema(t EntityType) string {
	var s map[string]any
	switch t.Kind {
	case KindNumber:
		s = map[string]any{"type": "number", "minimum": 0}
	case KindInteger:
		s = map[string]any{"type": "integer", "minimum": 0}
	case KindEnum:
		s = map[string]any{"type": "string", "enum": t.Enum}
	case KindLocation:
		s = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"city":    map[string]any{"type": "string", "minLength": 1},
				"state":   map[string]any{"type": "string"},
				"country": map[string]any{"type": "string"},
			},
			"required": []string{"city"},
		}
	default:
		s = map[string]any{"type": "string", "minLength": 1}
	}
	s["$schema"] = "https://json-schema.org/draft/2020-12/schema"
	b, _ := json.Marshal(s)
	return string(b)
}
