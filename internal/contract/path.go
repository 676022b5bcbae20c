package contract

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

// sentinels are placeholder answers that count as not answered.
var sentinels = []string{"unknown", "n/a", "na", "tbd", "none yet", "-"}

// ToMap renders c in its JSON shape.
func ToMap(c model.Contract) (map[string]any, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, eris.Wrap(err, "contract: marshal")
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, eris.Wrap(err, "contract: unmarshal")
	}
	return m, nil
}

// GetValueAtPath resolves a dotted path such as "company.location.city"
// against the JSON shape of c. Numeric segments index arrays. The second
// result is false when any segment is missing; it never panics.
func GetValueAtPath(c model.Contract, path string) (any, bool) {
	return NewView(c).Value(path)
}

// View is a read-only JSON-shaped snapshot of a contract for evaluating
// many paths without re-encoding it each time.
type View struct {
	root map[string]any
}

// NewView snapshots c. A contract that cannot be encoded yields an empty
// view in which every path is missing.
func NewView(c model.Contract) View {
	m, err := ToMap(c)
	if err != nil {
		zap.L().Warn("contract: cannot build view", zap.Error(err))
		return View{}
	}
	return View{root: m}
}

// Value returns the value at path.
func (v View) Value(path string) (any, bool) {
	if v.root == nil {
		return nil, false
	}
	return lookup(v.root, path)
}

// Satisfied is IsFieldSatisfied over the snapshot.
func (v View) Satisfied(path string) bool {
	val, ok := v.Value(path)
	return ok && satisfied(val)
}

// Meta is FieldMeta over the snapshot.
func (v View) Meta(path string) (model.Provenance, model.Confidence, bool) {
	val, ok := v.Value(path)
	if !ok {
		return "", 0, false
	}
	return meta(val)
}

func lookup(root map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var cur any = root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// metaKeys annotate a value without answering anything on their own.
var metaKeys = map[string]bool{"prov": true, "conf": true, "unit": true}

// IsFieldSatisfied reports whether path holds a real answer. Missing, null,
// blank strings, empty collections and placeholder strings such as "TBD"
// or "n/a" (any case) are unsatisfied. Objects carrying a "value" key are
// judged by that value.
func IsFieldSatisfied(c model.Contract, path string) bool {
	return NewView(c).Satisfied(path)
}

func satisfied(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s != "" && !slices.Contains(sentinels, s)
	case []any:
		return len(x) > 0
	case map[string]any:
		if inner, ok := x["value"]; ok {
			return satisfied(inner)
		}
		for k, val := range x {
			if metaKeys[k] {
				continue
			}
			if satisfied(val) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// FieldMeta returns the inline provenance and confidence recorded at path.
// For a list of provenance-bearing objects it reports the lowest
// confidence. ok is false when nothing at path carries a confidence.
func FieldMeta(c model.Contract, path string) (prov model.Provenance, conf model.Confidence, ok bool) {
	return NewView(c).Meta(path)
}

func meta(v any) (model.Provenance, model.Confidence, bool) {
	switch x := v.(type) {
	case map[string]any:
		n, isNum := x["conf"].(float64)
		if !isNum {
			return "", 0, false
		}
		p, _ := x["prov"].(string)
		return model.Provenance(p), model.Confidence(n), true
	case []any:
		var (
			lowProv model.Provenance
			low     model.Confidence
			found   bool
		)
		for _, el := range x {
			p, c, ok := meta(el)
			if !ok {
				continue
			}
			if !found || c < low {
				low, lowProv = c, p
			}
			found = true
		}
		return lowProv, low, found
	}
	return "", 0, false
}

// PatchContract returns a copy of c with value written at path. Missing
// intermediate objects are created. The value is copied through its JSON
// form, so later changes to it never reach the returned contract. Paths
// that do not exist in the contract shape, or values of the wrong shape,
// are errors and leave c untouched. Seed item attributes are restored if a
// patch removes them.
func PatchContract(c model.Contract, path string, value any) (model.Contract, error) {
	if strings.TrimSpace(path) == "" {
		return c, eris.New("contract: empty patch path")
	}
	root, err := ToMap(c)
	if err != nil {
		return c, err
	}

	generic, err := toGeneric(value)
	if err != nil {
		return c, eris.Wrapf(err, "contract: patch %s", path)
	}
	if err := set(root, strings.Split(path, "."), generic); err != nil {
		return c, eris.Wrapf(err, "contract: patch %s", path)
	}

	out, err := fromMap(root)
	if err != nil {
		return c, eris.Wrapf(err, "contract: patch %s", path)
	}
	out.Items.Attributes = ensureSeeds(out.Items.Attributes)
	return out, nil
}

func set(node map[string]any, segs []string, value any) error {
	seg := segs[0]
	if len(segs) == 1 {
		node[seg] = value
		return nil
	}
	switch child := node[seg].(type) {
	case nil:
		next := map[string]any{}
		node[seg] = next
		return set(next, segs[1:], value)
	case map[string]any:
		return set(child, segs[1:], value)
	case []any:
		i, err := strconv.Atoi(segs[1])
		if err != nil || i < 0 || i >= len(child) {
			return eris.Errorf("index %q out of range for %s", segs[1], seg)
		}
		if len(segs) == 2 {
			child[i] = value
			return nil
		}
		el, ok := child[i].(map[string]any)
		if !ok {
			return eris.Errorf("%s.%d is not an object", seg, i)
		}
		return set(el, segs[2:], value)
	default:
		return eris.Errorf("%s is not an object", seg)
	}
}

func toGeneric(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromMap decodes a generic contract, rejecting unknown fields so a
// mistyped path cannot be silently dropped.
func fromMap(m map[string]any) (model.Contract, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return model.Contract{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var c model.Contract
	if err := dec.Decode(&c); err != nil {
		return model.Contract{}, err
	}
	return c, nil
}

// clone deep-copies c through its JSON form.
func clone(c model.Contract) model.Contract {
	m, err := ToMap(c)
	if err == nil {
		var out model.Contract
		if out, err = fromMap(m); err == nil {
			return out
		}
	}
	zap.L().Warn("contract: deep copy failed, copying slices only", zap.Error(err))
	c.Metadata.CommittedFields = slices.Clone(c.Metadata.CommittedFields)
	c.Metadata.ExtractedEntities = slices.Clone(c.Metadata.ExtractedEntities)
	c.Items.Attributes = slices.Clone(c.Items.Attributes)
	return c
}
