package gateway

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
	"github.com/youcodecowboy/disco-grid-sub000/internal/normalize"
	"github.com/youcodecowboy/disco-grid-sub000/internal/registry"
)

// normalize turns raw model output into validated entities. Entities of an
// unknown type, with an uncoercible value, or failing their registered
// schema are dropped and counted.
func (g *Gateway) normalize(raw []rawEntity) ([]model.Entity, int) {
	out := make([]model.Entity, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		typ := strings.TrimSpace(r.Type)
		t, ok := g.reg.Type(typ)
		if !ok {
			dropped++
			zap.L().Warn("gateway: dropping entity of unknown type", zap.String("type", typ))
			continue
		}

		conf := parseConfidence(r.Confidence).Clamp()
		for _, v := range flatten(t, r.Value) {
			value, ok := coerce(t, v)
			if !ok {
				dropped++
				zap.L().Warn("gateway: dropping uncoercible entity value",
					zap.String("type", typ), zap.Any("value", v))
				continue
			}
			if err := g.reg.Validate(typ, value); err != nil {
				dropped++
				zap.L().Warn("gateway: dropping entity failing schema",
					zap.String("type", typ), zap.Any("value", value), zap.Error(err))
				continue
			}
			out = append(out, model.Entity{
				Type:       typ,
				Value:      value,
				Confidence: conf,
				RawText:    r.RawText,
				Provenance: model.ProvenanceLLM,
			})
		}
	}
	return model.DedupeEntities(out), dropped
}

// flatten splits an array value of a list type into its elements. Arrays
// for non-list types are left whole so schema validation rejects them.
func flatten(t registry.EntityType, v any) []any {
	arr, ok := v.([]any)
	if !ok || !t.List {
		return []any{v}
	}
	return arr
}

func coerce(t registry.EntityType, v any) (any, bool) {
	switch t.Kind {
	case registry.KindNumber, registry.KindInteger:
		num := toNumber
		if t.Name == "lead_time" {
			num = normalize.Hours
		}
		n, ok := num(v)
		if !ok {
			return nil, false
		}
		if t.Kind == registry.KindInteger {
			n = math.Round(n)
		}
		return n, true
	case registry.KindEnum:
		s, ok := v.(string)
		if !ok {
			return v, true
		}
		return t.Canonical(strings.TrimSpace(s)), true
	case registry.KindLocation:
		return toLocation(v)
	default:
		switch x := v.(type) {
		case string:
			return strings.TrimSpace(x), true
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), true
		case bool:
			return strconv.FormatBool(x), true
		}
		return v, true
	}
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		return normalize.NormalizeCapacity(x)
	case map[string]any:
		// {"value": 50000, "unit": "units/month"}
		if inner, ok := x["value"]; ok {
			return toNumber(inner)
		}
	}
	return 0, false
}

// toLocation accepts a {city, state, country} object or a "City, Region"
// string. Unknown countries are filled from the city table when possible.
func toLocation(v any) (any, bool) {
	loc := map[string]any{}
	switch x := v.(type) {
	case map[string]any:
		for _, k := range []string{"city", "state", "country"} {
			if s, ok := x[k].(string); ok && strings.TrimSpace(s) != "" {
				loc[k] = strings.TrimSpace(s)
			}
		}
	case string:
		parts := strings.Split(x, ",")
		city := strings.TrimSpace(parts[0])
		if city == "" {
			return nil, false
		}
		loc["city"] = city
		if len(parts) > 1 {
			region := strings.TrimSpace(parts[len(parts)-1])
			switch {
			case region == "":
			case len(region) == 2 && strings.ToUpper(region) == region:
				loc["state"] = region
			default:
				loc["country"] = region
			}
		}
	default:
		return nil, false
	}

	city, _ := loc["city"].(string)
	if _, has := loc["country"]; !has && city != "" {
		if info, ok := normalize.LookupCity(city); ok {
			loc["country"] = info.Country
		}
	}
	return loc, true
}

func parseConfidence(v any) model.Confidence {
	switch x := v.(type) {
	case float64:
		return model.Confidence(math.Round(x))
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "explicit", "high":
			return model.ConfidenceExplicit
		case "implied", "medium":
			return model.ConfidenceImplied
		case "inferred", "low":
			return model.ConfidenceInferred
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil {
			return model.Confidence(math.Round(n))
		}
	}
	return model.ConfidenceUnknown
}
