// Package normalize provides pure text-to-value coercion helpers used by the
// keyword extractor and the LLM gateway. Nothing here panics or returns an
// error for bad input; callers get a false "ok" instead.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	separatorReplacer = strings.NewReplacer(",", "", "_", "")
	// k/m only scale when they stand alone: "10k", "2.5 m", never "40 machines".
	capacityNumberRe = regexp.MustCompile(`(\d{1,3}(?: \d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)(?:\s*([km])\b)?`)
	groupedNumberRe  = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	durationRe       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(minutes?|mins?|hours?|hrs?|h|days?|d|weeks?|wks?|w|months?|mos?)?\b`)
	percentRe        = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// NormalizeCapacity parses a capacity figure such as "1,500", "10k" or
// "2.5M units". Comma, underscore and space digit grouping is removed and a
// standalone k/m suffix scales by one thousand or one million; a unit word
// such as "members" or "machines" never does. Returns false when no digits
// are present.
func NormalizeCapacity(text string) (float64, bool) {
	s := separatorReplacer.Replace(strings.ToLower(strings.TrimSpace(text)))
	m := capacityNumberRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], " ", ""), 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "k":
		n *= 1000
	case "m":
		n *= 1000000
	}
	return n, true
}

// ExtractNumbers returns every numeric literal in text, with grouping commas
// removed. Literals that fail to parse are dropped.
func ExtractNumbers(text string) []float64 {
	matches := groupedNumberRe.FindAllString(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// NormalizeText lowercases, trims and collapses internal whitespace.
func NormalizeText(text string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// Capitalize title-cases each word of text after normalizing whitespace.
func Capitalize(text string) string {
	s := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

// ParseDuration converts a number plus unit phrase to hours. Days count as
// 24 hours, weeks as 168 and months as 720. A bare number is read as hours.
func ParseDuration(text string) (float64, bool) {
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	unit := strings.ToLower(m[2])
	switch {
	case unit == "":
		return n, true
	case strings.HasPrefix(unit, "min"):
		return n / 60, true
	case strings.HasPrefix(unit, "h"):
		return n, true
	case strings.HasPrefix(unit, "d"):
		return n * 24, true
	case strings.HasPrefix(unit, "w"):
		return n * 168, true
	case strings.HasPrefix(unit, "mo"):
		return n * 720, true
	}
	return n, true
}

// ParsePercentage reads a percentage. Values in [0, 1] are taken as
// already-decimal; larger values are divided by 100. Negative values are
// rejected.
func ParsePercentage(text string) (float64, bool) {
	m := percentRe.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(n) || n < 0 {
		return 0, false
	}
	if n <= 1 {
		return n, true
	}
	return n / 100, true
}

// Hours reads a lead time in hours from a JSON-shaped value: a number, a
// phrase such as "3 days", or a {"value": 3, "unit": "days"} object.
func Hours(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		return ParseDuration(x)
	case map[string]any:
		inner, ok := x["value"]
		if !ok {
			return 0, false
		}
		if unit, ok := x["unit"].(string); ok && strings.TrimSpace(unit) != "" {
			if n, ok := inner.(float64); ok {
				return ParseDuration(strconv.FormatFloat(n, 'f', -1, 64) + " " + unit)
			}
		}
		return Hours(inner)
	}
	return 0, false
}
