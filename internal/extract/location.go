package extract

import (
	"regexp"
	"strings"

	"github.com/youcodecowboy/disco-grid-sub000/internal/model"
)

var (
	locationPhraseRe = regexp.MustCompile(
		`\b(?i:based in|located in|headquartered in|in|at)\s+` +
			`([A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+){0,2})` +
			`(?:,\s*([A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+){0,2}))?`)
	capitalizedRunRe = regexp.MustCompile(`\b[A-Z][a-zA-Z]+(?:\s[A-Z][a-zA-Z]+){0,3}`)
	stateCodeRe      = regexp.MustCompile(`^[A-Z]{2}$`)
)

// notPlaces are capitalized words that commonly follow "in"/"at" without
// naming a place.
var notPlaces = map[string]bool{
	"january": true, "february": true, "march": true, "april": true, "may": true,
	"june": true, "july": true, "august": true, "september": true, "october": true,
	"november": true, "december": true, "monday": true, "tuesday": true,
	"wednesday": true, "thursday": true, "friday": true, "saturday": true,
	"sunday": true, "the": true, "our": true, "we": true, "a": true, "an": true,
	"excel": true, "erp": true, "house": true, "total": true, "first": true,
	"production": true, "sales": true, "stock": true, "quality": true,
	"assembly": true, "shipping": true, "google": true, "quickbooks": true,
	"sap": true, "netsuite": true,
}

// locations runs the phrase pass, then falls back to a city-table scan of
// capitalized tokens only when the phrase pass found nothing.
func (x *Extractor) locations(text string) []model.Entity {
	if found := x.locationPhrases(text); len(found) > 0 {
		return found
	}
	return x.locationTokens(text)
}

func (x *Extractor) locationPhrases(text string) []model.Entity {
	var out []model.Entity
	for _, m := range locationPhraseRe.FindAllStringSubmatch(text, -1) {
		city := m[1]
		if notPlaces[strings.ToLower(strings.Fields(city)[0])] {
			continue
		}
		value := map[string]any{"city": city}
		conf := model.ConfidenceImplied
		if region := m[2]; region != "" {
			conf = model.ConfidenceExplicit
			if stateCodeRe.MatchString(region) {
				value["state"] = region
			} else {
				value["country"] = region
			}
		} else if info, ok := x.cities.Lookup(city); ok {
			value["country"] = info.Country
		}
		out = append(out, entity("location", value, conf, m[0]))
	}
	return out
}

func (x *Extractor) locationTokens(text string) []model.Entity {
	var out []model.Entity
	for _, run := range capitalizedRunRe.FindAllString(text, -1) {
		words := strings.Fields(run)
		for i := 0; i < len(words); {
			n := x.longestCity(words[i:])
			if n == 0 {
				i++
				continue
			}
			city := strings.Join(words[i:i+n], " ")
			info, _ := x.cities.Lookup(city)
			out = append(out, entity("location",
				map[string]any{"city": city, "country": info.Country},
				model.ConfidenceImplied, city))
			i += n
		}
	}
	return out
}

// longestCity returns how many leading words of ws form a known city.
func (x *Extractor) longestCity(ws []string) int {
	for n := len(ws); n > 0; n-- {
		if _, ok := x.cities.Lookup(strings.Join(ws[:n], " ")); ok {
			return n
		}
	}
	return 0
}
