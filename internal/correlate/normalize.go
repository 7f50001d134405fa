// Package correlate matches meetings to trips. It normalizes free-text
// locations, scores (meeting, trip) pairs with a table of named rules, groups
// meetings into candidate destinations and ranks scored candidates.
//
// Every function here is synchronous and pure: no I/O, no shared state.
// Callers resolve ids through the repo layer before calling in.
package correlate

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pkordes/tripmatch/internal/domain"
)

// virtualLocations are location texts that name a medium rather than a place.
var virtualLocations = map[string]bool{
	"online":          true,
	"virtual":         true,
	"remote":          true,
	"tbd":             true,
	"n/a":             true,
	"zoom":            true,
	"teams":           true,
	"microsoft teams": true,
	"google meet":     true,
	"webex":           true,
	"phone":           true,
}

// Normalize extracts a canonical city and country from free-text location.
//
// The city is the first comma-separated segment and the country the last one,
// so "Austin, TX, USA" yields {Austin, USA}. Text without a comma yields a
// city with an Unknown country. Blank, virtual ("Zoom", "online") or otherwise
// unusable input yields {Unknown, Unknown}. Normalize never fails.
func Normalize(text string) domain.CanonicalLocation {
	unknown := domain.CanonicalLocation{City: domain.UnknownLocation, Country: domain.UnknownLocation}

	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "://") {
		return unknown
	}

	cityPart, rest, hasComma := strings.Cut(text, ",")
	if virtualLocations[strings.ToLower(collapseSpaces(cityPart))] {
		return unknown
	}

	loc := unknown
	if city := titleCase(cityPart); city != "" {
		loc.City = city
	}
	if hasComma {
		segments := strings.Split(rest, ",")
		for i := len(segments) - 1; i >= 0; i-- {
			if country := titleCase(segments[i]); country != "" {
				loc.Country = country
				break
			}
		}
	}
	return loc
}

// Matches reports whether two location parts name the same place.
// Comparison is case- and whitespace-insensitive; Unknown and empty values
// never match anything, including each other.
func Matches(a, b string) bool {
	a, b = collapseSpaces(a), collapseSpaces(b)
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, domain.UnknownLocation) || strings.EqualFold(b, domain.UnknownLocation) {
		return false
	}
	return strings.EqualFold(a, b)
}

// locationKey is the grouping key for a canonical location.
func locationKey(l domain.CanonicalLocation) string {
	return strings.ToLower(l.City) + "|" + strings.ToLower(l.Country)
}

// titleCase trims and collapses whitespace, then title-cases each word.
// Short all-caps words are kept as written so "USA" and "UK" survive.
func titleCase(s string) string {
	words := strings.Fields(s)
	caser := cases.Title(language.Und)
	for i, w := range words {
		if isAcronym(w) {
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func isAcronym(w string) bool {
	if len(w) < 2 || len(w) > 3 {
		return false
	}
	for _, r := range w {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
