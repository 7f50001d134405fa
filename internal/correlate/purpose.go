package correlate

import (
	"strings"
	"unicode"

	"github.com/pkordes/tripmatch/internal/domain"
)

// maxPurposeBonus caps the keyword contribution to a relevance score.
const maxPurposeBonus = 2

// PurposeMatcher decides how strongly a meeting title fits a trip purpose.
// Bonus must return a value in [0, 2].
type PurposeMatcher interface {
	Bonus(title string, purpose domain.Purpose) int
}

// PurposeMatcherFunc adapts a plain function to PurposeMatcher.
type PurposeMatcherFunc func(title string, purpose domain.Purpose) int

// Bonus calls f.
func (f PurposeMatcherFunc) Bonus(title string, purpose domain.Purpose) int {
	return f(title, purpose)
}

// DefaultPurposeKeywords is the keyword table used by DefaultKeywordMatcher.
// Purposes without keywords never earn a bonus.
var DefaultPurposeKeywords = map[domain.Purpose][]string{
	domain.PurposeClientVisit: {"client", "customer", "account", "partner"},
	domain.PurposeConference:  {"conference", "summit", "keynote", "expo", "panel"},
	domain.PurposeSales:       {"sales", "pitch", "demo", "deal", "prospect"},
	domain.PurposeTeamOffsite: {"offsite", "team", "planning", "retro"},
	domain.PurposeTraining:    {"training", "workshop", "course", "onboarding"},
}

// KeywordMatcher awards one point per distinct purpose keyword found at the
// start of a title word, capped at two. "Clients" therefore matches "client".
type KeywordMatcher struct {
	keywords map[domain.Purpose][]string
}

// NewKeywordMatcher builds a matcher from a purpose→keywords table.
// Keywords are matched case-insensitively.
func NewKeywordMatcher(table map[domain.Purpose][]string) *KeywordMatcher {
	kw := make(map[domain.Purpose][]string, len(table))
	for p, words := range table {
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				kw[p] = append(kw[p], w)
			}
		}
	}
	return &KeywordMatcher{keywords: kw}
}

// DefaultKeywordMatcher returns a matcher over DefaultPurposeKeywords.
func DefaultKeywordMatcher() *KeywordMatcher {
	return NewKeywordMatcher(DefaultPurposeKeywords)
}

// Bonus implements PurposeMatcher.
func (k *KeywordMatcher) Bonus(title string, purpose domain.Purpose) int {
	keywords := k.keywords[purpose]
	if len(keywords) == 0 {
		return 0
	}
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	hits := 0
	for _, kw := range keywords {
		for _, w := range words {
			if strings.HasPrefix(w, kw) {
				hits++
				break
			}
		}
		if hits == maxPurposeBonus {
			break
		}
	}
	return hits
}
