package correlate

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripmatch/internal/domain"
)

// Rule names, as reported in a score breakdown.
const (
	RuleLocation      = "location"
	RuleDateInRange   = "date_in_range"
	RuleDateProximity = "date_proximity"
	RuleAttendees     = "attendees"
	RulePurpose       = "purpose"
)

// proximityWindowDays is how far outside a trip a meeting may start and
// still earn proximity points.
const proximityWindowDays = 3

// Rule is one named, weighted term of the relevance score. Eval returns a
// multiplier; the rule contributes Weight*Eval points, floored at zero.
type Rule struct {
	Name   string
	Weight int
	Eval   func(m domain.Meeting, t domain.Trip) int
}

// Result is the outcome of scoring one (meeting, trip) pair.
type Result struct {
	Score     int
	Breakdown []domain.Contribution
}

// Scorer computes relevance scores from a rule table. A Scorer is immutable
// after construction and safe for concurrent use.
type Scorer struct {
	rules []Rule
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithPurposeMatcher swaps the strategy behind the purpose rule.
func WithPurposeMatcher(pm PurposeMatcher) Option {
	return func(s *Scorer) {
		for i := range s.rules {
			if s.rules[i].Name == RulePurpose {
				s.rules[i].Eval = purposeRule(pm)
			}
		}
	}
}

// WithRules replaces the whole rule table.
func WithRules(rules ...Rule) Option {
	return func(s *Scorer) {
		s.rules = append([]Rule(nil), rules...)
	}
}

// DefaultRules returns the standard rule table:
//
//	location        3  meeting city or country matches any destination
//	date_in_range   5  meeting starts within the trip's days
//	date_proximity  1  per day closer than 3 days to the trip, when outside it
//	attendees       1  per attendee in the trip's related contacts
//	purpose         1  per keyword bonus point from pm (0-2)
func DefaultRules(pm PurposeMatcher) []Rule {
	return []Rule{
		{Name: RuleLocation, Weight: 3, Eval: locationRule},
		{Name: RuleDateInRange, Weight: 5, Eval: dateInRangeRule},
		{Name: RuleDateProximity, Weight: 1, Eval: dateProximityRule},
		{Name: RuleAttendees, Weight: 1, Eval: attendeesRule},
		{Name: RulePurpose, Weight: 1, Eval: purposeRule(pm)},
	}
}

// NewScorer returns a Scorer using DefaultRules with DefaultKeywordMatcher,
// adjusted by opts.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{rules: DefaultRules(DefaultKeywordMatcher())}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns a copy of the scorer's rule table.
func (s *Scorer) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Score evaluates every rule against (m, t). The total is never negative.
// Rules that contribute nothing are left out of the breakdown.
func (s *Scorer) Score(m domain.Meeting, t domain.Trip) Result {
	res := Result{Breakdown: []domain.Contribution{}}
	for _, r := range s.rules {
		pts := r.Weight * r.Eval(m, t)
		if pts <= 0 {
			continue
		}
		res.Score += pts
		res.Breakdown = append(res.Breakdown, domain.Contribution{Rule: r.Name, Points: pts})
	}
	return res
}

// Relevance scores (m, t) and wraps the result with ids and a label.
func (s *Scorer) Relevance(m domain.Meeting, t domain.Trip) domain.RelevanceScore {
	res := s.Score(m, t)
	return domain.RelevanceScore{
		MeetingID: m.ID,
		TripID:    t.ID,
		Score:     res.Score,
		Label:     LabelFor(res.Score),
		Breakdown: res.Breakdown,
	}
}

func locationRule(m domain.Meeting, t domain.Trip) int {
	loc := Normalize(m.Location)
	if loc.IsUnknown() {
		return 0
	}
	for _, d := range t.Destinations {
		if Matches(loc.City, d.City) || Matches(loc.Country, d.Country) {
			return 1
		}
	}
	return 0
}

func dateInRangeRule(m domain.Meeting, t domain.Trip) int {
	if daysOutside(m, t) == 0 {
		return 1
	}
	return 0
}

func dateProximityRule(m domain.Meeting, t domain.Trip) int {
	d := daysOutside(m, t)
	if d == 0 || d >= proximityWindowDays {
		return 0
	}
	return proximityWindowDays - d
}

func attendeesRule(m domain.Meeting, t domain.Trip) int {
	if len(t.ContactIDs) == 0 {
		return 0
	}
	known := make(map[uuid.UUID]struct{}, len(t.ContactIDs))
	for _, id := range t.ContactIDs {
		known[id] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(m.AttendeeIDs))
	shared := 0
	for _, id := range m.AttendeeIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := known[id]; ok {
			shared++
		}
	}
	return shared
}

func purposeRule(pm PurposeMatcher) func(domain.Meeting, domain.Trip) int {
	return func(m domain.Meeting, t domain.Trip) int {
		if pm == nil {
			return 0
		}
		b := pm.Bonus(m.Title, t.Purpose)
		return min(max(b, 0), maxPurposeBonus)
	}
}

// daysOutside returns how many calendar days the meeting's start lies
// outside the trip's inclusive day range; 0 means inside.
func daysOutside(m domain.Meeting, t domain.Trip) int {
	day := calendarDay(m.StartTime)
	first, last := calendarDay(t.StartDate), calendarDay(t.LastDay())
	if last.Before(first) {
		last = first
	}
	switch {
	case day.Before(first):
		return daysBetween(day, first)
	case day.After(last):
		return daysBetween(last, day)
	default:
		return 0
	}
}

// calendarDay truncates t to midnight UTC of its UTC date.
func calendarDay(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
