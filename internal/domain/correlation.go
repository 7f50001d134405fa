package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnknownLocation is the sentinel used for any location text that cannot be
// parsed into a city or country.
const UnknownLocation = "Unknown"

// CanonicalLocation is the normalized form of a free-text meeting location.
type CanonicalLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// IsUnknown reports whether neither city nor country could be determined.
func (l CanonicalLocation) IsUnknown() bool {
	return l.City == UnknownLocation && l.Country == UnknownLocation
}

// String renders the location as "City, Country".
func (l CanonicalLocation) String() string {
	return l.City + ", " + l.Country
}

// Label buckets a relevance score into a human-readable priority.
type Label string

const (
	LabelHigh    Label = "high"
	LabelMedium  Label = "medium"
	LabelLow     Label = "low"
	LabelMinimal Label = "minimal"
)

// Rank orders labels so they can be compared; higher is more relevant.
// Unknown labels rank below minimal.
func (l Label) Rank() int {
	switch l {
	case LabelHigh:
		return 3
	case LabelMedium:
		return 2
	case LabelLow:
		return 1
	case LabelMinimal:
		return 0
	default:
		return -1
	}
}

// IsValid reports whether l is one of the four known labels.
func (l Label) IsValid() bool {
	return l.Rank() >= 0
}

// Contribution is the share of a relevance score produced by one scoring rule.
type Contribution struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

// RelevanceScore measures how strongly a meeting is associated with a trip.
// It is computed on demand and never stored.
type RelevanceScore struct {
	MeetingID uuid.UUID      `json:"meeting_id"`
	TripID    uuid.UUID      `json:"trip_id"`
	Score     int            `json:"score"`
	Label     Label          `json:"label"`
	Breakdown []Contribution `json:"breakdown"`
}

// ScoredMeeting pairs a meeting with its score for some trip, before ranking.
type ScoredMeeting struct {
	Meeting Meeting
	Score   int
}

// Suggestion is a ranked, labelled meeting candidate for a trip.
type Suggestion struct {
	Meeting Meeting `json:"meeting"`
	Score   int     `json:"score"`
	Label   Label   `json:"label"`
}

// DateRange is an inclusive span of time.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LocationCluster is a group of meetings sharing a normalized location,
// considered as a candidate trip destination.
type LocationCluster struct {
	Location  CanonicalLocation `json:"location"`
	Meetings  []Meeting         `json:"meetings"`
	DateRange DateRange         `json:"date_range"`
}
