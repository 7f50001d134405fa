package correlate

import (
	"slices"
	"strings"
	"time"

	"github.com/pkordes/tripmatch/internal/domain"
)

// strategicAttendeeCount is the attendee count above which a meeting is
// strategic on its own.
const strategicAttendeeCount = 5

// strategicTitleWords mark a meeting as strategic when found in its title.
var strategicTitleWords = []string{"client", "conference"}

// Cluster groups meetings by normalized location and keeps only the groups
// worth proposing as a destination: more than one meeting, a date span longer
// than a day, or at least one strategic meeting. Other groups are dropped
// silently. Meetings with an unknown location are never clustered.
//
// Clusters appear in the order their location first occurs in meetings.
func Cluster(meetings []domain.Meeting) []domain.LocationCluster {
	groups := Group(meetings)
	out := make([]domain.LocationCluster, 0, len(groups))
	for _, c := range groups {
		if retain(c) {
			out = append(out, c)
		}
	}
	return out
}

// Group is Cluster without the retention filter.
func Group(meetings []domain.Meeting) []domain.LocationCluster {
	var clusters []domain.LocationCluster
	index := make(map[string]int)

	for _, m := range meetings {
		loc := Normalize(m.Location)
		if loc.IsUnknown() {
			continue
		}
		key := locationKey(loc)
		i, ok := index[key]
		if !ok {
			i = len(clusters)
			index[key] = i
			clusters = append(clusters, domain.LocationCluster{Location: loc})
		}
		clusters[i].Meetings = append(clusters[i].Meetings, m.Clone())
	}

	for i := range clusters {
		c := &clusters[i]
		slices.SortStableFunc(c.Meetings, func(a, b domain.Meeting) int {
			return a.StartTime.Compare(b.StartTime)
		})
		c.DateRange = spanOf(c.Meetings)
	}
	return clusters
}

// IsStrategic reports whether a meeting alone justifies a destination: a
// title mentioning a client or conference, or more than five attendees.
func IsStrategic(m domain.Meeting) bool {
	if len(m.AttendeeIDs) > strategicAttendeeCount {
		return true
	}
	title := strings.ToLower(m.Title)
	for _, w := range strategicTitleWords {
		if strings.Contains(title, w) {
			return true
		}
	}
	return false
}

func retain(c domain.LocationCluster) bool {
	if len(c.Meetings) > 1 {
		return true
	}
	if c.DateRange.End.Sub(c.DateRange.Start) > 24*time.Hour {
		return true
	}
	return slices.ContainsFunc(c.Meetings, IsStrategic)
}

// spanOf returns the earliest start and latest end across meetings.
// A meeting whose end precedes its start is treated as instantaneous.
func spanOf(meetings []domain.Meeting) domain.DateRange {
	var r domain.DateRange
	for i, m := range meetings {
		end := m.EndTime
		if end.Before(m.StartTime) {
			end = m.StartTime
		}
		if i == 0 || m.StartTime.Before(r.Start) {
			r.Start = m.StartTime
		}
		if i == 0 || end.After(r.End) {
			r.End = end
		}
	}
	return r
}
