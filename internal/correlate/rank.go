package correlate

import (
	"cmp"
	"slices"

	"github.com/pkordes/tripmatch/internal/domain"
)

// Label thresholds. Scores at or above a threshold earn its label.
const (
	highThreshold   = 5
	mediumThreshold = 3
	lowThreshold    = 1
)

// LabelFor buckets a score: ≥5 high, ≥3 medium, ≥1 low, otherwise minimal.
func LabelFor(score int) domain.Label {
	switch {
	case score >= highThreshold:
		return domain.LabelHigh
	case score >= mediumThreshold:
		return domain.LabelMedium
	case score >= lowThreshold:
		return domain.LabelLow
	default:
		return domain.LabelMinimal
	}
}

// Rank labels each scored meeting and sorts by descending score. Equal scores
// keep their input order, so ranking an already ranked list is a no-op.
// The input slice is not modified.
func Rank(pairs []domain.ScoredMeeting) []domain.Suggestion {
	out := make([]domain.Suggestion, len(pairs))
	for i, p := range pairs {
		out[i] = domain.Suggestion{Meeting: p.Meeting, Score: p.Score, Label: LabelFor(p.Score)}
	}
	slices.SortStableFunc(out, func(a, b domain.Suggestion) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// FilterMinLabel keeps suggestions labelled minLabel or better.
// An empty minLabel keeps everything.
func FilterMinLabel(suggestions []domain.Suggestion, minLabel domain.Label) []domain.Suggestion {
	out := make([]domain.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if minLabel == "" || s.Label.Rank() >= minLabel.Rank() {
			out = append(out, s)
		}
	}
	return out
}
