package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripmatch/internal/correlate"
	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/repo"
)

// CorrelationService runs the correlate package over stored meetings and
// trips. Scores and clusters are computed per call and never persisted.
type CorrelationService struct {
	meetings repo.MeetingRepo
	trips    repo.TripRepo
	tx       repo.Transactor
	scorer   *correlate.Scorer
}

// NewCorrelationService constructs a CorrelationService. A nil scorer uses
// correlate.NewScorer with its default rules.
func NewCorrelationService(meetings repo.MeetingRepo, trips repo.TripRepo, tx repo.Transactor, scorer *correlate.Scorer) *CorrelationService {
	if scorer == nil {
		scorer = correlate.NewScorer()
	}
	return &CorrelationService{meetings: meetings, trips: trips, tx: tx, scorer: scorer}
}

// PlanRequest describes a trip to derive from a set of meetings.
type PlanRequest struct {
	Title      string
	Purpose    domain.Purpose
	Notes      string
	MeetingIDs []uuid.UUID
}

// Score returns the relevance of one meeting to one trip.
func (s *CorrelationService) Score(ctx context.Context, meetingID, tripID uuid.UUID) (domain.RelevanceScore, error) {
	meeting, err := s.meetings.GetByID(ctx, meetingID)
	if err != nil {
		return domain.RelevanceScore{}, fmt.Errorf("service.CorrelationService.Score: %w", err)
	}
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.RelevanceScore{}, fmt.Errorf("service.CorrelationService.Score: %w", err)
	}
	return s.scorer.Relevance(meeting, trip), nil
}

// Suggest ranks every meeting not yet linked to the trip, best first, and
// drops those labelled below minLabel. An empty minLabel keeps all.
func (s *CorrelationService) Suggest(ctx context.Context, tripID uuid.UUID, minLabel domain.Label) ([]domain.Suggestion, error) {
	if minLabel != "" && !minLabel.IsValid() {
		return nil, fmt.Errorf("service.CorrelationService.Suggest: %w: unknown label %q", domain.ErrValidation, minLabel)
	}
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.CorrelationService.Suggest: %w", err)
	}
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CorrelationService.Suggest: %w", err)
	}

	pairs := make([]domain.ScoredMeeting, 0, len(meetings))
	for _, m := range meetings {
		if trip.HasMeeting(m.ID) {
			continue
		}
		pairs = append(pairs, domain.ScoredMeeting{Meeting: m, Score: s.scorer.Score(m, trip).Score})
	}
	return correlate.FilterMinLabel(correlate.Rank(pairs), minLabel), nil
}

// Clusters groups all stored meetings into candidate destinations.
func (s *CorrelationService) Clusters(ctx context.Context) ([]domain.LocationCluster, error) {
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CorrelationService.Clusters: %w", err)
	}
	return correlate.Cluster(meetings), nil
}

// PlanTrip builds a trip from meetings and persists it. Each location the
// meetings share becomes a destination, the trip spans the meetings' days,
// and every attendee becomes a trip contact. Duplicate ids are ignored.
// The meetings stay locked until the trip is stored, so none of them can be
// changed or deleted in between.
func (s *CorrelationService) PlanTrip(ctx context.Context, req PlanRequest) (domain.Trip, error) {
	if len(req.MeetingIDs) == 0 {
		return domain.Trip{}, fmt.Errorf("service.CorrelationService.PlanTrip: %w: at least one meeting is required", domain.ErrValidation)
	}
	var ids []uuid.UUID
	for _, id := range req.MeetingIDs {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	var result domain.Trip
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		// Lock in id order so two overlapping plans cannot deadlock.
		lockOrder := slices.Clone(ids)
		slices.SortFunc(lockOrder, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
		byID := make(map[uuid.UUID]domain.Meeting, len(ids))
		for _, id := range lockOrder {
			m, err := r.Meetings.GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("meeting %s: %w", id, err)
			}
			byID[id] = m
		}
		meetings := make([]domain.Meeting, 0, len(ids))
		for _, id := range ids {
			meetings = append(meetings, byID[id])
		}

		trip, err := planTrip(req, meetings)
		if err != nil {
			return err
		}
		result, err = r.Trips.Create(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.CorrelationService.PlanTrip: %w", err)
	}
	return result, nil
}

// planTrip derives an unsaved trip from meetings given in request order.
// Meetings without a usable location are linked but become no destination;
// if none has one there is nowhere to travel and the plan is rejected.
func planTrip(req PlanRequest, meetings []domain.Meeting) (domain.Trip, error) {
	slices.SortStableFunc(meetings, func(a, b domain.Meeting) int {
		return a.StartTime.Compare(b.StartTime)
	})
	groups := correlate.Group(meetings)
	if len(groups) == 0 {
		return domain.Trip{}, fmt.Errorf("%w: none of the meetings has a physical location", domain.ErrValidation)
	}

	trip := domain.Trip{
		Title:        strings.TrimSpace(req.Title),
		Purpose:      req.Purpose,
		Notes:        req.Notes,
		Destinations: make([]domain.Destination, 0, len(groups)),
		MeetingIDs:   make([]uuid.UUID, 0, len(meetings)),
		ContactIDs:   []uuid.UUID{},
	}
	if trip.Title == "" {
		cities := make([]string, 0, len(groups))
		for _, c := range groups {
			cities = append(cities, c.Location.City)
		}
		trip.Title = "Trip to " + strings.Join(cities, ", ")
	}

	var last time.Time
	for _, m := range meetings {
		trip.MeetingIDs = append(trip.MeetingIDs, m.ID)
		for _, c := range m.AttendeeIDs {
			if !slices.Contains(trip.ContactIDs, c) {
				trip.ContactIDs = append(trip.ContactIDs, c)
			}
		}
		end := m.EndTime
		if end.Before(m.StartTime) {
			end = m.StartTime
		}
		if end.After(last) {
			last = end
		}
	}
	trip.StartDate = calendarDay(meetings[0].StartTime)
	end := calendarDay(last)
	trip.EndDate = &end

	for _, c := range groups {
		d := domain.Destination{
			City:        c.Location.City,
			ArrivalDate: calendarDay(c.DateRange.Start),
			MeetingIDs:  make([]uuid.UUID, 0, len(c.Meetings)),
		}
		if c.Location.Country != domain.UnknownLocation {
			d.Country = c.Location.Country
		}
		departure := calendarDay(c.DateRange.End)
		d.DepartureDate = &departure
		for _, m := range c.Meetings {
			d.MeetingIDs = append(d.MeetingIDs, m.ID)
		}
		trip.Destinations = append(trip.Destinations, d)
	}

	trip = withTripDefaults(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// NormalizeLocation exposes the location normalizer.
func (s *CorrelationService) NormalizeLocation(text string) domain.CanonicalLocation {
	return correlate.Normalize(text)
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
