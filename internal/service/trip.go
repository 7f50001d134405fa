// Package service contains the business logic for the tripmatch API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripmatch/internal/correlate"
	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/repo"
)

// TripService implements business logic for Trip operations.
// Read-modify-write operations (Update, LinkMeeting, UnlinkMeeting) run as
// one unit of work through tx so concurrent writers cannot lose each other's
// changes.
type TripService struct {
	trips repo.TripRepo
	tx    repo.Transactor
}

// NewTripService constructs a TripService backed by the provided repos.
func NewTripService(trips repo.TripRepo, tx repo.Transactor) *TripService {
	return &TripService{trips: trips, tx: tx}
}

// Create validates and persists a new trip.
// An empty purpose defaults to "other".
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = withTripDefaults(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single trip by ID.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all trips. Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		return []domain.Trip{}, nil
	}
	return trips, nil
}

// ListPaged returns one page of trips and the total count.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update validates and updates an existing trip.
// Linked meetings are owned by LinkMeeting and UnlinkMeeting, so the stored
// meeting ids are kept and destination meeting ids are limited to them.
// A nil ContactIDs keeps the stored contacts.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var result domain.Trip
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		current, err := r.Trips.GetForUpdate(ctx, trip.ID)
		if err != nil {
			return fmt.Errorf("service.TripService.Update: %w", err)
		}
		trip.MeetingIDs = current.MeetingIDs
		if trip.ContactIDs == nil {
			trip.ContactIDs = current.ContactIDs
		}
		for i := range trip.Destinations {
			trip.Destinations[i].MeetingIDs = slices.DeleteFunc(trip.Destinations[i].MeetingIDs, func(id uuid.UUID) bool {
				return !current.HasMeeting(id)
			})
		}

		trip = withTripDefaults(trip)
		if err := validateTrip(trip); err != nil {
			return err
		}
		result, err = r.Trips.Update(ctx, trip)
		if err != nil {
			return fmt.Errorf("service.TripService.Update: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Trip{}, err
	}
	return result, nil
}

// Delete removes a trip by ID.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// LinkMeeting attaches a meeting to a trip. The meeting id is added to the
// trip, to the first destination whose city matches the meeting's normalized
// location, and the meeting's attendees join the trip's contacts.
// Linking an already linked meeting returns the trip unchanged.
//
// The meeting is locked before the trip, the same order MeetingService uses,
// so a meeting cannot be edited or deleted while it is being linked.
func (s *TripService) LinkMeeting(ctx context.Context, tripID, meetingID uuid.UUID) (domain.Trip, error) {
	var result domain.Trip
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		meeting, err := r.Meetings.GetForUpdate(ctx, meetingID)
		if err != nil {
			return err
		}
		trip, err := r.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if trip.HasMeeting(meetingID) {
			result = trip
			return nil
		}

		trip.MeetingIDs = append(trip.MeetingIDs, meetingID)
		city := correlate.Normalize(meeting.Location).City
		for i := range trip.Destinations {
			if correlate.Matches(trip.Destinations[i].City, city) {
				trip.Destinations[i].MeetingIDs = append(trip.Destinations[i].MeetingIDs, meetingID)
				break
			}
		}
		for _, id := range meeting.AttendeeIDs {
			if !slices.Contains(trip.ContactIDs, id) {
				trip.ContactIDs = append(trip.ContactIDs, id)
			}
		}

		result, err = r.Trips.Update(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.LinkMeeting: %w", err)
	}
	return result, nil
}

// UnlinkMeeting detaches a meeting from a trip and its destinations.
// Contacts added by the link are kept; they may have come from elsewhere.
// Returns domain.ErrNotFound if the meeting is not linked to the trip.
func (s *TripService) UnlinkMeeting(ctx context.Context, tripID, meetingID uuid.UUID) (domain.Trip, error) {
	var result domain.Trip
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		trip, err := r.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if !trip.HasMeeting(meetingID) {
			return fmt.Errorf("meeting %s not linked: %w", meetingID, domain.ErrNotFound)
		}

		isMeeting := func(id uuid.UUID) bool { return id == meetingID }
		trip.MeetingIDs = slices.DeleteFunc(trip.MeetingIDs, isMeeting)
		for i := range trip.Destinations {
			trip.Destinations[i].MeetingIDs = slices.DeleteFunc(trip.Destinations[i].MeetingIDs, isMeeting)
		}

		result, err = r.Trips.Update(ctx, trip)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.UnlinkMeeting: %w", err)
	}
	return result, nil
}

func withTripDefaults(trip domain.Trip) domain.Trip {
	if trip.Purpose == "" {
		trip.Purpose = domain.PurposeOther
	}
	if trip.MeetingIDs == nil {
		trip.MeetingIDs = []uuid.UUID{}
	}
	if trip.ContactIDs == nil {
		trip.ContactIDs = []uuid.UUID{}
	}
	if trip.Destinations == nil {
		trip.Destinations = []domain.Destination{}
	}
	return trip
}

// validateTrip enforces business rules common to both Create and Update.
//   - Title must be non-empty (whitespace-only titles are rejected).
//   - EndDate, if set, must not be before StartDate.
//   - Purpose must be a known tag.
//   - Every destination needs a city and a departure not before its arrival.
func validateTrip(trip domain.Trip) error {
	if strings.TrimSpace(trip.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if trip.EndDate != nil && trip.EndDate.Before(trip.StartDate) {
		return fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	if !trip.Purpose.IsValid() {
		return fmt.Errorf("%w: unknown purpose %q", domain.ErrValidation, trip.Purpose)
	}
	for i, d := range trip.Destinations {
		if strings.TrimSpace(d.City) == "" {
			return fmt.Errorf("%w: destinations[%d]: city is required", domain.ErrValidation, i)
		}
		if d.DepartureDate != nil && d.DepartureDate.Before(d.ArrivalDate) {
			return fmt.Errorf("%w: destinations[%d]: departure_date must not be before arrival_date", domain.ErrValidation, i)
		}
	}
	return nil
}
