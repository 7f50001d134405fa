package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/repo"
)

// MeetingService implements business logic for Meeting operations.
// Update and Delete lock the meeting and check its trip links in the same
// unit of work as the write, so a concurrent link cannot slip in between.
type MeetingService struct {
	meetings repo.MeetingRepo
	contacts repo.ContactRepo
	tx       repo.Transactor
}

// NewMeetingService constructs a MeetingService backed by the provided repos.
func NewMeetingService(meetings repo.MeetingRepo, contacts repo.ContactRepo, tx repo.Transactor) *MeetingService {
	return &MeetingService{meetings: meetings, contacts: contacts, tx: tx}
}

// Create validates the meeting, verifies its attendees exist, then persists.
// Returns domain.ErrValidation for invalid input and domain.ErrNotFound for
// an unknown attendee.
func (s *MeetingService) Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	m = withMeetingDefaults(m)
	if err := validateMeeting(m); err != nil {
		return domain.Meeting{}, err
	}
	if err := checkAttendees(ctx, s.contacts, m.AttendeeIDs); err != nil {
		return domain.Meeting{}, fmt.Errorf("service.MeetingService.Create: %w", err)
	}
	result, err := s.meetings.Create(ctx, m)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("service.MeetingService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single meeting by ID.
func (s *MeetingService) GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	result, err := s.meetings.GetByID(ctx, id)
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("service.MeetingService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all meetings by start time. Always returns a non-nil slice.
func (s *MeetingService) List(ctx context.Context) ([]domain.Meeting, error) {
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.MeetingService.List: %w", err)
	}
	if meetings == nil {
		return []domain.Meeting{}, nil
	}
	return meetings, nil
}

// ListPaged returns one page of meetings and the total count.
func (s *MeetingService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error) {
	meetings, total, err := s.meetings.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.MeetingService.ListPaged: %w", err)
	}
	if meetings == nil {
		meetings = []domain.Meeting{}
	}
	return meetings, total, nil
}

// Update validates and persists changes to a meeting.
// Returns domain.ErrConflict if any trip links the meeting.
func (s *MeetingService) Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	m = withMeetingDefaults(m)
	if err := validateMeeting(m); err != nil {
		return domain.Meeting{}, err
	}

	var result domain.Meeting
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		if err := lockUnlinked(ctx, r, m.ID); err != nil {
			return err
		}
		if err := checkAttendees(ctx, r.Contacts, m.AttendeeIDs); err != nil {
			return err
		}
		var err error
		result, err = r.Meetings.Update(ctx, m)
		return err
	})
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("service.MeetingService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a meeting by ID.
// Returns domain.ErrConflict if any trip links the meeting.
func (s *MeetingService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		if err := lockUnlinked(ctx, r, id); err != nil {
			return err
		}
		return r.Meetings.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("service.MeetingService.Delete: %w", err)
	}
	return nil
}

// lockUnlinked locks the meeting, then fails with domain.ErrConflict if any
// trip links it. Links take the same meeting lock first.
func lockUnlinked(ctx context.Context, r repo.Repos, id uuid.UUID) error {
	if _, err := r.Meetings.GetForUpdate(ctx, id); err != nil {
		return err
	}
	trips, err := r.Trips.ListByMeetingID(ctx, id)
	if err != nil {
		return err
	}
	if len(trips) > 0 {
		return fmt.Errorf("%w: meeting is linked to trip %s", domain.ErrConflict, trips[0].ID)
	}
	return nil
}

func checkAttendees(ctx context.Context, contacts repo.ContactRepo, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := contacts.GetByID(ctx, id); err != nil {
			return fmt.Errorf("attendee %s: %w", id, err)
		}
	}
	return nil
}

func withMeetingDefaults(m domain.Meeting) domain.Meeting {
	m.Title = strings.TrimSpace(m.Title)
	m.Location = strings.TrimSpace(m.Location)
	if m.Status == "" {
		m.Status = domain.MeetingStatusScheduled
	}
	if m.AttendeeIDs == nil {
		m.AttendeeIDs = []uuid.UUID{}
	}
	return m
}

// validateMeeting enforces business rules common to both Create and Update.
func validateMeeting(m domain.Meeting) error {
	if m.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if m.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", domain.ErrValidation)
	}
	if m.EndTime.Before(m.StartTime) {
		return fmt.Errorf("%w: end_time must not be before start_time", domain.ErrValidation)
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", domain.ErrValidation, m.Type)
	}
	if !m.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, m.Status)
	}
	return nil
}
