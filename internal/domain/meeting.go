package domain

import (
	"time"

	"github.com/google/uuid"
)

// MeetingType classifies a meeting. Empty is allowed and means unspecified.
type MeetingType string

const (
	MeetingTypeInternal   MeetingType = "internal"
	MeetingTypeClient     MeetingType = "client"
	MeetingTypeConference MeetingType = "conference"
	MeetingTypeOneOnOne   MeetingType = "one_on_one"
)

// IsValid reports whether t is empty or one of the known types.
func (t MeetingType) IsValid() bool {
	switch t {
	case "", MeetingTypeInternal, MeetingTypeClient, MeetingTypeConference, MeetingTypeOneOnOne:
		return true
	default:
		return false
	}
}

// MeetingStatus is the lifecycle state of a meeting. Empty defaults to scheduled.
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusTentative MeetingStatus = "tentative"
	MeetingStatusCancelled MeetingStatus = "cancelled"
	MeetingStatusCompleted MeetingStatus = "completed"
)

// IsValid reports whether s is one of the known statuses.
func (s MeetingStatus) IsValid() bool {
	switch s {
	case MeetingStatusScheduled, MeetingStatusTentative, MeetingStatusCancelled, MeetingStatusCompleted:
		return true
	default:
		return false
	}
}

// Meeting is a scheduled event with attendees, a time range and an optional
// free-text location. Once linked to a trip it is read-only.
type Meeting struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Location    string        `json:"location,omitempty"`
	AttendeeIDs []uuid.UUID   `json:"attendee_ids"`
	Type        MeetingType   `json:"type,omitempty"`
	Status      MeetingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Clone returns a copy whose attendee slice is not shared with m.
func (m Meeting) Clone() Meeting {
	out := m
	out.AttendeeIDs = append([]uuid.UUID(nil), m.AttendeeIDs...)
	return out
}
