// Package domain contains the core data types for the tripmatch service.
// This package depends only on uuid and is imported by every other
// internal package (correlate, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Purpose tags why a trip is being taken. It drives the keyword bonus in
// relevance scoring.
type Purpose string

const (
	PurposeClientVisit Purpose = "client_visit"
	PurposeConference  Purpose = "conference"
	PurposeSales       Purpose = "sales"
	PurposeTeamOffsite Purpose = "team_offsite"
	PurposeTraining    Purpose = "training"
	PurposePersonal    Purpose = "personal"
	PurposeOther       Purpose = "other"
)

// IsValid reports whether p is one of the known purposes.
func (p Purpose) IsValid() bool {
	switch p {
	case PurposeClientVisit, PurposeConference, PurposeSales,
		PurposeTeamOffsite, PurposeTraining, PurposePersonal, PurposeOther:
		return true
	default:
		return false
	}
}

// Trip represents a planned period of travel with one or more destinations.
// A trip is the top-level aggregate; destinations belong to exactly one trip
// and are persisted with it.
type Trip struct {
	ID           uuid.UUID     `json:"id"`
	Title        string        `json:"title"`
	Purpose      Purpose       `json:"purpose"`
	Destinations []Destination `json:"destinations"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      *time.Time    `json:"end_date,omitempty"` // nil when open-ended
	MeetingIDs   []uuid.UUID   `json:"meeting_ids"`
	// ContactIDs is the trip's known related-contacts list. Linking a meeting
	// adds its attendees here.
	ContactIDs []uuid.UUID `json:"contact_ids"`
	Notes      string      `json:"notes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// LastDay returns the final day of the trip. Open-ended trips are treated as
// single-day trips.
func (t Trip) LastDay() time.Time {
	if t.EndDate == nil {
		return t.StartDate
	}
	return *t.EndDate
}

// HasMeeting reports whether id is already linked to the trip.
func (t Trip) HasMeeting(id uuid.UUID) bool {
	for _, m := range t.MeetingIDs {
		if m == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate slices without touching
// the original.
func (t Trip) Clone() Trip {
	out := t
	out.MeetingIDs = append([]uuid.UUID(nil), t.MeetingIDs...)
	out.ContactIDs = append([]uuid.UUID(nil), t.ContactIDs...)
	out.Destinations = make([]Destination, len(t.Destinations))
	for i, d := range t.Destinations {
		out.Destinations[i] = d.Clone()
	}
	if t.EndDate != nil {
		ed := *t.EndDate
		out.EndDate = &ed
	}
	return out
}

// Destination is a city/country segment of a trip with its own date range.
// DepartureDate is nil when the traveller has no fixed departure yet.
type Destination struct {
	City          string      `json:"city"`
	Country       string      `json:"country"`
	ArrivalDate   time.Time   `json:"arrival_date"`
	DepartureDate *time.Time  `json:"departure_date,omitempty"`
	MeetingIDs    []uuid.UUID `json:"meeting_ids"`
}

// Clone returns a deep copy of the destination.
func (d Destination) Clone() Destination {
	out := d
	out.MeetingIDs = append([]uuid.UUID(nil), d.MeetingIDs...)
	if d.DepartureDate != nil {
		dd := *d.DepartureDate
		out.DepartureDate = &dd
	}
	return out
}
