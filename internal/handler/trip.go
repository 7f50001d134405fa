package handler

import (
	"errors"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripmatch/internal/domain"
)

// Trip is the API representation of a domain.Trip.
type Trip struct {
	Id           openapi_types.UUID   `json:"id"`
	Title        string               `json:"title"`
	Purpose      string               `json:"purpose"`
	Destinations []Destination        `json:"destinations"`
	StartDate    openapi_types.Date   `json:"start_date"`
	EndDate      *openapi_types.Date  `json:"end_date,omitempty"`
	MeetingIds   []openapi_types.UUID `json:"meeting_ids"`
	ContactIds   []openapi_types.UUID `json:"contact_ids"`
	Notes        *string              `json:"notes,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Destination is one stop of a trip. MeetingIds is ignored on input for
// meetings that are not linked to the trip.
type Destination struct {
	City          string               `json:"city"`
	Country       *string              `json:"country,omitempty"`
	ArrivalDate   *openapi_types.Date  `json:"arrival_date"`
	DepartureDate *openapi_types.Date  `json:"departure_date,omitempty"`
	MeetingIds    []openapi_types.UUID `json:"meeting_ids"`
}

// TripRequest is the body of POST /trips and PUT /trips/{id}.
// Omitting contact_ids on update keeps the stored contacts.
type TripRequest struct {
	Title        string                `json:"title"`
	Purpose      *string               `json:"purpose,omitempty"`
	StartDate    *openapi_types.Date   `json:"start_date"`
	EndDate      *openapi_types.Date   `json:"end_date,omitempty"`
	Destinations []Destination         `json:"destinations,omitempty"`
	ContactIds   *[]openapi_types.UUID `json:"contact_ids,omitempty"`
	Notes        *string               `json:"notes,omitempty"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}
	trip, err := requestToTrip(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, err := pagination(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	trips, total, err := s.trips.ListPaged(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripList{Data: data, Pagination: toPagination(params, total)})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	var body TripRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}
	trip, err := requestToTrip(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}
	trip.ID = id

	updated, err := s.trips.Update(r.Context(), trip)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LinkMeeting handles PUT /trips/{id}/meetings/{meetingId}.
func (s *Server) LinkMeeting(w http.ResponseWriter, r *http.Request) {
	tripID, meetingID, err := tripMeetingIDs(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	trip, err := s.trips.LinkMeeting(r.Context(), tripID, meetingID)
	if err != nil {
		writeServiceError(w, r, err, "trip or meeting not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UnlinkMeeting handles DELETE /trips/{id}/meetings/{meetingId}.
func (s *Server) UnlinkMeeting(w http.ResponseWriter, r *http.Request) {
	tripID, meetingID, err := tripMeetingIDs(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	trip, err := s.trips.UnlinkMeeting(r.Context(), tripID, meetingID)
	if err != nil {
		writeServiceError(w, r, err, "trip not found or meeting not linked")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// --- mapping helpers --------------------------------------------------------

func tripMeetingIDs(r *http.Request) (openapi_types.UUID, openapi_types.UUID, error) {
	tripID, err := pathUUID(r, "id")
	if err != nil {
		return tripID, tripID, err
	}
	meetingID, err := pathUUID(r, "meetingId")
	return tripID, meetingID, err
}

// requestToTrip converts a TripRequest body into a domain.Trip.
// Returns an error if required fields are missing.
func requestToTrip(body TripRequest) (domain.Trip, error) {
	if body.StartDate == nil {
		return domain.Trip{}, errors.New("start_date is required")
	}
	t := domain.Trip{
		Title:        body.Title,
		Purpose:      domain.Purpose(derefString(body.Purpose)),
		StartDate:    body.StartDate.Time,
		Notes:        derefString(body.Notes),
		Destinations: make([]domain.Destination, len(body.Destinations)),
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		t.EndDate = &ed
	}
	if body.ContactIds != nil {
		t.ContactIDs = append([]openapi_types.UUID{}, *body.ContactIds...)
	}
	for i, d := range body.Destinations {
		if d.ArrivalDate == nil {
			return domain.Trip{}, errors.New("destinations: arrival_date is required")
		}
		dest := domain.Destination{
			City:        d.City,
			Country:     derefString(d.Country),
			ArrivalDate: d.ArrivalDate.Time,
			MeetingIDs:  d.MeetingIds,
		}
		if d.DepartureDate != nil {
			dd := d.DepartureDate.Time
			dest.DepartureDate = &dd
		}
		t.Destinations[i] = dest
	}
	return t, nil
}

// tripToResponse converts a domain.Trip into its API representation.
func tripToResponse(t domain.Trip) Trip {
	resp := Trip{
		Id:           t.ID,
		Title:        t.Title,
		Purpose:      string(t.Purpose),
		StartDate:    openapi_types.Date{Time: t.StartDate},
		MeetingIds:   nonNilIDs(t.MeetingIDs),
		ContactIds:   nonNilIDs(t.ContactIDs),
		Notes:        nilIfEmpty(t.Notes),
		Destinations: make([]Destination, len(t.Destinations)),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.EndDate != nil {
		ed := openapi_types.Date{Time: *t.EndDate}
		resp.EndDate = &ed
	}
	for i, d := range t.Destinations {
		dest := Destination{
			City:        d.City,
			Country:     nilIfEmpty(d.Country),
			ArrivalDate: &openapi_types.Date{Time: d.ArrivalDate},
			MeetingIds:  nonNilIDs(d.MeetingIDs),
		}
		if d.DepartureDate != nil {
			dest.DepartureDate = &openapi_types.Date{Time: *d.DepartureDate}
		}
		resp.Destinations[i] = dest
	}
	return resp
}

func nonNilIDs(ids []openapi_types.UUID) []openapi_types.UUID {
	if ids == nil {
		return []openapi_types.UUID{}
	}
	return ids
}
