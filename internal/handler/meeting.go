package handler

import (
	"errors"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripmatch/internal/domain"
)

// Meeting is the API representation of a domain.Meeting.
type Meeting struct {
	Id          openapi_types.UUID   `json:"id"`
	Title       string               `json:"title"`
	StartTime   time.Time            `json:"start_time"`
	EndTime     time.Time            `json:"end_time"`
	Location    *string              `json:"location,omitempty"`
	AttendeeIds []openapi_types.UUID `json:"attendee_ids"`
	Type        *string              `json:"type,omitempty"`
	Status      string               `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// MeetingRequest is the body of POST /meetings and PUT /meetings/{id}.
type MeetingRequest struct {
	Title       string               `json:"title"`
	StartTime   *time.Time           `json:"start_time"`
	EndTime     *time.Time           `json:"end_time"`
	Location    *string              `json:"location,omitempty"`
	AttendeeIds []openapi_types.UUID `json:"attendee_ids,omitempty"`
	Type        *string              `json:"type,omitempty"`
	Status      *string              `json:"status,omitempty"`
}

// MeetingList is the body of GET /meetings.
type MeetingList struct {
	Data       []Meeting  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// CreateMeeting handles POST /meetings.
func (s *Server) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var body MeetingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}
	m, err := requestToMeeting(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	created, err := s.meetings.Create(r.Context(), m)
	if err != nil {
		writeServiceError(w, r, err, "attendee not found")
		return
	}
	writeJSON(w, http.StatusCreated, meetingToResponse(created))
}

// ListMeetings handles GET /meetings.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListMeetings(w http.ResponseWriter, r *http.Request) {
	params, err := pagination(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	meetings, total, err := s.meetings.ListPaged(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err, "meeting not found")
		return
	}
	writeJSON(w, http.StatusOK, MeetingList{
		Data:       meetingsToResponse(meetings),
		Pagination: toPagination(params, total),
	})
}

// GetMeeting handles GET /meetings/{id}.
func (s *Server) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	m, err := s.meetings.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "meeting not found")
		return
	}
	writeJSON(w, http.StatusOK, meetingToResponse(m))
}

// UpdateMeeting handles PUT /meetings/{id}.
// A meeting linked to any trip cannot be changed (409).
func (s *Server) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	var body MeetingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}
	m, err := requestToMeeting(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}
	m.ID = id

	updated, err := s.meetings.Update(r.Context(), m)
	if err != nil {
		writeServiceError(w, r, err, "meeting not found")
		return
	}
	writeJSON(w, http.StatusOK, meetingToResponse(updated))
}

// DeleteMeeting handles DELETE /meetings/{id}.
func (s *Server) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	if err := s.meetings.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "meeting not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// requestToMeeting converts a MeetingRequest body into a domain.Meeting.
// Returns an error if required fields are missing.
func requestToMeeting(body MeetingRequest) (domain.Meeting, error) {
	if body.StartTime == nil {
		return domain.Meeting{}, errors.New("start_time is required")
	}
	m := domain.Meeting{
		Title:       body.Title,
		StartTime:   *body.StartTime,
		EndTime:     *body.StartTime,
		Location:    derefString(body.Location),
		AttendeeIDs: body.AttendeeIds,
		Type:        domain.MeetingType(derefString(body.Type)),
		Status:      domain.MeetingStatus(derefString(body.Status)),
	}
	if body.EndTime != nil {
		m.EndTime = *body.EndTime
	}
	return m, nil
}

func meetingToResponse(m domain.Meeting) Meeting {
	attendees := m.AttendeeIDs
	if attendees == nil {
		attendees = []openapi_types.UUID{}
	}
	return Meeting{
		Id:          m.ID,
		Title:       m.Title,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		Location:    nilIfEmpty(m.Location),
		AttendeeIds: attendees,
		Type:        nilIfEmpty(string(m.Type)),
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func meetingsToResponse(meetings []domain.Meeting) []Meeting {
	out := make([]Meeting, len(meetings))
	for i, m := range meetings {
		out[i] = meetingToResponse(m)
	}
	return out
}
