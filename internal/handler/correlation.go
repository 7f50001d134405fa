package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/service"
)

// Location is a normalized {city, country} pair.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// NormalizedLocation is the body of GET /locations/normalize.
type NormalizedLocation struct {
	Input   string `json:"input"`
	City    string `json:"city"`
	Country string `json:"country"`
	Unknown bool   `json:"unknown"`
}

// RuleContribution is one line of a score breakdown.
type RuleContribution struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

// RelevanceScore is the body of GET /trips/{id}/meetings/{meetingId}/score.
type RelevanceScore struct {
	MeetingId openapi_types.UUID `json:"meeting_id"`
	TripId    openapi_types.UUID `json:"trip_id"`
	Score     int                `json:"score"`
	Label     string             `json:"label"`
	Breakdown []RuleContribution `json:"breakdown"`
}

// Suggestion is one ranked meeting candidate.
type Suggestion struct {
	Meeting Meeting `json:"meeting"`
	Score   int     `json:"score"`
	Label   string  `json:"label"`
}

// DateRange is the span of a cluster's meetings.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LocationCluster is a candidate destination built from meetings.
type LocationCluster struct {
	Location  Location  `json:"location"`
	Meetings  []Meeting `json:"meetings"`
	DateRange DateRange `json:"date_range"`
}

// PlanTripRequest is the body of POST /trips/plan.
type PlanTripRequest struct {
	Title      *string              `json:"title,omitempty"`
	Purpose    *string              `json:"purpose,omitempty"`
	Notes      *string              `json:"notes,omitempty"`
	MeetingIds []openapi_types.UUID `json:"meeting_ids"`
}

// ScoreMeeting handles GET /trips/{id}/meetings/{meetingId}/score.
func (s *Server) ScoreMeeting(w http.ResponseWriter, r *http.Request) {
	tripID, meetingID, err := tripMeetingIDs(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	score, err := s.correlation.Score(r.Context(), meetingID, tripID)
	if err != nil {
		writeServiceError(w, r, err, "trip or meeting not found")
		return
	}

	resp := RelevanceScore{
		MeetingId: score.MeetingID,
		TripId:    score.TripID,
		Score:     score.Score,
		Label:     string(score.Label),
		Breakdown: make([]RuleContribution, len(score.Breakdown)),
	}
	for i, c := range score.Breakdown {
		resp.Breakdown[i] = RuleContribution{Rule: c.Rule, Points: c.Points}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SuggestMeetings handles GET /trips/{id}/suggestions.
// ?min_label= drops suggestions labelled below it.
func (s *Server) SuggestMeetings(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r, "id")
	if err != nil {
		writeRequestError(w, err)
		return
	}
	var minLabel *string
	if err := queryParam(r, "min_label", &minLabel); err != nil {
		writeRequestError(w, err)
		return
	}

	suggestions, err := s.correlation.Suggest(r.Context(), tripID, domain.Label(derefString(minLabel)))
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	data := make([]Suggestion, len(suggestions))
	for i, sg := range suggestions {
		data[i] = Suggestion{Meeting: meetingToResponse(sg.Meeting), Score: sg.Score, Label: string(sg.Label)}
	}
	writeJSON(w, http.StatusOK, data)
}

// ListClusters handles GET /clusters.
func (s *Server) ListClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := s.correlation.Clusters(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "not found")
		return
	}
	data := make([]LocationCluster, len(clusters))
	for i, c := range clusters {
		data[i] = LocationCluster{
			Location:  Location{City: c.Location.City, Country: c.Location.Country},
			Meetings:  meetingsToResponse(c.Meetings),
			DateRange: DateRange{Start: c.DateRange.Start, End: c.DateRange.End},
		}
	}
	writeJSON(w, http.StatusOK, data)
}

// PlanTrip handles POST /trips/plan.
func (s *Server) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var body PlanTripRequest
	if err := decodeJSON(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}
	trip, err := s.correlation.PlanTrip(r.Context(), service.PlanRequest{
		Title:      derefString(body.Title),
		Purpose:    domain.Purpose(derefString(body.Purpose)),
		Notes:      derefString(body.Notes),
		MeetingIDs: body.MeetingIds,
	})
	if err != nil {
		writeServiceError(w, r, err, "meeting not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// NormalizeLocation handles GET /locations/normalize?q=.
func (s *Server) NormalizeLocation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	loc := s.correlation.NormalizeLocation(q)
	writeJSON(w, http.StatusOK, NormalizedLocation{
		Input:   q,
		City:    loc.City,
		Country: loc.Country,
		Unknown: loc.IsUnknown(),
	})
}
