// Package handler implements the HTTP handlers for the tripmatch API.
// All handlers are methods on Server. Methods are split into
// domain-specific files (health.go, trip.go, etc.) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/service"
)

// ContactServicer defines the contact operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the service or repo layers.
type ContactServicer interface {
	Create(ctx context.Context, c domain.Contact) (domain.Contact, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Contact, error)
	List(ctx context.Context) ([]domain.Contact, error)
}

// MeetingServicer defines the meeting operations the handlers depend on.
type MeetingServicer interface {
	Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error)
	Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TripServicer defines the trip operations the handlers depend on.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	LinkMeeting(ctx context.Context, tripID, meetingID uuid.UUID) (domain.Trip, error)
	UnlinkMeeting(ctx context.Context, tripID, meetingID uuid.UUID) (domain.Trip, error)
}

// CorrelationServicer defines the scoring, suggestion and clustering
// operations the handlers depend on.
type CorrelationServicer interface {
	Score(ctx context.Context, meetingID, tripID uuid.UUID) (domain.RelevanceScore, error)
	Suggest(ctx context.Context, tripID uuid.UUID, minLabel domain.Label) ([]domain.Suggestion, error)
	Clusters(ctx context.Context) ([]domain.LocationCluster, error)
	PlanTrip(ctx context.Context, req service.PlanRequest) (domain.Trip, error)
	NormalizeLocation(text string) domain.CanonicalLocation
}

// Server holds the services behind every API endpoint.
// Mount Server.Routes() in main.go behind the middleware stack.
type Server struct {
	contacts    ContactServicer
	meetings    MeetingServicer
	trips       TripServicer
	correlation CorrelationServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(contacts ContactServicer, meetings MeetingServicer, trips TripServicer, correlation CorrelationServicer) *Server {
	return &Server{contacts: contacts, meetings: meetings, trips: trips, correlation: correlation}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes registers every endpoint on a new chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/contacts", func(r chi.Router) {
		r.Post("/", s.CreateContact)
		r.Get("/", s.ListContacts)
		r.Get("/{id}", s.GetContact)
	})

	r.Route("/meetings", func(r chi.Router) {
		r.Post("/", s.CreateMeeting)
		r.Get("/", s.ListMeetings)
		r.Get("/{id}", s.GetMeeting)
		r.Put("/{id}", s.UpdateMeeting)
		r.Delete("/{id}", s.DeleteMeeting)
	})

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Post("/plan", s.PlanTrip)
		r.Get("/{id}", s.GetTrip)
		r.Put("/{id}", s.UpdateTrip)
		r.Delete("/{id}", s.DeleteTrip)
		r.Put("/{id}/meetings/{meetingId}", s.LinkMeeting)
		r.Delete("/{id}/meetings/{meetingId}", s.UnlinkMeeting)
		r.Get("/{id}/meetings/{meetingId}/score", s.ScoreMeeting)
		r.Get("/{id}/suggestions", s.SuggestMeetings)
	})

	r.Get("/clusters", s.ListClusters)
	r.Get("/locations/normalize", s.NormalizeLocation)

	return r
}
