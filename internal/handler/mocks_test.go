package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/handler"
	"github.com/pkordes/tripmatch/internal/service"
)

// Test doubles for the servicer interfaces. Set only the method fields your
// test needs.

type mockContactServicer struct {
	create  func(ctx context.Context, c domain.Contact) (domain.Contact, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Contact, error)
	list    func(ctx context.Context) ([]domain.Contact, error)
}

func (m *mockContactServicer) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	return m.create(ctx, c)
}
func (m *mockContactServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Contact, error) {
	return m.getByID(ctx, id)
}
func (m *mockContactServicer) List(ctx context.Context) ([]domain.Contact, error) {
	return m.list(ctx)
}

var _ handler.ContactServicer = (*mockContactServicer)(nil)

type mockMeetingServicer struct {
	create    func(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Meeting, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error)
	update    func(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockMeetingServicer) Create(ctx context.Context, mt domain.Meeting) (domain.Meeting, error) {
	return m.create(ctx, mt)
}
func (m *mockMeetingServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	return m.getByID(ctx, id)
}
func (m *mockMeetingServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockMeetingServicer) Update(ctx context.Context, mt domain.Meeting) (domain.Meeting, error) {
	return m.update(ctx, mt)
}
func (m *mockMeetingServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.MeetingServicer = (*mockMeetingServicer)(nil)

type mockTripServicer struct {
	create    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	update    func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete    func(ctx context.Context, id uuid.UUID) error
	link      func(ctx context.Context, tripID, meetingID uuid.UUID) (domain.Trip, error)
	unlink    func(ctx context.Context, tripID, meetingID uuid.UUID) (domain.Trip, error)
}

func (m *mockTripServicer) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, t)
}
func (m *mockTripServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockTripServicer) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, t)
}
func (m *mockTripServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripServicer) LinkMeeting(ctx context.Context, tripID, meetingID uuid.UUID) (domain.Trip, error) {
	return m.link(ctx, tripID, meetingID)
}
func (m *mockTripServicer) UnlinkMeeting(ctx context.Context, tripID, meetingID uuid.UUID) (domain.Trip, error) {
	return m.unlink(ctx, tripID, meetingID)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockCorrelationServicer struct {
	score     func(ctx context.Context, meetingID, tripID uuid.UUID) (domain.RelevanceScore, error)
	suggest   func(ctx context.Context, tripID uuid.UUID, minLabel domain.Label) ([]domain.Suggestion, error)
	clusters  func(ctx context.Context) ([]domain.LocationCluster, error)
	planTrip  func(ctx context.Context, req service.PlanRequest) (domain.Trip, error)
	normalize func(text string) domain.CanonicalLocation
}

func (m *mockCorrelationServicer) Score(ctx context.Context, meetingID, tripID uuid.UUID) (domain.RelevanceScore, error) {
	return m.score(ctx, meetingID, tripID)
}
func (m *mockCorrelationServicer) Suggest(ctx context.Context, tripID uuid.UUID, minLabel domain.Label) ([]domain.Suggestion, error) {
	return m.suggest(ctx, tripID, minLabel)
}
func (m *mockCorrelationServicer) Clusters(ctx context.Context) ([]domain.LocationCluster, error) {
	return m.clusters(ctx)
}
func (m *mockCorrelationServicer) PlanTrip(ctx context.Context, req service.PlanRequest) (domain.Trip, error) {
	return m.planTrip(ctx, req)
}
func (m *mockCorrelationServicer) NormalizeLocation(text string) domain.CanonicalLocation {
	return m.normalize(text)
}

var _ handler.CorrelationServicer = (*mockCorrelationServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// do sends one request through h and returns the recorder.
func do(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}
