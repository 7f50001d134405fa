package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/repo"
	"github.com/pkordes/tripmatch/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

func validTrip() domain.Trip {
	end := day(time.June, 5)
	return domain.Trip{
		Title:     "Paris client visit",
		Purpose:   domain.PurposeClientVisit,
		StartDate: day(time.June, 1),
		EndDate:   &end,
		Destinations: []domain.Destination{
			{City: "Paris", Country: "France", ArrivalDate: day(time.June, 1)},
		},
	}
}

func validMeeting() domain.Meeting {
	start := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	return domain.Meeting{
		Title:     "Client Sync",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Location:  "paris, france",
	}
}

// echoRepo returns a trip repo that echoes writes back and serves stored
// from GetByID. Useful for tests that only care about validation logic.
func echoRepo(stored domain.Trip) *mockTripRepo {
	return &mockTripRepo{
		create:  func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
		update:  func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) { return stored, nil },
	}
}

func newTripService(trips repo.TripRepo) *service.TripService {
	return service.NewTripService(trips, inlineTx{Trips: trips, Meetings: &mockMeetingRepo{}})
}

// ---- Create ----------------------------------------------------------------

func TestTripService_Create_Valid(t *testing.T) {
	svc := newTripService(echoRepo(domain.Trip{}))

	got, err := svc.Create(context.Background(), validTrip())

	require.NoError(t, err)
	assert.Equal(t, "Paris client visit", got.Title)
	assert.NotNil(t, got.MeetingIDs)
	assert.NotNil(t, got.ContactIDs)
}

func TestTripService_Create_EmptyPurposeDefaultsToOther(t *testing.T) {
	svc := newTripService(echoRepo(domain.Trip{}))

	trip := validTrip()
	trip.Purpose = ""

	got, err := svc.Create(context.Background(), trip)

	require.NoError(t, err)
	assert.Equal(t, domain.PurposeOther, got.Purpose)
}

func TestTripService_Create_Validation(t *testing.T) {
	before := day(time.May, 31)
	tests := []struct {
		name   string
		mutate func(*domain.Trip)
	}{
		{"blank title", func(tr *domain.Trip) { tr.Title = "   " }},
		{"end before start", func(tr *domain.Trip) { tr.EndDate = &before }},
		{"unknown purpose", func(tr *domain.Trip) { tr.Purpose = "vacation" }},
		{"destination without city", func(tr *domain.Trip) { tr.Destinations[0].City = "" }},
		{"departure before arrival", func(tr *domain.Trip) { tr.Destinations[0].DepartureDate = &before }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTripService(echoRepo(domain.Trip{}))
			trip := validTrip()
			tc.mutate(&trip)

			_, err := svc.Create(context.Background(), trip)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestTripService_Create_SameDayAndOpenEndedAreValid(t *testing.T) {
	svc := newTripService(echoRepo(domain.Trip{}))

	sameDay := validTrip()
	start := sameDay.StartDate
	sameDay.EndDate = &start
	_, err := svc.Create(context.Background(), sameDay)
	assert.NoError(t, err)

	open := validTrip()
	open.EndDate = nil
	_, err = svc.Create(context.Background(), open)
	assert.NoError(t, err)
}

func TestTripService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := &mockTripRepo{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, repoErr
		},
	}
	svc := newTripService(r)

	_, err := svc.Create(context.Background(), validTrip())

	assert.ErrorIs(t, err, repoErr)
}

// ---- GetByID / List --------------------------------------------------------

func TestTripService_GetByID_NotFound(t *testing.T) {
	r := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := newTripService(r)

	_, err := svc.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_ListPaged_NilBecomesEmpty(t *testing.T) {
	r := &mockTripRepo{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
			assert.Equal(t, 2, p.Page)
			return nil, 7, nil
		},
	}
	svc := newTripService(r)

	got, total, err := svc.ListPaged(context.Background(), domain.PaginationParams{Page: 2, Limit: 5})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, int64(7), total)
}

func TestTripService_List_Empty(t *testing.T) {
	r := &mockTripRepo{
		list: func(_ context.Context) ([]domain.Trip, error) { return nil, nil },
	}
	svc := newTripService(r)

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// ---- Update ----------------------------------------------------------------

func TestTripService_Update_KeepsLinkedMeetings(t *testing.T) {
	linked, stray := uuid.New(), uuid.New()
	contact := uuid.New()

	stored := validTrip()
	stored.ID = uuid.New()
	stored.MeetingIDs = []uuid.UUID{linked}
	stored.ContactIDs = []uuid.UUID{contact}
	svc := newTripService(echoRepo(stored))

	input := validTrip()
	input.ID = stored.ID
	input.Title = "Renamed"
	input.MeetingIDs = []uuid.UUID{stray}
	input.Destinations[0].MeetingIDs = []uuid.UUID{linked, stray}

	got, err := svc.Update(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, []uuid.UUID{linked}, got.MeetingIDs)
	assert.Equal(t, []uuid.UUID{linked}, got.Destinations[0].MeetingIDs)
	assert.Equal(t, []uuid.UUID{contact}, got.ContactIDs, "nil contacts keep the stored list")
}

func TestTripService_Update_NotFound(t *testing.T) {
	r := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := newTripService(r)

	_, err := svc.Update(context.Background(), validTrip())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_Update_MissingTitle(t *testing.T) {
	svc := newTripService(echoRepo(validTrip()))

	trip := validTrip()
	trip.Title = ""

	_, err := svc.Update(context.Background(), trip)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Delete ----------------------------------------------------------------

func TestTripService_Delete(t *testing.T) {
	r := &mockTripRepo{
		delete: func(_ context.Context, _ uuid.UUID) error { return domain.ErrNotFound },
	}
	svc := newTripService(r)

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- LinkMeeting / UnlinkMeeting -------------------------------------------

// linkFixture stores a Paris trip and a Paris meeting with one attendee.
func linkFixture(t *testing.T) (*service.TripService, *repo.MemoryStore, domain.Trip, domain.Meeting) {
	t.Helper()
	ctx := context.Background()
	store := repo.NewMemoryStore()

	trip, err := store.Trips().Create(ctx, validTrip())
	require.NoError(t, err)

	m := validMeeting()
	m.AttendeeIDs = []uuid.UUID{uuid.New()}
	meeting, err := store.Meetings().Create(ctx, m)
	require.NoError(t, err)

	return service.NewTripService(store.Trips(), store), store, trip, meeting
}

func TestTripService_LinkMeeting(t *testing.T) {
	svc, _, trip, meeting := linkFixture(t)

	got, err := svc.LinkMeeting(context.Background(), trip.ID, meeting.ID)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{meeting.ID}, got.MeetingIDs)
	assert.Equal(t, []uuid.UUID{meeting.ID}, got.Destinations[0].MeetingIDs, "matched by normalized city")
	assert.Equal(t, meeting.AttendeeIDs, got.ContactIDs)
}

func TestTripService_LinkMeeting_Idempotent(t *testing.T) {
	svc, _, trip, meeting := linkFixture(t)
	ctx := context.Background()

	_, err := svc.LinkMeeting(ctx, trip.ID, meeting.ID)
	require.NoError(t, err)
	got, err := svc.LinkMeeting(ctx, trip.ID, meeting.ID)

	require.NoError(t, err)
	assert.Len(t, got.MeetingIDs, 1)
	assert.Len(t, got.ContactIDs, 1)
}

func TestTripService_LinkMeeting_NoMatchingDestination(t *testing.T) {
	svc, store, trip, _ := linkFixture(t)
	ctx := context.Background()

	m := validMeeting()
	m.Location = "Tokyo, Japan"
	tokyo, err := store.Meetings().Create(ctx, m)
	require.NoError(t, err)

	got, err := svc.LinkMeeting(ctx, trip.ID, tokyo.ID)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{tokyo.ID}, got.MeetingIDs)
	assert.Empty(t, got.Destinations[0].MeetingIDs)
}

func TestTripService_LinkMeeting_MeetingNotFound(t *testing.T) {
	svc, _, trip, _ := linkFixture(t)

	_, err := svc.LinkMeeting(context.Background(), trip.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_LinkMeeting_TripNotFound(t *testing.T) {
	svc, _, _, meeting := linkFixture(t)

	_, err := svc.LinkMeeting(context.Background(), uuid.New(), meeting.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_UnlinkMeeting(t *testing.T) {
	svc, _, trip, meeting := linkFixture(t)
	ctx := context.Background()

	_, err := svc.LinkMeeting(ctx, trip.ID, meeting.ID)
	require.NoError(t, err)

	got, err := svc.UnlinkMeeting(ctx, trip.ID, meeting.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MeetingIDs)
	assert.Empty(t, got.Destinations[0].MeetingIDs)
	assert.Equal(t, meeting.AttendeeIDs, got.ContactIDs, "contacts are kept")

	_, err = svc.UnlinkMeeting(ctx, trip.ID, meeting.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_LinkMeeting_ConcurrentLinksAllLand(t *testing.T) {
	svc, store, trip, _ := linkFixture(t)
	ctx := context.Background()

	const n = 20
	ids := make([]uuid.UUID, n)
	for i := range ids {
		m := validMeeting()
		m.AttendeeIDs = []uuid.UUID{uuid.New()}
		created, err := store.Meetings().Create(ctx, m)
		require.NoError(t, err)
		ids[i] = created.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LinkMeeting(ctx, trip.ID, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Trips().GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, got.MeetingIDs)
	assert.ElementsMatch(t, ids, got.Destinations[0].MeetingIDs)
	assert.Len(t, got.ContactIDs, n)
}

func TestTripService_LinkAndUnlinkConcurrently(t *testing.T) {
	svc, store, trip, first := linkFixture(t)
	ctx := context.Background()

	_, err := svc.LinkMeeting(ctx, trip.ID, first.ID)
	require.NoError(t, err)
	second, err := store.Meetings().Create(ctx, validMeeting())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.UnlinkMeeting(ctx, trip.ID, first.ID)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := svc.LinkMeeting(ctx, trip.ID, second.ID)
		assert.NoError(t, err)
	}()
	wg.Wait()

	got, err := store.Trips().GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID}, got.MeetingIDs)
}
