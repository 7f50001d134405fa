package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/repo"
)

func TestMemoryStore_ContactLifecycle(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()

	b, err := store.Contacts().Create(ctx, domain.Contact{Name: "Bob"})
	require.NoError(t, err)
	a, err := store.Contacts().Create(ctx, domain.Contact{Name: "Ada"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := store.Contacts().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)

	all, err := store.Contacts().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ada", all[0].Name, "contacts are ordered by name")

	_, err = store.Contacts().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_CreateKeepsSuppliedID(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()
	id := uuid.New()

	m := meetingFixture()
	m.ID = id
	created, err := store.Meetings().Create(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)

	_, err = store.Meetings().Create(ctx, m)
	assert.ErrorIs(t, err, domain.ErrConflict, "duplicate ids are rejected")
}

func TestMemoryStore_MeetingsAreCopied(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()
	contact := uuid.New()

	m := meetingFixture()
	m.AttendeeIDs = []uuid.UUID{contact}
	created, err := store.Meetings().Create(ctx, m)
	require.NoError(t, err)

	// Mutating what the caller holds must not leak into the store.
	m.AttendeeIDs[0] = uuid.New()
	created.AttendeeIDs[0] = uuid.New()

	got, err := store.Meetings().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{contact}, got.AttendeeIDs)
}

func TestMemoryStore_MeetingListPaged(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()

	base := meetingFixture()
	for _, offset := range []int{2, 0, 1} {
		m := base
		m.StartTime = base.StartTime.Add(time.Duration(offset) * time.Hour)
		_, err := store.Meetings().Create(ctx, m)
		require.NoError(t, err)
	}

	page, total, err := store.Meetings().ListPaged(ctx, domain.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.True(t, page[0].StartTime.Before(page[1].StartTime), "ordered by start time")

	tail, _, err := store.Meetings().ListPaged(ctx, domain.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	beyond, _, err := store.Meetings().ListPaged(ctx, domain.PaginationParams{Page: 9, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestMemoryStore_MeetingUpdateDelete(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()

	created, err := store.Meetings().Create(ctx, meetingFixture())
	require.NoError(t, err)

	created.Title = "Renamed"
	updated, err := store.Meetings().Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	require.NoError(t, store.Meetings().Delete(ctx, created.ID))
	assert.ErrorIs(t, store.Meetings().Delete(ctx, created.ID), domain.ErrNotFound)

	ghost := meetingFixture()
	ghost.ID = uuid.New()
	_, err = store.Meetings().Update(ctx, ghost)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_TripsByMeeting(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()
	meetingID := uuid.New()

	linked := tripFixture()
	linked.MeetingIDs = []uuid.UUID{meetingID}
	created, err := store.Trips().Create(ctx, linked)
	require.NoError(t, err)
	_, err = store.Trips().Create(ctx, tripFixture())
	require.NoError(t, err)

	got, err := store.Trips().ListByMeetingID(ctx, meetingID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)

	none, err := store.Trips().ListByMeetingID(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryStore_TripsOrderedByStartDesc(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()

	early := tripFixture()
	early.Title = "early"
	late := tripFixture()
	late.Title = "late"
	late.StartDate = early.StartDate.AddDate(0, 2, 0)

	_, err := store.Trips().Create(ctx, early)
	require.NoError(t, err)
	_, err = store.Trips().Create(ctx, late)
	require.NoError(t, err)

	all, err := store.Trips().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "late", all[0].Title)

	require.NoError(t, store.Trips().Delete(ctx, all[0].ID))
	_, err = store.Trips().GetByID(ctx, all[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Trips().List(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := store.Meetings().Create(ctx, meetingFixture())
			assert.NoError(t, err)
			_, err = store.Meetings().GetByID(ctx, m.ID)
			assert.NoError(t, err)
			_, err = store.Meetings().List(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := store.Meetings().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}

// ---- units of work ---------------------------------------------------------

func TestMemoryStore_WithinTx_SerializesReadModifyWrite(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()
	trip, err := store.Trips().Create(ctx, tripFixture())
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
				got, err := r.Trips.GetForUpdate(ctx, trip.ID)
				if err != nil {
					return err
				}
				got.MeetingIDs = append(got.MeetingIDs, uuid.New())
				_, err = r.Trips.Update(ctx, got)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Trips().GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, got.MeetingIDs, len(tripFixture().MeetingIDs)+writers, "no update is lost")
}

func TestMemoryStore_WithinTx_RollsBackOnError(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()
	kept, err := store.Meetings().Create(ctx, meetingFixture())
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
		if _, err := r.Meetings.Create(ctx, meetingFixture()); err != nil {
			return err
		}
		if err := r.Meetings.Delete(ctx, kept.ID); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	all, err := store.Meetings().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, kept.ID, all[0].ID)
}

func TestMemoryStore_WithinTx_BlocksOutsideWriters(t *testing.T) {
	store := repo.NewMemoryStore()
	ctx := context.Background()

	inside := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- store.WithinTx(ctx, func(ctx context.Context, r repo.Repos) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	created := make(chan struct{})
	go func() {
		_, err := store.Meetings().Create(ctx, meetingFixture())
		assert.NoError(t, err)
		close(created)
	}()

	select {
	case <-created:
		t.Fatal("write outside the unit of work ran while it held the store")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-done)
	<-created
}
