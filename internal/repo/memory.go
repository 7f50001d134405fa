package repo

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripmatch/internal/domain"
)

// MemoryStore keeps contacts, meetings and trips in process memory. It backs
// local mode (no DATABASE_URL) and the tripctl CLI.
//
// Records are copied on the way in and out, so callers never share slices
// with the store. All methods are safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	contacts map[uuid.UUID]domain.Contact
	meetings map[uuid.UUID]domain.Meeting
	trips    map[uuid.UUID]domain.Trip
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contacts: make(map[uuid.UUID]domain.Contact),
		meetings: make(map[uuid.UUID]domain.Meeting),
		trips:    make(map[uuid.UUID]domain.Trip),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Contacts returns the store's ContactRepo view.
func (s *MemoryStore) Contacts() ContactRepo { return memContactRepo{s: s} }

// Meetings returns the store's MeetingRepo view.
func (s *MemoryStore) Meetings() MeetingRepo { return memMeetingRepo{s: s} }

// Trips returns the store's TripRepo view.
func (s *MemoryStore) Trips() TripRepo { return memTripRepo{s: s} }

// WithinTx runs fn while holding the store's write lock. When fn fails, every
// write it made is discarded.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stored records are replaced, never mutated in place, so shallow map
	// copies are a complete snapshot.
	contacts, meetings, trips := maps.Clone(s.contacts), maps.Clone(s.meetings), maps.Clone(s.trips)
	err := fn(ctx, Repos{
		Contacts: memContactRepo{s: s, held: true},
		Meetings: memMeetingRepo{s: s, held: true},
		Trips:    memTripRepo{s: s, held: true},
	})
	if err != nil {
		s.contacts, s.meetings, s.trips = contacts, meetings, trips
	}
	return err
}

var _ Transactor = (*MemoryStore)(nil)

// lock takes the write lock unless the caller already holds it and returns
// the matching release.
func (s *MemoryStore) lock(held bool) func() {
	if held {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) rlock(held bool) func() {
	if held {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

// ---- contacts --------------------------------------------------------------

type memContactRepo struct {
	s    *MemoryStore
	held bool // the caller's unit of work already holds s.mu
}

func (r memContactRepo) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contact{}, err
	}
	defer r.s.lock(r.held)()

	id, err := newID(c.ID, func(id uuid.UUID) bool { _, ok := r.s.contacts[id]; return ok })
	if err != nil {
		return domain.Contact{}, fmt.Errorf("repo.MemoryStore.CreateContact: %w", err)
	}
	c.ID = id
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	r.s.contacts[c.ID] = c
	return c, nil
}

func (r memContactRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contact{}, err
	}
	defer r.s.rlock(r.held)()

	c, ok := r.s.contacts[id]
	if !ok {
		return domain.Contact{}, fmt.Errorf("repo.MemoryStore.GetContact: %w", domain.ErrNotFound)
	}
	return c, nil
}

func (r memContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.s.rlock(r.held)()

	out := make([]domain.Contact, 0, len(r.s.contacts))
	for _, c := range r.s.contacts {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Contact) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out, nil
}

// ---- meetings --------------------------------------------------------------

type memMeetingRepo struct {
	s    *MemoryStore
	held bool // the caller's unit of work already holds s.mu
}

func (r memMeetingRepo) Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meeting{}, err
	}
	defer r.s.lock(r.held)()

	id, err := newID(m.ID, func(id uuid.UUID) bool { _, ok := r.s.meetings[id]; return ok })
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MemoryStore.CreateMeeting: %w", err)
	}
	m = m.Clone()
	m.ID = id
	now := r.s.now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	r.s.meetings[m.ID] = m
	return m.Clone(), nil
}

func (r memMeetingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meeting{}, err
	}
	defer r.s.rlock(r.held)()

	m, ok := r.s.meetings[id]
	if !ok {
		return domain.Meeting{}, fmt.Errorf("repo.MemoryStore.GetMeeting: %w", domain.ErrNotFound)
	}
	return m.Clone(), nil
}

// GetForUpdate is GetByID; inside WithinTx the whole store is locked.
func (r memMeetingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	return r.GetByID(ctx, id)
}

func (r memMeetingRepo) List(ctx context.Context) ([]domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.s.rlock(r.held)()
	return r.sorted(), nil
}

func (r memMeetingRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	defer r.s.rlock(r.held)()

	all := r.sorted()
	return page(all, p), int64(len(all)), nil
}

func (r memMeetingRepo) Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meeting{}, err
	}
	defer r.s.lock(r.held)()

	old, ok := r.s.meetings[m.ID]
	if !ok {
		return domain.Meeting{}, fmt.Errorf("repo.MemoryStore.UpdateMeeting: %w", domain.ErrNotFound)
	}
	m = m.Clone()
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = r.s.now()
	r.s.meetings[m.ID] = m
	return m.Clone(), nil
}

func (r memMeetingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.s.lock(r.held)()

	if _, ok := r.s.meetings[id]; !ok {
		return fmt.Errorf("repo.MemoryStore.DeleteMeeting: %w", domain.ErrNotFound)
	}
	delete(r.s.meetings, id)
	return nil
}

// sorted returns copies of all meetings by start time. Caller holds the lock.
func (r memMeetingRepo) sorted() []domain.Meeting {
	out := make([]domain.Meeting, 0, len(r.s.meetings))
	for _, m := range r.s.meetings {
		out = append(out, m.Clone())
	}
	slices.SortFunc(out, func(a, b domain.Meeting) int {
		return cmp.Or(a.StartTime.Compare(b.StartTime), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out
}

// ---- trips -----------------------------------------------------------------

type memTripRepo struct {
	s    *MemoryStore
	held bool // the caller's unit of work already holds s.mu
}

func (r memTripRepo) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return domain.Trip{}, err
	}
	defer r.s.lock(r.held)()

	id, err := newID(t.ID, func(id uuid.UUID) bool { _, ok := r.s.trips[id]; return ok })
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.MemoryStore.CreateTrip: %w", err)
	}
	t = t.Clone()
	t.ID = id
	now := r.s.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	r.s.trips[t.ID] = t
	return t.Clone(), nil
}

func (r memTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return domain.Trip{}, err
	}
	defer r.s.rlock(r.held)()

	t, ok := r.s.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.MemoryStore.GetTrip: %w", domain.ErrNotFound)
	}
	return t.Clone(), nil
}

func (r memTripRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return r.GetByID(ctx, id)
}

func (r memTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.s.rlock(r.held)()
	return r.sorted(func(domain.Trip) bool { return true }), nil
}

func (r memTripRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	defer r.s.rlock(r.held)()

	all := r.sorted(func(domain.Trip) bool { return true })
	return page(all, p), int64(len(all)), nil
}

func (r memTripRepo) ListByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer r.s.rlock(r.held)()
	return r.sorted(func(t domain.Trip) bool { return t.HasMeeting(meetingID) }), nil
}

func (r memTripRepo) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return domain.Trip{}, err
	}
	defer r.s.lock(r.held)()

	old, ok := r.s.trips[t.ID]
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.MemoryStore.UpdateTrip: %w", domain.ErrNotFound)
	}
	t = t.Clone()
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = r.s.now()
	r.s.trips[t.ID] = t
	return t.Clone(), nil
}

func (r memTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer r.s.lock(r.held)()

	if _, ok := r.s.trips[id]; !ok {
		return fmt.Errorf("repo.MemoryStore.DeleteTrip: %w", domain.ErrNotFound)
	}
	delete(r.s.trips, id)
	return nil
}

// sorted returns copies of matching trips, most recent start first.
// Caller holds the lock.
func (r memTripRepo) sorted(keep func(domain.Trip) bool) []domain.Trip {
	out := []domain.Trip{}
	for _, t := range r.s.trips {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	slices.SortFunc(out, func(a, b domain.Trip) int {
		return cmp.Or(b.StartDate.Compare(a.StartDate), strings.Compare(a.ID.String(), b.ID.String()))
	})
	return out
}

// ---- helpers ---------------------------------------------------------------

// newID returns want, or a fresh id when want is zero. Reusing an id that is
// already taken is a conflict.
func newID(want uuid.UUID, taken func(uuid.UUID) bool) (uuid.UUID, error) {
	if want == uuid.Nil {
		return uuid.New(), nil
	}
	if taken(want) {
		return uuid.Nil, fmt.Errorf("%w: id %s already exists", domain.ErrConflict, want)
	}
	return want, nil
}

// page slices one page out of items.
func page[T any](items []T, p domain.PaginationParams) []T {
	start := min(max(p.Offset(), 0), len(items))
	end := min(start+max(p.Limit, 0), len(items))
	return items[start:end]
}
