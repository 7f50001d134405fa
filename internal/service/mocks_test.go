package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/repo"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones your test needs. Calling an unset field panics, which flags a repo
// call the test did not expect.

// ---- trips -----------------------------------------------------------------

type mockTripRepo struct {
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	getForUpdate    func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list            func(ctx context.Context) ([]domain.Trip, error)
	listPaged       func(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	listByMeetingID func(ctx context.Context, meetingID uuid.UUID) ([]domain.Trip, error)
	update          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete          func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
// GetForUpdate falls back to getByID, which is all most tests need.
func (m *mockTripRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	if m.getForUpdate != nil {
		return m.getForUpdate(ctx, id)
	}
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockTripRepo) ListByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]domain.Trip, error) {
	return m.listByMeetingID(ctx, meetingID)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// ---- meetings --------------------------------------------------------------

type mockMeetingRepo struct {
	create    func(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Meeting, error)
	list      func(ctx context.Context) ([]domain.Meeting, error)
	listPaged func(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error)
	update    func(ctx context.Context, m domain.Meeting) (domain.Meeting, error)
	delete    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockMeetingRepo) Create(ctx context.Context, mt domain.Meeting) (domain.Meeting, error) {
	return m.create(ctx, mt)
}
func (m *mockMeetingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	return m.getByID(ctx, id)
}
func (m *mockMeetingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	return m.getByID(ctx, id)
}
func (m *mockMeetingRepo) List(ctx context.Context) ([]domain.Meeting, error) {
	return m.list(ctx)
}
func (m *mockMeetingRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockMeetingRepo) Update(ctx context.Context, mt domain.Meeting) (domain.Meeting, error) {
	return m.update(ctx, mt)
}
func (m *mockMeetingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.MeetingRepo = (*mockMeetingRepo)(nil)

// ---- contacts --------------------------------------------------------------

type mockContactRepo struct {
	create  func(ctx context.Context, c domain.Contact) (domain.Contact, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Contact, error)
	list    func(ctx context.Context) ([]domain.Contact, error)
}

func (m *mockContactRepo) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	return m.create(ctx, c)
}
func (m *mockContactRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Contact, error) {
	return m.getByID(ctx, id)
}
func (m *mockContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	return m.list(ctx)
}

var _ repo.ContactRepo = (*mockContactRepo)(nil)

// ---- transactor ------------------------------------------------------------

// inlineTx runs each unit of work directly against its repos, with no
// locking or rollback.
type inlineTx repo.Repos

func (r inlineTx) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.Repos) error) error {
	return fn(ctx, repo.Repos(r))
}

var _ repo.Transactor = inlineTx{}

// recordingTx is inlineTx that also notes where each unit of work starts
// and ends in calls.
type recordingTx struct {
	repos repo.Repos
	calls *[]string
}

func (r *recordingTx) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.Repos) error) error {
	*r.calls = append(*r.calls, "begin")
	err := fn(ctx, r.repos)
	*r.calls = append(*r.calls, "end")
	return err
}
