package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repos bundles the repositories one unit of work runs against.
type Repos struct {
	Contacts ContactRepo
	Meetings MeetingRepo
	Trips    TripRepo
}

// Transactor runs fn as a single atomic unit. Writes made through the Repos
// passed to fn commit together when fn returns nil and are discarded when it
// returns an error. Rows read with GetForUpdate stay locked until fn returns.
//
// fn must use only the Repos it is given; the outer repos are not part of
// the unit and, for the memory store, would block on its lock.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

// beginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx. On a pgx.Tx
// Begin opens a savepoint, so integration tests can run units of work inside
// their rollback transaction.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgTransactor is the Postgres implementation of Transactor.
type pgTransactor struct {
	db beginner
}

// NewTransactor constructs a Transactor that runs each unit in its own
// Postgres transaction.
func NewTransactor(db beginner) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error {
	return pgx.BeginFunc(ctx, t.db, func(tx pgx.Tx) error {
		return fn(ctx, Repos{
			Contacts: NewContactRepo(tx),
			Meetings: NewMeetingRepo(tx),
			Trips:    NewTripRepo(tx),
		})
	})
}
