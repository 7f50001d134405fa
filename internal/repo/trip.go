package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripmatch/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// Destinations are owned by their trip and stored with it; they are never
// read or written on their own.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip with its destinations and returns the
	// persisted record (with generated id, created_at and updated_at).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetForUpdate is GetByID that also locks the trip until the enclosing
	// unit of work ends, so read-modify-write sequences see no lost updates.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips ordered by start_date descending.
	List(ctx context.Context) ([]domain.Trip, error)

	// ListPaged returns one page of trips ordered by start_date descending and
	// the total number of trips.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// ListByMeetingID returns every trip that references the meeting.
	ListByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip, including its
	// destinations, meeting ids and contact ids, and returns the updated record.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, title, purpose, start_date, end_date, destinations,
	meeting_ids::text[], contact_ids::text[], notes, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (id, title, purpose, start_date, end_date, destinations,
		                   meeting_ids, contact_ids, notes)
		VALUES (COALESCE(@id, gen_random_uuid()), @title, @purpose, @start_date, @end_date,
		        @destinations::jsonb, @meeting_ids::text[]::uuid[], @contact_ids::text[]::uuid[], @notes)
		RETURNING ` + tripColumns

	args, err := tripArgs(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	args["id"] = nullableID(trip.ID)

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetForUpdate retrieves a trip and locks its row (SELECT ... FOR UPDATE).
func (r *pgTripRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id FOR UPDATE`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetForUpdate: %w", err)
	}
	return result, nil
}

// List returns all trips ordered by start_date descending (most recent first).
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips ORDER BY start_date DESC, id`

	trips, err := r.query(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	return trips, nil
}

func (r *pgTripRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		ORDER BY start_date DESC, id
		LIMIT @limit OFFSET @offset`

	trips, err := r.query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) ListByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE @meeting_id = ANY(meeting_ids)
		ORDER BY start_date DESC, id`

	trips, err := r.query(ctx, q, pgx.NamedArgs{"meeting_id": meetingID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByMeetingID: %w", err)
	}
	return trips, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET title        = @title,
		    purpose      = @purpose,
		    start_date   = @start_date,
		    end_date     = @end_date,
		    destinations = @destinations::jsonb,
		    meeting_ids  = @meeting_ids::text[]::uuid[],
		    contact_ids  = @contact_ids::text[]::uuid[],
		    notes        = @notes,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args, err := tripArgs(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	args["id"] = trip.ID

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return trips, nil
}

// tripArgs builds the shared insert/update parameters. Destinations are
// stored as a JSONB array in their display order.
func tripArgs(trip domain.Trip) (pgx.NamedArgs, error) {
	dests := trip.Destinations
	if dests == nil {
		dests = []domain.Destination{}
	}
	raw, err := json.Marshal(dests)
	if err != nil {
		return nil, fmt.Errorf("encode destinations: %w", err)
	}
	return pgx.NamedArgs{
		"title":        trip.Title,
		"purpose":      string(trip.Purpose),
		"start_date":   trip.StartDate,
		"end_date":     trip.EndDate, // nil becomes NULL
		"destinations": string(raw),
		"meeting_ids":  uuidStrings(trip.MeetingIDs),
		"contact_ids":  uuidStrings(trip.ContactIDs),
		"notes":        trip.Notes,
	}, nil
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, nullable end_date, JSONB and array conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t        domain.Trip
		id       pgtype.UUID
		purpose  string
		sdRaw    pgtype.Date
		endDate  pgtype.Date
		dests    []byte
		meetings []string
		contacts []string
	)

	err := s.Scan(&id, &t.Title, &purpose, &sdRaw, &endDate, &dests,
		&meetings, &contacts, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Purpose = domain.Purpose(purpose)
	t.StartDate = sdRaw.Time
	if endDate.Valid {
		ed := endDate.Time
		t.EndDate = &ed
	}
	if err := json.Unmarshal(dests, &t.Destinations); err != nil {
		return domain.Trip{}, fmt.Errorf("decode destinations: %w", err)
	}
	if t.MeetingIDs, err = parseUUIDs(meetings); err != nil {
		return domain.Trip{}, err
	}
	if t.ContactIDs, err = parseUUIDs(contacts); err != nil {
		return domain.Trip{}, err
	}
	return t, nil
}
