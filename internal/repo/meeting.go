package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripmatch/internal/domain"
)

// MeetingRepo defines the persistence operations for Meetings.
type MeetingRepo interface {
	// Create inserts a new meeting and returns the persisted record.
	// A zero ID is generated by the store.
	Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error)

	// GetByID retrieves a single meeting.
	// Returns domain.ErrNotFound if no meeting with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error)

	// GetForUpdate is GetByID that also locks the meeting until the
	// enclosing unit of work ends. Outside a unit of work it is GetByID.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Meeting, error)

	// List returns all meetings ordered by start_time ascending.
	List(ctx context.Context) ([]domain.Meeting, error)

	// ListPaged returns one page of meetings ordered by start_time ascending
	// and the total number of meetings.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error)

	// Update overwrites the mutable fields of a meeting and returns the
	// updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error)

	// Delete removes a meeting by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgMeetingRepo is the Postgres implementation of MeetingRepo.
type pgMeetingRepo struct {
	db db
}

// NewMeetingRepo constructs a MeetingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewMeetingRepo(db db) MeetingRepo {
	return &pgMeetingRepo{db: db}
}

const meetingColumns = `id, title, start_time, end_time, location, attendee_ids::text[], type, status, created_at, updated_at`

func (r *pgMeetingRepo) Create(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	const q = `
		INSERT INTO meetings (id, title, start_time, end_time, location, attendee_ids, type, status)
		VALUES (COALESCE(@id, gen_random_uuid()), @title, @start_time, @end_time, @location,
		        @attendee_ids::text[]::uuid[], @type, @status)
		RETURNING ` + meetingColumns

	args := meetingArgs(m)
	args["id"] = nullableID(m.ID)

	result, err := scanMeeting(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MeetingRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgMeetingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	const q = `SELECT ` + meetingColumns + ` FROM meetings WHERE id = @id`

	result, err := scanMeeting(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MeetingRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgMeetingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Meeting, error) {
	const q = `SELECT ` + meetingColumns + ` FROM meetings WHERE id = @id FOR UPDATE`

	result, err := scanMeeting(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MeetingRepo.GetForUpdate: %w", err)
	}
	return result, nil
}

func (r *pgMeetingRepo) List(ctx context.Context) ([]domain.Meeting, error) {
	const q = `SELECT ` + meetingColumns + ` FROM meetings ORDER BY start_time, id`

	meetings, err := r.query(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.MeetingRepo.List: %w", err)
	}
	return meetings, nil
}

func (r *pgMeetingRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Meeting, int64, error) {
	const q = `
		SELECT ` + meetingColumns + `
		FROM meetings
		ORDER BY start_time, id
		LIMIT @limit OFFSET @offset`

	meetings, err := r.query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MeetingRepo.ListPaged: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM meetings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.MeetingRepo.ListPaged: count: %w", err)
	}
	return meetings, total, nil
}

func (r *pgMeetingRepo) Update(ctx context.Context, m domain.Meeting) (domain.Meeting, error) {
	const q = `
		UPDATE meetings
		SET title        = @title,
		    start_time   = @start_time,
		    end_time     = @end_time,
		    location     = @location,
		    attendee_ids = @attendee_ids::text[]::uuid[],
		    type         = @type,
		    status       = @status,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + meetingColumns

	args := meetingArgs(m)
	args["id"] = m.ID

	result, err := scanMeeting(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Meeting{}, fmt.Errorf("repo.MeetingRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgMeetingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM meetings WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.MeetingRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MeetingRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgMeetingRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Meeting, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meetings := []domain.Meeting{}
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return meetings, nil
}

func meetingArgs(m domain.Meeting) pgx.NamedArgs {
	return pgx.NamedArgs{
		"title":        m.Title,
		"start_time":   m.StartTime,
		"end_time":     m.EndTime,
		"location":     m.Location,
		"attendee_ids": uuidStrings(m.AttendeeIDs),
		"type":         string(m.Type),
		"status":       string(m.Status),
	}
}

func scanMeeting(s scanner) (domain.Meeting, error) {
	var (
		m         domain.Meeting
		id        pgtype.UUID
		attendees []string
		typ       string
		status    string
	)
	err := s.Scan(&id, &m.Title, &m.StartTime, &m.EndTime, &m.Location, &attendees,
		&typ, &status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Meeting{}, domain.ErrNotFound
		}
		return domain.Meeting{}, err
	}

	m.ID = uuid.UUID(id.Bytes)
	m.Type = domain.MeetingType(typ)
	m.Status = domain.MeetingStatus(status)
	if m.AttendeeIDs, err = parseUUIDs(attendees); err != nil {
		return domain.Meeting{}, err
	}
	return m, nil
}
