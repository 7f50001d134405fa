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

// ContactRepo defines the persistence operations for Contacts.
type ContactRepo interface {
	// Create inserts a new contact and returns the persisted record.
	// A zero ID is generated by the store.
	Create(ctx context.Context, c domain.Contact) (domain.Contact, error)

	// GetByID retrieves a single contact.
	// Returns domain.ErrNotFound if no contact with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Contact, error)

	// List returns all contacts ordered by name.
	List(ctx context.Context) ([]domain.Contact, error)
}

// pgContactRepo is the Postgres implementation of ContactRepo.
type pgContactRepo struct {
	db db
}

// NewContactRepo constructs a ContactRepo backed by the provided db connection.
func NewContactRepo(db db) ContactRepo {
	return &pgContactRepo{db: db}
}

func (r *pgContactRepo) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	const q = `
		INSERT INTO contacts (id, name, email, company)
		VALUES (COALESCE(@id, gen_random_uuid()), @name, @email, @company)
		RETURNING id, name, email, company, created_at`

	args := pgx.NamedArgs{
		"id":      nullableID(c.ID),
		"name":    c.Name,
		"email":   c.Email,
		"company": c.Company,
	}

	result, err := scanContact(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Contact{}, fmt.Errorf("repo.ContactRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgContactRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Contact, error) {
	const q = `
		SELECT id, name, email, company, created_at
		FROM contacts
		WHERE id = @id`

	result, err := scanContact(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Contact{}, fmt.Errorf("repo.ContactRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	const q = `
		SELECT id, name, email, company, created_at
		FROM contacts
		ORDER BY name, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ContactRepo.List: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ContactRepo.List: scan: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ContactRepo.List: rows: %w", err)
	}
	return contacts, nil
}

// nullableID maps uuid.Nil to NULL so the database generates the key.
func nullableID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func scanContact(s scanner) (domain.Contact, error) {
	var (
		c  domain.Contact
		id pgtype.UUID
	)
	if err := s.Scan(&id, &c.Name, &c.Email, &c.Company, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contact{}, domain.ErrNotFound
		}
		return domain.Contact{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}
