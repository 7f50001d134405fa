package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/repo"
)

// ContactService implements business logic for Contact operations.
type ContactService struct {
	contacts repo.ContactRepo
}

// NewContactService constructs a ContactService backed by the provided ContactRepo.
func NewContactService(contacts repo.ContactRepo) *ContactService {
	return &ContactService{contacts: contacts}
}

// Create validates and persists a new contact. Name and email are trimmed.
func (s *ContactService) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return domain.Contact{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return domain.Contact{}, fmt.Errorf("%w: email %q is not an address", domain.ErrValidation, c.Email)
	}
	result, err := s.contacts.Create(ctx, c)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("service.ContactService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single contact by ID.
func (s *ContactService) GetByID(ctx context.Context, id uuid.UUID) (domain.Contact, error) {
	result, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("service.ContactService.GetByID: %w", err)
	}
	return result, nil
}

// List returns all contacts ordered by name. Always returns a non-nil slice.
func (s *ContactService) List(ctx context.Context) ([]domain.Contact, error) {
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ContactService.List: %w", err)
	}
	if contacts == nil {
		return []domain.Contact{}, nil
	}
	return contacts, nil
}
