package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkordes/tripmatch/internal/domain"
	"github.com/pkordes/tripmatch/internal/repo"
	"github.com/pkordes/tripmatch/internal/service"
)

// dataset is the on-disk shape read by --data. Records use the domain JSON
// field names; timestamps are RFC 3339.
type dataset struct {
	Contacts []domain.Contact `json:"contacts"`
	Meetings []domain.Meeting `json:"meetings"`
	Trips    []domain.Trip    `json:"trips"`
}

// app is the service graph a command runs against.
type app struct {
	correlation *service.CorrelationService
}

// loadApp reads the dataset at path into a fresh memory store through the
// services, so every record is validated the same way the API validates it.
func loadApp(ctx context.Context, path string) (*app, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}

	store := repo.NewMemoryStore()
	contacts := service.NewContactService(store.Contacts())
	meetings := service.NewMeetingService(store.Meetings(), store.Contacts(), store)
	trips := service.NewTripService(store.Trips(), store)

	for i, c := range ds.Contacts {
		if _, err := contacts.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("contacts[%d]: %w", i, err)
		}
	}
	for i, m := range ds.Meetings {
		if _, err := meetings.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("meetings[%d] %q: %w", i, m.Title, err)
		}
	}
	for i, t := range ds.Trips {
		if _, err := trips.Create(ctx, t); err != nil {
			return nil, fmt.Errorf("trips[%d] %q: %w", i, t.Title, err)
		}
	}

	return &app{
		correlation: service.NewCorrelationService(store.Meetings(), store.Trips(), store, nil),
	}, nil
}
