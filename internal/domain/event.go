package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Location    string
	Image       string
	CreatedAt   time.Time

	PriceAreas []PriceArea
}

type EventRepository interface {
	GetUpcoming(ctx context.Context) ([]Event, error)
	GetById(ctx context.Context, id uuid.UUID) (*Event, error)
	// GetByIdWithPriceAreas loads the event together with its pricing rules,
	// ordered by priority descending.
	GetByIdWithPriceAreas(ctx context.Context, id uuid.UUID) (*Event, error)
	Create(ctx context.Context, event *Event) error
}
