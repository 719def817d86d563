package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type MockEventRepo struct {
	domain.EventRepository
	GetUpcomingFunc           func(ctx context.Context) ([]domain.Event, error)
	GetByIdFunc               func(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	GetByIdWithPriceAreasFunc func(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	CreateFunc                func(ctx context.Context, event *domain.Event) error
}

func (m *MockEventRepo) GetUpcoming(ctx context.Context) ([]domain.Event, error) {
	return m.GetUpcomingFunc(ctx)
}

func (m *MockEventRepo) GetById(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockEventRepo) GetByIdWithPriceAreas(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return m.GetByIdWithPriceAreasFunc(ctx, id)
}

func (m *MockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	return m.CreateFunc(ctx, event)
}
