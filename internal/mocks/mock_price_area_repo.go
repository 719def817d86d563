package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type MockPriceAreaRepo struct {
	domain.PriceAreaRepository
	GetByEventIdFunc func(ctx context.Context, eventID uuid.UUID) ([]domain.PriceArea, error)
	CreateFunc       func(ctx context.Context, area *domain.PriceArea) error
	DeleteFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *MockPriceAreaRepo) GetByEventId(ctx context.Context, eventID uuid.UUID) ([]domain.PriceArea, error) {
	return m.GetByEventIdFunc(ctx, eventID)
}

func (m *MockPriceAreaRepo) Create(ctx context.Context, area *domain.PriceArea) error {
	return m.CreateFunc(ctx, area)
}

func (m *MockPriceAreaRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}
