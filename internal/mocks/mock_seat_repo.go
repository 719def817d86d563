package mocks

import (
	"context"

	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type MockSeatRepo struct {
	domain.SeatRepository
	GetAllFunc      func(ctx context.Context) ([]domain.Seat, error)
	CreateBatchFunc func(ctx context.Context, seats []domain.Seat) error
}

func (m *MockSeatRepo) GetAll(ctx context.Context) ([]domain.Seat, error) {
	return m.GetAllFunc(ctx)
}

func (m *MockSeatRepo) CreateBatch(ctx context.Context, seats []domain.Seat) error {
	return m.CreateBatchFunc(ctx, seats)
}
