package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type MockOrderRepo struct {
	domain.OrderRepository
	CreateWithHoldsFunc       func(ctx context.Context, order *domain.Order, holdDuration time.Duration) error
	GetByIdWithItemsFunc      func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetActiveLocksByEventFunc func(ctx context.Context, eventID uuid.UUID, now time.Time) ([]domain.SeatLock, error)
	PromoteToSoldFunc         func(ctx context.Context, orderID uuid.UUID, paymentRef string) error
	UpdateStatusFunc          func(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
	MarkEmailSentFunc         func(ctx context.Context, orderID uuid.UUID, sentAt time.Time) error
	RecordEmailErrorFunc      func(ctx context.Context, orderID uuid.UUID, message string) error
	ReleaseExpiredFunc        func(ctx context.Context, now time.Time) (domain.SweepResult, error)
}

func (m *MockOrderRepo) CreateWithHolds(ctx context.Context, order *domain.Order, holdDuration time.Duration) error {
	return m.CreateWithHoldsFunc(ctx, order, holdDuration)
}

func (m *MockOrderRepo) GetByIdWithItems(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return m.GetByIdWithItemsFunc(ctx, id)
}

func (m *MockOrderRepo) GetActiveLocksByEvent(ctx context.Context, eventID uuid.UUID, now time.Time) ([]domain.SeatLock, error) {
	return m.GetActiveLocksByEventFunc(ctx, eventID, now)
}

func (m *MockOrderRepo) PromoteToSold(ctx context.Context, orderID uuid.UUID, paymentRef string) error {
	return m.PromoteToSoldFunc(ctx, orderID, paymentRef)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	return m.UpdateStatusFunc(ctx, orderID, status)
}

func (m *MockOrderRepo) MarkEmailSent(ctx context.Context, orderID uuid.UUID, sentAt time.Time) error {
	return m.MarkEmailSentFunc(ctx, orderID, sentAt)
}

func (m *MockOrderRepo) RecordEmailError(ctx context.Context, orderID uuid.UUID, message string) error {
	return m.RecordEmailErrorFunc(ctx, orderID, message)
}

func (m *MockOrderRepo) ReleaseExpired(ctx context.Context, now time.Time) (domain.SweepResult, error) {
	return m.ReleaseExpiredFunc(ctx, now)
}
