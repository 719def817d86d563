package domain

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusFailed   OrderStatus = "FAILED"
	OrderStatusExpired  OrderStatus = "EXPIRED"
	OrderStatusRefunded OrderStatus = "REFUNDED"
)

// DefaultHoldDuration bounds how long an unpaid order keeps its seats.
const DefaultHoldDuration = 10 * time.Minute

const publicTokenBytes = 32

type Order struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	Email       string
	FullName    string
	Phone       string
	Currency    string
	TotalAmount decimal.Decimal
	Status      OrderStatus
	// PublicToken is the sole authorization for buyer-facing access to the
	// order; it never depends on a session or login.
	PublicToken    string
	PaymentRef     *string
	PaidAt         *time.Time
	EmailSentAt    *time.Time
	LastEmailError *string
	CreatedAt      time.Time

	Items []OrderItem
	Locks []SeatLock
}

// OrderItem freezes the seat and its price at booking time; later rule
// changes never alter an existing order.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	SeatID    string
	SeatLabel string
	Price     decimal.Decimal
}

// GeneratePublicToken returns a hex token with 32 bytes of entropy.
func GeneratePublicToken() (string, error) {
	randomBytes := make([]byte, publicTokenBytes)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(randomBytes), nil
}

// MatchesToken compares a presented token against the order's public token
// in constant time.
func (o *Order) MatchesToken(token string) bool {
	return subtle.ConstantTimeCompare([]byte(o.PublicToken), []byte(token)) == 1
}

// SweepResult reports what one expiry pass reclaimed.
type SweepResult struct {
	LocksReleased int64
	OrdersExpired int64
}

type OrderRepository interface {
	// CreateWithHolds persists the order, its items and one HELD lock per
	// seat as a single atomic unit. When any requested seat already has an
	// active lock the whole call fails with ErrSeatsTaken and nothing is
	// written.
	CreateWithHolds(ctx context.Context, order *Order, holdDuration time.Duration) error

	GetByIdWithItems(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetActiveLocksByEvent returns SOLD locks and HELD locks that have not
	// expired at the given time.
	GetActiveLocksByEvent(ctx context.Context, eventID uuid.UUID, now time.Time) ([]SeatLock, error)

	// PromoteToSold marks the order PAID and flips its HELD locks to SOLD.
	// Calling it for an order that is already PAID is a silent no-op.
	PromoteToSold(ctx context.Context, orderID uuid.UUID, paymentRef string) error

	UpdateStatus(ctx context.Context, orderID uuid.UUID, status OrderStatus) error

	MarkEmailSent(ctx context.Context, orderID uuid.UUID, sentAt time.Time) error
	RecordEmailError(ctx context.Context, orderID uuid.UUID, message string) error

	// ReleaseExpired flips expired HELD locks to RELEASED, then expires
	// PENDING orders whose every lock is RELEASED. Safe to run concurrently
	// with hold attempts and with itself.
	ReleaseExpired(ctx context.Context, now time.Time) (SweepResult, error)
}
