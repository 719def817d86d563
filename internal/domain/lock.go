package domain

import (
	"time"

	"github.com/google/uuid"
)

type LockStatus string

const (
	LockStatusHeld     LockStatus = "HELD"
	LockStatusSold     LockStatus = "SOLD"
	LockStatusReleased LockStatus = "RELEASED"
)

// SeatLock is a time-bounded reservation of one (event, seat) pair. The
// storage layer enforces that at most one lock per pair is HELD or SOLD at
// any time; RELEASED is terminal and frees the seat.
type SeatLock struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	SeatID    string // canonical seat token
	OrderID   uuid.UUID
	Status    LockStatus
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Active reports whether the lock still blocks the seat at the given time.
func (l SeatLock) Active(now time.Time) bool {
	switch l.Status {
	case LockStatusSold:
		return true
	case LockStatusHeld:
		return l.ExpiresAt.After(now)
	default:
		return false
	}
}
