package integration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

type OrdersIntegrationSuite struct {
	BaseSuite
}

func TestOrdersIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(OrdersIntegrationSuite))
}

// Racing holds on the same seat must produce exactly one winner; the unique
// index over active locks is the arbiter.
func (s *OrdersIntegrationSuite) TestConcurrentHoldsHaveSingleWinner() {
	event := s.createEvent()
	ctx := context.Background()

	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order := s.newOrder(event.ID, "C-4")
			errs[i] = s.orderRepo.CreateWithHolds(ctx, order, 10*time.Minute)
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			s.ErrorIs(err, domain.ErrSeatsTaken)
		}
	}

	s.Equal(1, winners)

	locks, err := s.orderRepo.GetActiveLocksByEvent(ctx, event.ID, time.Now())
	s.Require().NoError(err)
	s.Require().Len(locks, 1)
	s.Equal("C-4", locks[0].SeatID)
	s.Equal(domain.LockStatusHeld, locks[0].Status)
}

// An order whose items overlap an active hold fails atomically, including
// the seats that were free.
func (s *OrdersIntegrationSuite) TestOverlappingHoldRollsBackEntireOrder() {
	event := s.createEvent()
	ctx := context.Background()

	first := s.newOrder(event.ID, "C-4")
	s.Require().NoError(s.orderRepo.CreateWithHolds(ctx, first, 10*time.Minute))

	second := s.newOrder(event.ID, "C-4", "C-5")
	err := s.orderRepo.CreateWithHolds(ctx, second, 10*time.Minute)
	s.Require().ErrorIs(err, domain.ErrSeatsTaken)

	locks, err := s.orderRepo.GetActiveLocksByEvent(ctx, event.ID, time.Now())
	s.Require().NoError(err)
	s.Require().Len(locks, 1, "C-5 must not stay locked after the rollback")
	s.Equal("C-4", locks[0].SeatID)
}

// An expired hold does not block the seat even before the sweep runs; the
// hold attempt reclaims it in its own transaction.
func (s *OrdersIntegrationSuite) TestExpiredHoldIsReclaimedByNewOrder() {
	event := s.createEvent()
	ctx := context.Background()

	abandoned := s.newOrder(event.ID, "C-4")
	s.Require().NoError(s.orderRepo.CreateWithHolds(ctx, abandoned, -time.Minute))

	fresh := s.newOrder(event.ID, "C-4")
	s.Require().NoError(s.orderRepo.CreateWithHolds(ctx, fresh, 10*time.Minute))

	got, err := s.orderRepo.GetByIdWithItems(ctx, abandoned.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Locks, 1)
	s.Equal(domain.LockStatusReleased, got.Locks[0].Status)
}

func (s *OrdersIntegrationSuite) TestSweepExpiresAbandonedOrders() {
	event := s.createEvent()
	ctx := context.Background()

	abandoned := s.newOrder(event.ID, "C-4", "C-5")
	s.Require().NoError(s.orderRepo.CreateWithHolds(ctx, abandoned, -time.Minute))

	live := s.newOrder(event.ID, "C-6")
	s.Require().NoError(s.orderRepo.CreateWithHolds(ctx, live, 10*time.Minute))

	result, err := s.orderRepo.ReleaseExpired(ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(int64(2), result.LocksReleased)
	s.Equal(int64(1), result.OrdersExpired)

	got, err := s.orderRepo.GetByIdWithItems(ctx, abandoned.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusExpired, got.Status)

	// The unexpired hold rides through the same pass untouched.
	got, err = s.orderRepo.GetByIdWithItems(ctx, live.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPending, got.Status)
	s.Require().Len(got.Locks, 1)
	s.Equal(domain.LockStatusHeld, got.Locks[0].Status)

	// A second pass finds nothing left to reclaim.
	result, err = s.orderRepo.ReleaseExpired(ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(int64(0), result.LocksReleased)
	s.Equal(int64(0), result.OrdersExpired)
}

// Promotion is idempotent: the first payment reference and timestamp stick,
// and SOLD locks survive the sweep regardless of their expiry.
func (s *OrdersIntegrationSuite) TestPromoteToSoldIsIdempotent() {
	event := s.createEvent()
	ctx := context.Background()

	order := s.newOrder(event.ID, "C-4")
	s.Require().NoError(s.orderRepo.CreateWithHolds(ctx, order, -time.Minute))

	s.Require().NoError(s.orderRepo.PromoteToSold(ctx, order.ID, "ref-first"))

	paid, err := s.orderRepo.GetByIdWithItems(ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPaid, paid.Status)
	s.Require().NotNil(paid.PaymentRef)
	s.Equal("ref-first", *paid.PaymentRef)
	s.Require().NotNil(paid.PaidAt)

	s.Require().NoError(s.orderRepo.PromoteToSold(ctx, order.ID, "ref-second"))

	again, err := s.orderRepo.GetByIdWithItems(ctx, order.ID)
	s.Require().NoError(err)
	s.Equal("ref-first", *again.PaymentRef)
	s.True(paid.PaidAt.Equal(*again.PaidAt))

	// The lock's expiry is in the past, but a sold seat never comes back.
	result, err := s.orderRepo.ReleaseExpired(ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(int64(0), result.LocksReleased)
	s.Equal(int64(0), result.OrdersExpired)

	locks, err := s.orderRepo.GetActiveLocksByEvent(ctx, event.ID, time.Now())
	s.Require().NoError(err)
	s.Require().Len(locks, 1)
	s.Equal(domain.LockStatusSold, locks[0].Status)
}

func (s *OrdersIntegrationSuite) TestActiveLocksExcludeExpiredHolds() {
	event := s.createEvent()
	ctx := context.Background()

	live := s.newOrder(event.ID, "C-4")
	s.Require().NoError(s.orderRepo.CreateWithHolds(ctx, live, 10*time.Minute))

	stale := s.newOrder(event.ID, "C-5")
	s.Require().NoError(s.orderRepo.CreateWithHolds(ctx, stale, -time.Minute))

	locks, err := s.orderRepo.GetActiveLocksByEvent(ctx, event.ID, time.Now())
	s.Require().NoError(err)
	s.Require().Len(locks, 1)
	s.Equal("C-4", locks[0].SeatID)
}
