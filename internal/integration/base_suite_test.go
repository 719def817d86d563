package integration_test

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
	"github.com/teatri-al/theatre-ticketing/internal/repository"
	"github.com/testcontainers/testcontainers-go"
)

// BaseSuite boots one Postgres and one Redis container for the whole suite
// and wires the real repositories against them. Each test starts from empty
// tables; the seat layout is seeded once because it never changes.
type BaseSuite struct {
	suite.Suite
	dbContainer    *PostgresContainer
	cacheContainer *RedisContainer
	pool           *pgxpool.Pool

	eventRepo     *repository.PostgresEventRepository
	seatRepo      *repository.PostgresSeatRepository
	priceAreaRepo *repository.PostgresPriceAreaRepository
	orderRepo     *repository.PostgresOrderRepository
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := getDbContainer(ctx)
	s.Require().NoError(err, "failed to start DB container")

	redisContainer, err := getCacheContainer(ctx)
	s.Require().NoError(err, "failed to start cache container")

	s.dbContainer = postgresContainer
	s.cacheContainer = redisContainer

	pool, err := pgxpool.New(ctx, postgresContainer.ConnectionString)
	s.Require().NoError(err)
	s.pool = pool

	s.eventRepo = repository.NewPostgresEventRepository(pool)
	s.seatRepo = repository.NewPostgresSeatRepository(pool)
	s.priceAreaRepo = repository.NewPostgresPriceAreaRepository(pool)
	s.orderRepo = repository.NewPostgresOrderRepository(pool)

	err = s.seatRepo.CreateBatch(ctx, domain.DefaultLayout())
	s.Require().NoError(err)
}

func (s *BaseSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	if s.cacheContainer != nil {
		if err := testcontainers.TerminateContainer(s.cacheContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

func (s *BaseSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(),
		`TRUNCATE seat_locks, order_items, orders, price_areas, events CASCADE`)
	s.Require().NoError(err)
}

func (s *BaseSuite) createEvent() *domain.Event {
	start := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Hour)

	event := &domain.Event{
		Title:     TestEventTitle,
		StartDate: start,
		EndDate:   start.Add(3 * time.Hour),
		Location:  TestEventLocation,
	}

	err := s.eventRepo.Create(context.Background(), event)
	s.Require().NoError(err)

	return event
}

// newOrder builds a PENDING order for the given seats, priced at 1000 each.
func (s *BaseSuite) newOrder(eventID uuid.UUID, seats ...string) *domain.Order {
	token, err := domain.GeneratePublicToken()
	s.Require().NoError(err)

	items := make([]domain.OrderItem, 0, len(seats))
	for _, seat := range seats {
		items = append(items, domain.OrderItem{
			SeatID:    seat,
			SeatLabel: seat,
			Price:     decimal.NewFromInt(1000),
		})
	}

	return &domain.Order{
		EventID:     eventID,
		Email:       TestBuyerEmail,
		FullName:    TestBuyerName,
		Phone:       TestBuyerPhone,
		Currency:    "ALL",
		TotalAmount: decimal.NewFromInt(1000 * int64(len(seats))),
		Status:      domain.OrderStatusPending,
		PublicToken: token,
		Items:       items,
	}
}
