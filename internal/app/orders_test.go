package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
	"github.com/teatri-al/theatre-ticketing/internal/mocks"
)

type OrdersTestSuite struct {
	suite.Suite
	app             *application
	eventRepo       *mocks.MockEventRepo
	seatRepo        *mocks.MockSeatRepo
	orderRepo       *mocks.MockOrderRepo
	paymentProvider *mocks.MockPaymentProvider
}

func (s *OrdersTestSuite) SetupTest() {
	s.eventRepo = new(mocks.MockEventRepo)
	s.seatRepo = new(mocks.MockSeatRepo)
	s.orderRepo = new(mocks.MockOrderRepo)
	s.paymentProvider = new(mocks.MockPaymentProvider)

	s.app = newTestApplication(func(a *application) {
		a.eventRepo = s.eventRepo
		a.seatRepo = s.seatRepo
		a.orderRepo = s.orderRepo
		a.paymentProvider = s.paymentProvider
	})
}

func TestOrdersSuite(t *testing.T) {
	suite.Run(t, new(OrdersTestSuite))
}

func testEvent() *domain.Event {
	return &domain.Event{
		ID:        uuid.New(),
		Title:     "Hamleti",
		StartDate: time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 10, 1, 22, 0, 0, 0, time.UTC),
		Location:  "Teatri Kombetar, Tirana",
		PriceAreas: []domain.PriceArea{
			{
				ID:         uuid.New(),
				Name:       "Premium",
				Selectors:  `{"rows":["A","B","C","D","E"]}`,
				SaleStatus: domain.SaleStatusForSale,
				Price:      decimal.NewNullDecimal(decimal.NewFromInt(1000)),
				Priority:   10,
			},
			{
				ID:         uuid.New(),
				Name:       "Standard",
				Selectors:  `{"rows":["F","G","H","J","K","L","M","N","P","Q","R"]}`,
				SaleStatus: domain.SaleStatusForSale,
				Price:      decimal.NewNullDecimal(decimal.NewFromInt(500)),
				Priority:   5,
			},
		},
	}
}

func (s *OrdersTestSuite) stubVenue(event *domain.Event) {
	s.eventRepo.GetByIdWithPriceAreasFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
		if id != event.ID {
			return nil, domain.ErrRecordNotFound
		}
		return event, nil
	}
	s.seatRepo.GetAllFunc = func(ctx context.Context) ([]domain.Seat, error) {
		return domain.DefaultLayout(), nil
	}
}

func validOrderRequest(eventId uuid.UUID, seats ...string) CreateOrderRequest {
	return CreateOrderRequest{
		EventId:  eventId,
		Seats:    seats,
		FullName: "Blerina Hoxha",
		Email:    "blerina@example.com",
		Phone:    "+355691234567",
	}
}

func (s *OrdersTestSuite) TestCreateOrder() {
	event := testEvent()

	tests := []struct {
		name           string
		request        CreateOrderRequest
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name: "should fail when email is missing",
			request: CreateOrderRequest{
				EventId:  event.ID,
				Seats:    []string{"C-4"},
				FullName: "Blerina Hoxha",
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name:           "should fail when a seat token is malformed",
			request:        validOrderRequest(event.ID, "C--4"),
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be a valid seat identifier",
		},
		{
			name:    "should fail when the event does not exist",
			request: validOrderRequest(uuid.New(), "C-4"),
			setupMocks: func() {
				s.stubVenue(event)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "should fail when a seat does not exist in the venue",
			request: validOrderRequest(event.ID, "A-999"),
			setupMocks: func() {
				s.stubVenue(event)
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is not a seat in this venue",
		},
		{
			name:    "should fail when a seat has no matching rule",
			request: validOrderRequest(event.ID, "Z-1"),
			setupMocks: func() {
				s.stubVenue(event)
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is not for sale",
		},
		{
			name:    "should fail when the same seat is requested twice",
			request: validOrderRequest(event.ID, "C-4", "C-4"),
			setupMocks: func() {
				s.stubVenue(event)
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is requested more than once",
		},
		{
			name:    "should return conflict when seats are already held",
			request: validOrderRequest(event.ID, "C-4", "C-5"),
			setupMocks: func() {
				s.stubVenue(event)
				s.orderRepo.CreateWithHoldsFunc = func(ctx context.Context, order *domain.Order, holdDuration time.Duration) error {
					return domain.ErrSeatsTaken
				}
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: "One or more of the selected seats are no longer available",
		},
		{
			name:    "should fail when the repository errors",
			request: validOrderRequest(event.ID, "C-4"),
			setupMocks: func() {
				s.stubVenue(event)
				s.orderRepo.CreateWithHoldsFunc = func(ctx context.Context, order *domain.Order, holdDuration time.Duration) error {
					return fmt.Errorf("database error")
				}
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/orders", tt.request)

			s.app.CreateOrderHandler(w, r)

			s.Equal(tt.wantStatus, w.Code)
			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}

func (s *OrdersTestSuite) TestCreateOrderFreezesResolvedPrices() {
	event := testEvent()
	s.stubVenue(event)

	var created *domain.Order
	s.orderRepo.CreateWithHoldsFunc = func(ctx context.Context, order *domain.Order, holdDuration time.Duration) error {
		order.ID = uuid.New()
		order.CreatedAt = time.Now()
		created = order
		return nil
	}

	s.paymentProvider.On("CheckoutURL", mock.Anything, mock.Anything).Return("https://pay.example.com/redirect")

	// C-4 resolves via Premium (1000), H-1 via Standard (500).
	w, r := executeRequest(s.T(), http.MethodPost, "/orders", validOrderRequest(event.ID, "C-4", "H-1"))

	s.app.CreateOrderHandler(w, r)

	s.Require().Equal(http.StatusCreated, w.Code)
	s.Require().NotNil(created)

	s.Equal(domain.OrderStatusPending, created.Status)
	s.True(created.TotalAmount.Equal(decimal.NewFromInt(1500)))
	s.Len(created.Items, 2)
	s.True(created.Items[0].Price.Equal(decimal.NewFromInt(1000)))
	s.True(created.Items[1].Price.Equal(decimal.NewFromInt(500)))
	s.NotEmpty(created.PublicToken)

	var resp CreateOrderResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Equal(created.ID, resp.OrderId)
	s.Equal("https://pay.example.com/redirect", resp.RedirectUrl)
	s.Equal(created.PublicToken, resp.PublicToken)
}

func newPaidOrder(eventId uuid.UUID) *domain.Order {
	return &domain.Order{
		ID:          uuid.New(),
		EventID:     eventId,
		Email:       "blerina@example.com",
		FullName:    "Blerina Hoxha",
		Currency:    "ALL",
		TotalAmount: decimal.NewFromInt(1500),
		Status:      domain.OrderStatusPaid,
		PublicToken: "a1b2c3d4",
		PaidAt:      ptr(time.Now()),
		CreatedAt:   time.Now(),
		Items: []domain.OrderItem{
			{SeatID: "C-4", SeatLabel: "C-4", Price: decimal.NewFromInt(1000)},
			{SeatID: "H-1", SeatLabel: "H-1", Price: decimal.NewFromInt(500)},
		},
	}
}

func (s *OrdersTestSuite) TestGetOrder() {
	event := testEvent()
	order := newPaidOrder(event.ID)

	s.orderRepo.GetByIdWithItemsFunc = func(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
		if id != order.ID {
			return nil, domain.ErrRecordNotFound
		}
		return order, nil
	}

	tests := []struct {
		name       string
		orderId    string
		token      string
		wantStatus int
	}{
		{
			name:       "should fail without a token",
			orderId:    order.ID.String(),
			token:      "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "should fail with a wrong token",
			orderId:    order.ID.String(),
			token:      "wrong-token",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "should fail for an unknown order",
			orderId:    uuid.New().String(),
			token:      order.PublicToken,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "should return the order with the right token",
			orderId:    order.ID.String(),
			token:      order.PublicToken,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			url := fmt.Sprintf("/orders/%s", tt.orderId)
			if tt.token != "" {
				url += "?t=" + tt.token
			}

			w, r := executeRequest(s.T(), http.MethodGet, url, nil)
			r = withURLParams(r, map[string]string{"orderId": tt.orderId})

			s.app.GetOrderHandler(w, r)

			s.Equal(tt.wantStatus, w.Code)
		})
	}
}

// The buyer view must not leak the access token or the lock rows.
func (s *OrdersTestSuite) TestGetOrderResponseIsSanitized() {
	event := testEvent()
	order := newPaidOrder(event.ID)
	order.Locks = []domain.SeatLock{
		{ID: uuid.New(), EventID: event.ID, SeatID: "C-4", OrderID: order.ID, Status: domain.LockStatusSold},
	}

	s.orderRepo.GetByIdWithItemsFunc = func(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
		return order, nil
	}

	w, r := executeRequest(s.T(), http.MethodGet, fmt.Sprintf("/orders/%s?t=%s", order.ID, order.PublicToken), nil)
	r = withURLParams(r, map[string]string{"orderId": order.ID.String()})

	s.app.GetOrderHandler(w, r)

	s.Require().Equal(http.StatusOK, w.Code)

	var raw map[string]any
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&raw))

	s.NotContains(raw, "publicToken")
	s.NotContains(raw, "locks")
	s.NotContains(raw, "email")
	s.Contains(raw, "items")
	s.Contains(raw, "links")
}

func (s *OrdersTestSuite) TestGetOrderTickets() {
	event := testEvent()
	order := newPaidOrder(event.ID)

	s.orderRepo.GetByIdWithItemsFunc = func(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
		return order, nil
	}
	s.eventRepo.GetByIdFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
		return event, nil
	}

	w, r := executeRequest(s.T(), http.MethodGet, fmt.Sprintf("/orders/%s/tickets?t=%s", order.ID, order.PublicToken), nil)
	r = withURLParams(r, map[string]string{"orderId": order.ID.String()})

	s.app.GetOrderTicketsHandler(w, r)

	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/plain")

	body := w.Body.String()
	s.Contains(body, "Hamleti")
	s.Contains(body, "C-4")
	s.Contains(body, "1500.00 ALL")
}

func (s *OrdersTestSuite) TestGetOrderCalendar() {
	event := testEvent()
	order := newPaidOrder(event.ID)

	s.orderRepo.GetByIdWithItemsFunc = func(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
		return order, nil
	}
	s.eventRepo.GetByIdFunc = func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
		return event, nil
	}

	w, r := executeRequest(s.T(), http.MethodGet, fmt.Sprintf("/orders/%s/calendar?t=%s", order.ID, order.PublicToken), nil)
	r = withURLParams(r, map[string]string{"orderId": order.ID.String()})

	s.app.GetOrderCalendarHandler(w, r)

	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "text/calendar")

	body := w.Body.String()
	s.Contains(body, "BEGIN:VCALENDAR")
	s.Contains(body, "SUMMARY:Hamleti")
	s.Contains(body, "DTSTART:20261001T190000Z")
	s.Contains(body, "END:VCALENDAR")
}

func (s *OrdersTestSuite) TestResendOrderEmailRequiresPaidOrder() {
	event := testEvent()
	order := newPaidOrder(event.ID)
	order.Status = domain.OrderStatusPending

	s.orderRepo.GetByIdWithItemsFunc = func(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
		return order, nil
	}

	w, r := executeRequest(s.T(), http.MethodPost, fmt.Sprintf("/orders/%s/resend-email?t=%s", order.ID, order.PublicToken), nil)
	r = withURLParams(r, map[string]string{"orderId": order.ID.String()})

	s.app.ResendOrderEmailHandler(w, r)

	s.Equal(http.StatusConflict, w.Code)
}
