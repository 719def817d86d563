package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

// Transport types for the JSON API. Request types carry their validation
// rules as struct tags; response types are the sanitized views handlers are
// allowed to return.

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type EventResponse struct {
	Id          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	StartDate   time.Time           `json:"startDate"`
	EndDate     time.Time           `json:"endDate"`
	Location    string              `json:"location"`
	Image       string              `json:"image,omitempty"`
	PriceAreas  []PriceRuleResponse `json:"priceAreas,omitempty"`
}

// SeatStatus is the availability state a seat renders with on the map. The
// live lock overlay (SOLD, HELD) wins over the pricing status.
type SeatStatus string

const (
	SeatStatusAvailable     SeatStatus = "AVAILABLE"
	SeatStatusHeld          SeatStatus = "HELD"
	SeatStatusSold          SeatStatus = "SOLD"
	SeatStatusNotForSale    SeatStatus = "NOT_FOR_SALE"
	SeatStatusAdminReserved SeatStatus = "ADMIN_RESERVED"
)

type SeatMapSeat struct {
	Id       string           `json:"id"`
	Section  string           `json:"section"`
	Row      string           `json:"row,omitempty"`
	Number   string           `json:"number"`
	X        int              `json:"x"`
	Y        int              `json:"y"`
	Status   SeatStatus       `json:"status"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	AreaName string           `json:"areaName,omitempty"`
	Color    string           `json:"color,omitempty"`
}

type SeatMapResponse struct {
	EventId uuid.UUID     `json:"eventId"`
	Seats   []SeatMapSeat `json:"seats"`
}

type CreateOrderRequest struct {
	EventId  uuid.UUID `json:"eventId" validate:"required"`
	Seats    []string  `json:"seats" validate:"required,min=1,max=10,dive,seat_token"`
	FullName string    `json:"fullName" validate:"required,min=2,max=100"`
	Email    string    `json:"email" validate:"required,email"`
	Phone    string    `json:"phone" validate:"phone"`
}

type CreateOrderResponse struct {
	OrderId     uuid.UUID `json:"orderId"`
	PublicToken string    `json:"publicToken"`
	RedirectUrl string    `json:"redirectUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type OrderItemResponse struct {
	SeatLabel string          `json:"seatLabel"`
	Price     decimal.Decimal `json:"price"`
}

type OrderLinks struct {
	Tickets  string `json:"tickets"`
	Calendar string `json:"calendar"`
}

type OrderResponse struct {
	Id          uuid.UUID           `json:"id"`
	EventId     uuid.UUID           `json:"eventId"`
	Status      domain.OrderStatus  `json:"status"`
	Currency    string              `json:"currency"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	Items       []OrderItemResponse `json:"items"`
	PaidAt      *time.Time          `json:"paidAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	Links       OrderLinks          `json:"links"`
}

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type CreatePriceRuleRequest struct {
	Name       string           `json:"name" validate:"required,min=2,max=100"`
	Price      *decimal.Decimal `json:"price" validate:"omitempty"`
	Priority   int              `json:"priority" validate:"gte=0"`
	Seats      []string         `json:"seats" validate:"required,min=1,dive,seat_token"`
	SaleStatus string           `json:"saleStatus" validate:"omitempty,oneof=FOR_SALE NOT_FOR_SALE ADMIN_RESERVED"`
	Color      string           `json:"color" validate:"omitempty,max=32"`
}

type PriceRuleResponse struct {
	Id         uuid.UUID         `json:"id"`
	EventId    uuid.UUID         `json:"eventId"`
	Name       string            `json:"name"`
	Selectors  string            `json:"selectors"`
	SaleStatus domain.SaleStatus `json:"saleStatus"`
	Price      *decimal.Decimal  `json:"price,omitempty"`
	Priority   int               `json:"priority"`
	Color      string            `json:"color,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type SweepResponse struct {
	ReleasedLocks int64 `json:"releasedLocks"`
	ExpiredOrders int64 `json:"expiredOrders"`
}
