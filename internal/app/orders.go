package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

const orderConfirmationTemplate = "order_confirmation.tmpl"

// CreateOrderHandler books seats: it re-resolves every requested seat
// against the current pricing rules, freezes the resulting prices onto the
// order and takes one hold per seat, all or nothing. The client never
// supplies a price.
func (app *application) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			app.failedValidationResponse(w, r, validationErrors)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	event, err := app.eventRepo.GetByIdWithPriceAreas(r.Context(), req.EventId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	venueSeats, err := app.seatRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	knownSeats := make(map[string]bool, len(venueSeats))
	for _, seat := range venueSeats {
		knownSeats[seat.ID.String()] = true
	}

	items, seatErrors := app.resolveOrderSeats(req.Seats, event.PriceAreas, knownSeats)
	if len(seatErrors) > 0 {
		app.failedValidationFieldsResponse(w, r, seatErrors)
		return
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}

	publicToken, err := domain.GeneratePublicToken()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	order := &domain.Order{
		EventID:     event.ID,
		Email:       req.Email,
		FullName:    req.FullName,
		Phone:       req.Phone,
		Currency:    "ALL",
		TotalAmount: total,
		Status:      domain.OrderStatusPending,
		PublicToken: publicToken,
		Items:       items,
	}

	err = app.orderRepo.CreateWithHolds(r.Context(), order, app.config.holdDuration)
	if err != nil {
		if errors.Is(err, domain.ErrSeatsTaken) {
			app.seatsTakenResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := CreateOrderResponse{
		OrderId:     order.ID,
		PublicToken: order.PublicToken,
		RedirectUrl: app.paymentProvider.CheckoutURL(order, event),
		ExpiresAt:   time.Now().Add(app.config.holdDuration),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// resolveOrderSeats turns requested seat tokens into priced order items.
// Every problem is reported per seat, so the buyer sees the full picture in
// one round trip.
func (app *application) resolveOrderSeats(
	tokens []string,
	areas []domain.PriceArea,
	knownSeats map[string]bool) ([]domain.OrderItem, []ValidationError) {

	items := make([]domain.OrderItem, 0, len(tokens))
	seatErrors := make([]ValidationError, 0)
	seen := make(map[string]bool, len(tokens))

	for _, token := range tokens {
		seat, err := domain.ParseSeatID(token)
		if err != nil {
			seatErrors = append(seatErrors, ValidationError{Field: token, Issue: "must be a valid seat identifier"})
			continue
		}

		canonical := seat.String()

		if seen[canonical] {
			seatErrors = append(seatErrors, ValidationError{Field: token, Issue: "is requested more than once"})
			continue
		}
		seen[canonical] = true

		if !knownSeats[canonical] {
			seatErrors = append(seatErrors, ValidationError{Field: token, Issue: "is not a seat in this venue"})
			continue
		}

		seatPrice := domain.ResolvePrice(seat, areas, app.logger)

		if seatPrice.Status != domain.SaleStatusForSale || !seatPrice.Price.Valid {
			seatErrors = append(seatErrors, ValidationError{Field: token, Issue: "is not for sale"})
			continue
		}

		items = append(items, domain.OrderItem{
			SeatID:    canonical,
			SeatLabel: seat.Label(),
			Price:     seatPrice.Price.Decimal,
		})
	}

	return items, seatErrors
}

// authorizeOrder loads an order and checks the public access token from the
// "t" query parameter. The token is the sole authorization for buyer-facing
// order access; there is no session fallback.
func (app *application) authorizeOrder(w http.ResponseWriter, r *http.Request) *domain.Order {
	orderId, err := app.readUUIDParam(r, "orderId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return nil
	}

	token := r.URL.Query().Get("t")
	if token == "" {
		app.unauthorizedResponse(w, r)
		return nil
	}

	order, err := app.orderRepo.GetByIdWithItems(r.Context(), orderId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return nil
		}

		app.serverErrorResponse(w, r, err)
		return nil
	}

	if !order.MatchesToken(token) {
		app.forbiddenResponse(w, r)
		return nil
	}

	return order
}

func (app *application) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	order := app.authorizeOrder(w, r)
	if order == nil {
		return
	}

	err := app.writeJSON(w, http.StatusOK, app.toOrderResponse(order), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// toOrderResponse builds the sanitized buyer view: items and status, never
// the lock rows or the email bookkeeping.
func (app *application) toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			SeatLabel: item.SeatLabel,
			Price:     item.Price,
		})
	}

	return OrderResponse{
		Id:          order.ID,
		EventId:     order.EventID,
		Status:      order.Status,
		Currency:    order.Currency,
		TotalAmount: order.TotalAmount,
		Items:       items,
		PaidAt:      order.PaidAt,
		CreatedAt:   order.CreatedAt,
		Links: OrderLinks{
			Tickets:  app.orderArtifactURL(order, "tickets"),
			Calendar: app.orderArtifactURL(order, "calendar"),
		},
	}
}

func (app *application) orderArtifactURL(order *domain.Order, artifact string) string {
	return fmt.Sprintf("%s/orders/%s/%s?t=%s", app.config.siteURL, order.ID, artifact, order.PublicToken)
}

func (app *application) GetOrderTicketsHandler(w http.ResponseWriter, r *http.Request) {
	order := app.authorizeOrder(w, r)
	if order == nil {
		return
	}

	event, err := app.eventRepo.GetById(r.Context(), order.EventID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", event.Title)
	fmt.Fprintf(&sb, "%s\n", event.StartDate.Format("Monday, 2 January 2006 at 15:04"))
	fmt.Fprintf(&sb, "%s\n\n", event.Location)
	fmt.Fprintf(&sb, "Order %s\n", order.ID)
	fmt.Fprintf(&sb, "Status: %s\n\n", order.Status)

	for _, item := range order.Items {
		fmt.Fprintf(&sb, "Seat %-24s %s %s\n", item.SeatLabel, item.Price.StringFixed(2), order.Currency)
	}

	fmt.Fprintf(&sb, "\nTotal: %s %s\n", order.TotalAmount.StringFixed(2), order.Currency)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tickets-%s.txt"`, order.ID))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sb.String()))
}

func (app *application) GetOrderCalendarHandler(w http.ResponseWriter, r *http.Request) {
	order := app.authorizeOrder(w, r)
	if order == nil {
		return
	}

	event, err := app.eventRepo.GetById(r.Context(), order.EventID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	seatLabels := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		seatLabels = append(seatLabels, item.SeatLabel)
	}

	var sb strings.Builder

	writeICSLine := func(line string) {
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}

	writeICSLine("BEGIN:VCALENDAR")
	writeICSLine("VERSION:2.0")
	writeICSLine("PRODID:-//teatri.al//theatre-ticketing//EN")
	writeICSLine("BEGIN:VEVENT")
	writeICSLine("UID:" + order.ID.String() + "@teatri.al")
	writeICSLine("DTSTAMP:" + time.Now().UTC().Format("20060102T150405Z"))
	writeICSLine("DTSTART:" + event.StartDate.UTC().Format("20060102T150405Z"))
	writeICSLine("DTEND:" + event.EndDate.UTC().Format("20060102T150405Z"))
	writeICSLine("SUMMARY:" + escapeICS(event.Title))
	writeICSLine("LOCATION:" + escapeICS(event.Location))
	writeICSLine("DESCRIPTION:" + escapeICS("Seats: "+strings.Join(seatLabels, ", ")))
	writeICSLine("END:VEVENT")
	writeICSLine("END:VCALENDAR")

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="event-%s.ics"`, order.ID))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sb.String()))
}

func escapeICS(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)

	return replacer.Replace(s)
}

func (app *application) ResendOrderEmailHandler(w http.ResponseWriter, r *http.Request) {
	order := app.authorizeOrder(w, r)
	if order == nil {
		return
	}

	if order.Status != domain.OrderStatusPaid {
		app.errorResponse(w, r, http.StatusConflict, "The order has not been paid yet")
		return
	}

	event, err := app.eventRepo.GetById(r.Context(), order.EventID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.background(func() {
		app.sendOrderConfirmation(order, event)
	})

	app.writeJSON(w, http.StatusAccepted, map[string]string{"status": "email queued"}, nil)
}

type confirmationSeat struct {
	Label string
	Price string
}

// sendOrderConfirmation delivers the confirmation email and records the
// outcome on the order. It runs outside any request, so failures are logged
// and stored rather than surfaced; payment reconciliation never depends on
// email delivery.
func (app *application) sendOrderConfirmation(order *domain.Order, event *domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seats := make([]confirmationSeat, 0, len(order.Items))
	for _, item := range order.Items {
		seats = append(seats, confirmationSeat{
			Label: item.SeatLabel,
			Price: item.Price.StringFixed(2),
		})
	}

	data := map[string]any{
		"FullName":    order.FullName,
		"OrderID":     order.ID.String(),
		"EventTitle":  event.Title,
		"EventDate":   event.StartDate.Format("Monday, 2 January 2006 at 15:04"),
		"Location":    event.Location,
		"Seats":       seats,
		"Total":       order.TotalAmount.StringFixed(2),
		"Currency":    order.Currency,
		"TicketsURL":  app.orderArtifactURL(order, "tickets"),
		"CalendarURL": app.orderArtifactURL(order, "calendar"),
	}

	err := app.mailer.Send(order.Email, orderConfirmationTemplate, data)
	if err != nil {
		app.logger.Error("failed to send order confirmation", "order_id", order.ID, "error", err)

		if dbErr := app.orderRepo.RecordEmailError(ctx, order.ID, err.Error()); dbErr != nil {
			app.logger.Error("failed to record email error", "order_id", order.ID, "error", dbErr)
		}
		return
	}

	if dbErr := app.orderRepo.MarkEmailSent(ctx, order.ID, time.Now()); dbErr != nil {
		app.logger.Error("failed to mark email as sent", "order_id", order.ID, "error", dbErr)
	}
}
