package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

// GetEventSeatsHandler renders the full seat map for an event: every venue
// seat with its resolved pricing outcome, overlaid with the live lock state.
// An active lock always wins over whatever the pricing rules say.
func (app *application) GetEventSeatsHandler(w http.ResponseWriter, r *http.Request) {
	eventId, err := app.readUUIDParam(r, "eventId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	_, err = app.eventRepo.GetById(r.Context(), eventId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	areas, err := app.priceAreaRepo.GetByEventId(r.Context(), eventId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	seats, err := app.seatRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	now := time.Now()

	locks, err := app.orderRepo.GetActiveLocksByEvent(r.Context(), eventId, now)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	lockBySeat := make(map[string]domain.LockStatus, len(locks))
	for _, lock := range locks {
		lockBySeat[lock.SeatID] = lock.Status
	}

	resp := SeatMapResponse{
		EventId: eventId,
		Seats:   make([]SeatMapSeat, 0, len(seats)),
	}

	for _, seat := range seats {
		seatPrice := domain.ResolvePrice(seat.ID, areas, app.logger)

		mapSeat := SeatMapSeat{
			Id:       seat.ID.String(),
			Section:  seat.ID.Section,
			Row:      seat.ID.Row,
			Number:   seat.ID.Number,
			X:        seat.X,
			Y:        seat.Y,
			Status:   availabilityStatus(seatPrice, lockBySeat[seat.ID.String()]),
			AreaName: seatPrice.AreaName,
			Color:    seatPrice.Color,
		}

		if seatPrice.Price.Valid {
			price := seatPrice.Price.Decimal
			mapSeat.Price = &price
		}

		resp.Seats = append(resp.Seats, mapSeat)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func availabilityStatus(seatPrice domain.SeatPrice, lock domain.LockStatus) SeatStatus {
	switch lock {
	case domain.LockStatusSold:
		return SeatStatusSold
	case domain.LockStatusHeld:
		return SeatStatusHeld
	}

	switch seatPrice.Status {
	case domain.SaleStatusForSale:
		return SeatStatusAvailable
	case domain.SaleStatusAdminReserved:
		return SeatStatusAdminReserved
	default:
		return SeatStatusNotForSale
	}
}
