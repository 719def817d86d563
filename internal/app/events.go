package app

import (
	"errors"
	"net/http"

	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

func (app *application) ListEventsHandler(w http.ResponseWriter, r *http.Request) {
	events, err := app.eventRepo.GetUpcoming(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, toEventResponse(event))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetEventHandler(w http.ResponseWriter, r *http.Request) {
	eventId, err := app.readUUIDParam(r, "eventId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	event, err := app.eventRepo.GetByIdWithPriceAreas(r.Context(), eventId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toEventResponse(*event)
	resp.PriceAreas = make([]PriceRuleResponse, 0, len(event.PriceAreas))
	for _, area := range event.PriceAreas {
		resp.PriceAreas = append(resp.PriceAreas, toPriceRuleResponse(area))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toEventResponse(event domain.Event) EventResponse {
	return EventResponse{
		Id:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		StartDate:   event.StartDate,
		EndDate:     event.EndDate,
		Location:    event.Location,
		Image:       event.Image,
	}
}

func toPriceRuleResponse(area domain.PriceArea) PriceRuleResponse {
	resp := PriceRuleResponse{
		Id:         area.ID,
		EventId:    area.EventID,
		Name:       area.Name,
		Selectors:  area.Selectors,
		SaleStatus: area.SaleStatus,
		Priority:   area.Priority,
		Color:      area.Color,
		CreatedAt:  area.CreatedAt,
	}

	if area.Price.Valid {
		price := area.Price.Decimal
		resp.Price = &price
	}

	return resp
}
