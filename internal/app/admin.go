package app

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func (app *application) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest

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

	// An unset admin password disables the admin API rather than opening it.
	if app.config.admin.passwordHash == "" {
		app.unauthorizedResponse(w, r)
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(app.config.admin.passwordHash), []byte(req.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			app.unauthorizedResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.sessionManager.Put(r.Context(), SessionKeyAdmin.String(), true)

	app.writeJSON(w, http.StatusOK, map[string]string{"status": "logged in"}, nil)
}

func (app *application) AdminLogoutHandler(w http.ResponseWriter, r *http.Request) {
	app.sessionManager.Remove(r.Context(), SessionKeyAdmin.String())

	err := app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"}, nil)
}

func (app *application) ListPriceRulesHandler(w http.ResponseWriter, r *http.Request) {
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

	resp := make([]PriceRuleResponse, 0, len(areas))
	for _, area := range areas {
		resp = append(resp, toPriceRuleResponse(area))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CreatePriceRuleHandler creates a pricing rule from an explicit seat list.
// Rules are create/delete only; changing one means replacing it.
func (app *application) CreatePriceRuleHandler(w http.ResponseWriter, r *http.Request) {
	eventId, err := app.readUUIDParam(r, "eventId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var req CreatePriceRuleRequest

	err = app.readJSON(w, r, &req)
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

	saleStatus := domain.SaleStatus(req.SaleStatus)
	if saleStatus == "" {
		saleStatus = domain.SaleStatusForSale
	}

	if saleStatus == domain.SaleStatusForSale && req.Price == nil {
		app.failedValidationFieldsResponse(w, r, []ValidationError{
			{Field: "price", Issue: "is required for rules that put seats on sale"},
		})
		return
	}

	if req.Price != nil && req.Price.IsNegative() {
		app.failedValidationFieldsResponse(w, r, []ValidationError{
			{Field: "price", Issue: "must not be negative"},
		})
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

	// Canonicalize the seat tokens so the selector matches whichever dashed
	// or spaced form the admin typed.
	seats := make([]string, 0, len(req.Seats))
	for _, token := range req.Seats {
		seat, err := domain.ParseSeatID(token)
		if err != nil {
			app.failedValidationFieldsResponse(w, r, []ValidationError{
				{Field: token, Issue: "must be a valid seat identifier"},
			})
			return
		}

		seats = append(seats, seat.String())
	}

	selectors, err := json.Marshal(struct {
		Seats []string `json:"seats"`
	}{Seats: seats})
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	var price decimal.NullDecimal
	if req.Price != nil {
		price = decimal.NewNullDecimal(*req.Price)
	}

	area := &domain.PriceArea{
		EventID:    eventId,
		Name:       req.Name,
		Selectors:  string(selectors),
		SaleStatus: saleStatus,
		Price:      price,
		Priority:   req.Priority,
		Color:      req.Color,
	}

	err = app.priceAreaRepo.Create(r.Context(), area)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toPriceRuleResponse(*area), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) DeletePriceRuleHandler(w http.ResponseWriter, r *http.Request) {
	ruleId, err := app.readUUIDParam(r, "ruleId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.priceAreaRepo.Delete(r.Context(), ruleId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
