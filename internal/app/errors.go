package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	appvalidator "github.com/teatri-al/theatre-ticketing/internal/validator"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

const ErrInternalServer = "The server encountered a problem and could not process your request"

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource not found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.notFoundResponse(w, r)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// unauthorizedResponse covers both a missing access token and a bad admin
// password. The message stays generic on purpose.
func (app *application) unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	message := "Authentication is required to access this resource"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

// forbiddenResponse is used when a token is present but does not match; no
// detail about why is leaked.
func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	message := "You do not have access to this resource"
	app.errorResponse(w, r, http.StatusForbidden, message)
}

func (app *application) seatsTakenResponse(w http.ResponseWriter, r *http.Request) {
	message := "One or more of the selected seats are no longer available"
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errs validator.ValidationErrors) {
	validationErrors := make([]ValidationError, 0, len(errs))
	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field: err.Field(),
			Issue: appvalidator.ValidationMessage(err),
		})
	}

	resp := ValidationErrorResponse{
		Message:          "Validation failed",
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: validationErrors,
	}

	err := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// failedValidationFieldsResponse reports handler-built validation problems,
// e.g. seats that resolve as not sellable, in the same shape as field
// validation.
func (app *application) failedValidationFieldsResponse(w http.ResponseWriter, r *http.Request, fieldErrors []ValidationError) {
	resp := ValidationErrorResponse{
		Message:          "Validation failed",
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: fieldErrors,
	}

	err := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}
