package app

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

// PaymentNotificationHandler receives the hash-signed 2Checkout notification
// variant. A bad signature is rejected before anything is touched; a valid
// one is applied idempotently and always acknowledged with 200, so the
// provider stops redelivering.
func (app *application) PaymentNotificationHandler(w http.ResponseWriter, r *http.Request) {
	params, err := notificationParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	notification, err := app.paymentProvider.ParseNotification(params)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			app.logger.Warn("rejected payment notification with bad signature", "uri", r.URL.RequestURI())
		}

		app.badRequestResponse(w, r, err)
		return
	}

	err = app.applyPaymentNotification(r.Context(), notification)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeJSON(w, http.StatusOK, map[string]string{"status": "processed"}, nil)
}

// PaymentIPNHandler receives the REFNO-vocabulary IPN variant. The provider
// expects a signed XML acknowledgment of the same shape it sent; without it
// the IPN is considered undelivered and retried.
func (app *application) PaymentIPNHandler(w http.ResponseWriter, r *http.Request) {
	params, err := notificationParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	notification, err := app.paymentProvider.ParseIPN(params)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.applyPaymentNotification(r.Context(), notification)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(app.paymentProvider.SignIPNResponse(params, time.Now())))
}

// applyPaymentNotification maps a verified notification onto the order. The
// operation is safe to repeat: promoting an already-paid order changes
// nothing, and an unknown order id is acknowledged and logged rather than
// bounced back into the provider's retry loop.
func (app *application) applyPaymentNotification(ctx context.Context, n *domain.PaymentNotification) error {
	orderId, err := uuid.Parse(n.MerchantOrderID)
	if err != nil {
		app.logger.Warn("payment notification for unparseable order id", "merchant_order_id", n.MerchantOrderID)
		return nil
	}

	order, err := app.orderRepo.GetByIdWithItems(ctx, orderId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.logger.Warn("payment notification for unknown order", "order_id", orderId)
			return nil
		}

		return err
	}

	switch n.Outcome {
	case domain.OutcomePaid:
		if order.Status == domain.OrderStatusPaid {
			return nil
		}

		err = app.orderRepo.PromoteToSold(ctx, order.ID, n.ProviderRef)
		if err != nil {
			return err
		}

		app.logger.Info("order paid", "order_id", order.ID, "provider_ref", n.ProviderRef)

		event, err := app.eventRepo.GetById(ctx, order.EventID)
		if err != nil {
			app.logger.Error("failed to load event for confirmation email", "order_id", order.ID, "error", err)
			return nil
		}

		app.background(func() {
			app.sendOrderConfirmation(order, event)
		})

	case domain.OutcomeFailed:
		if order.Status == domain.OrderStatusFailed {
			return nil
		}

		app.logger.Info("order payment failed", "order_id", order.ID, "provider_ref", n.ProviderRef)

		return app.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusFailed)

	case domain.OutcomeRefunded:
		if order.Status == domain.OrderStatusRefunded {
			return nil
		}

		app.logger.Info("order refunded", "order_id", order.ID, "provider_ref", n.ProviderRef)

		return app.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderStatusRefunded)
	}

	return nil
}

// notificationParams flattens the request payload into provider parameters.
// The provider posts form-encoded bodies by default and JSON for some account
// configurations; both carry the same flat key/value set. For repeated form
// keys the first value wins.
func notificationParams(r *http.Request) (map[string]string, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mediaType == "application/json" {
		return decodeJSONParams(r)
	}

	err = r.ParseForm()
	if err != nil {
		return nil, err
	}

	params := make(map[string]string, len(r.Form))
	for key, values := range r.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	return params, nil
}

func decodeJSONParams(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	err := dec.Decode(&raw)
	if err != nil {
		return nil, err
	}

	params := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			params[key] = v
		case json.Number:
			params[key] = v.String()
		case bool:
			if v {
				params[key] = "true"
			} else {
				params[key] = "false"
			}
		case nil:
			params[key] = ""
		}
	}

	return params, nil
}
