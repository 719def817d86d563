package domain

import "time"

// PaymentOutcome is the internal reading of a provider notification.
type PaymentOutcome string

const (
	OutcomePaid     PaymentOutcome = "PAID"
	OutcomeFailed   PaymentOutcome = "FAILED"
	OutcomeRefunded PaymentOutcome = "REFUNDED"
	// OutcomeNone means the notification carries no status transition for
	// us (e.g. an intermediate provider state); it is acknowledged but
	// changes nothing.
	OutcomeNone PaymentOutcome = "NONE"
)

// PaymentNotification is a verified, decoded provider notification.
type PaymentNotification struct {
	MerchantOrderID string
	ProviderRef     string
	Outcome         PaymentOutcome
	Params          map[string]string
}

// PaymentProvider abstracts the hosted checkout collaborator: building the
// redirect URL and decoding its asynchronous notifications. Notifications
// may be redelivered; callers must apply them idempotently.
type PaymentProvider interface {
	// CheckoutURL builds the hosted purchase page redirect for an order.
	CheckoutURL(order *Order, event *Event) string

	// ParseNotification verifies the hash-signed notification variant and
	// maps it to an internal outcome. Returns ErrInvalidSignature when the
	// signature does not verify; no caller state may change in that case.
	ParseNotification(params map[string]string) (*PaymentNotification, error)

	// ParseIPN decodes the REFNO-vocabulary IPN variant, which is
	// acknowledged with a signed XML response rather than hash-verified.
	ParseIPN(params map[string]string) (*PaymentNotification, error)

	// SignIPNResponse builds the XML acknowledgment the provider expects
	// for the ParseIPN variant.
	SignIPNResponse(params map[string]string, now time.Time) string
}
