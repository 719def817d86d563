// Package payment implements the hosted-checkout integration with
// 2Checkout: building the purchase redirect URL and decoding the two IPN
// variants the provider delivers.
package payment

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/teatri-al/theatre-ticketing/internal/domain"
)

const hostedCheckoutPath = "/checkout/purchase"

type Config struct {
	// SellerID is the 2Checkout account number ("sid" in the purchase URL).
	SellerID  string
	SecretKey string
	// BaseURL is the hosted checkout origin, e.g. https://www.2checkout.com
	// or the sandbox origin.
	BaseURL string
	// SiteURL is our own public origin, used for the buyer return links.
	SiteURL string
	// Sandbox adds the demo flag so the provider treats orders as tests.
	Sandbox bool
}

// TwoCheckout implements domain.PaymentProvider against the 2Checkout
// hosted checkout and its IPN contracts.
type TwoCheckout struct {
	config Config
}

func New(config Config) *TwoCheckout {
	return &TwoCheckout{config: config}
}

// CheckoutURL builds the hosted purchase page redirect for an order. The
// whole order travels as a single line item; the provider never sees
// individual seats.
func (t *TwoCheckout) CheckoutURL(order *domain.Order, event *domain.Event) string {
	returnURL := fmt.Sprintf("%s/orders/%s?t=%s", t.config.SiteURL, order.ID, order.PublicToken)

	params := url.Values{}
	params.Set("sid", t.config.SellerID)
	params.Set("mode", "2CO")

	params.Set("li_0_type", "product")
	params.Set("li_0_name", fmt.Sprintf("%s (order %s)", event.Title, order.ID))
	params.Set("li_0_price", order.TotalAmount.StringFixed(2))
	params.Set("li_0_quantity", "1")
	params.Set("li_0_tangible", "N")

	params.Set("merchant_order_id", order.ID.String())
	params.Set("currency_code", order.Currency)

	params.Set("card_holder_name", order.FullName)
	params.Set("email", order.Email)
	params.Set("phone", order.Phone)

	params.Set("x_receipt_link_url", returnURL)
	params.Set("x_cancel_url", returnURL)

	if t.config.Sandbox {
		params.Set("demo", "Y")
	}

	return t.config.BaseURL + hostedCheckoutPath + "?" + params.Encode()
}

// ParseNotification verifies and decodes the hash-signed notification
// variant. The signature is an uppercase hex MD5 over the sorted parameters
// (each key concatenated with its value, the signature fields excluded) with
// the secret key appended.
func (t *TwoCheckout) ParseNotification(params map[string]string) (*domain.PaymentNotification, error) {
	received := params["key"]
	if received == "" {
		received = params["hash"]
	}
	if received == "" {
		return nil, domain.ErrInvalidSignature
	}

	if !hmac.Equal([]byte(t.notificationHash(params)), []byte(strings.ToUpper(received))) {
		return nil, domain.ErrInvalidSignature
	}

	merchantOrderID := params["merchant_order_id"]
	if merchantOrderID == "" {
		merchantOrderID = params["vendor_order_id"]
	}
	if merchantOrderID == "" {
		return nil, errors.New("notification carries no merchant order id")
	}

	providerRef := firstNonEmpty(params["sale_id"], params["order_number"], params["invoice_id"])

	return &domain.PaymentNotification{
		MerchantOrderID: merchantOrderID,
		ProviderRef:     providerRef,
		Outcome:         notificationOutcome(params),
		Params:          params,
	}, nil
}

func (t *TwoCheckout) notificationHash(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "key" || k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(params[k])
	}
	sb.WriteString(t.config.SecretKey)

	sum := md5.Sum([]byte(sb.String()))

	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func notificationOutcome(params map[string]string) domain.PaymentOutcome {
	messageType := firstNonEmpty(params["message_type"], params["MESSAGE_TYPE"])
	invoiceStatus := params["invoice_status"]

	switch {
	case messageType == "ORDER_CREATED", invoiceStatus == "approved", invoiceStatus == "deposited":
		return domain.OutcomePaid
	case messageType == "REFUND_ISSUED":
		return domain.OutcomeRefunded
	case invoiceStatus == "declined":
		return domain.OutcomeFailed
	default:
		return domain.OutcomeNone
	}
}

// ParseIPN decodes the REFNO-vocabulary IPN variant. This variant is
// authenticated by the signed XML acknowledgment we return, not by an
// inbound hash, so there is no signature to verify here.
func (t *TwoCheckout) ParseIPN(params map[string]string) (*domain.PaymentNotification, error) {
	refNo := params["REFNO"]
	refNoExt := params["REFNOEXT"]
	orderStatus := params["ORDERSTATUS"]

	if refNo == "" || refNoExt == "" || orderStatus == "" {
		return nil, errors.New("IPN missing REFNO, REFNOEXT or ORDERSTATUS")
	}

	var outcome domain.PaymentOutcome
	switch orderStatus {
	case "PAYMENT_AUTHORIZED", "PAYMENT_RECEIVED", "COMPLETE":
		outcome = domain.OutcomePaid
	case "REFUNDED", "REVERSED", "CHARGEBACK":
		outcome = domain.OutcomeRefunded
	case "FAIL", "DENIED":
		outcome = domain.OutcomeFailed
	default:
		outcome = domain.OutcomeNone
	}

	return &domain.PaymentNotification{
		MerchantOrderID: refNoExt,
		ProviderRef:     refNo,
		Outcome:         outcome,
		Params:          params,
	}, nil
}

// SignIPNResponse builds the XML acknowledgment for the REFNO IPN variant:
// an HMAC-SHA256 over the length-prefixed first product id, first product
// name, IPN date and our response date, all in YmdHis UTC form.
func (t *TwoCheckout) SignIPNResponse(params map[string]string, now time.Time) string {
	date := now.UTC().Format("20060102150405")

	var sb strings.Builder
	for _, part := range []string{
		firstIPNValue(params, "IPN_PID"),
		firstIPNValue(params, "IPN_PNAME"),
		params["IPN_DATE"],
		date,
	} {
		fmt.Fprintf(&sb, "%d%s", len(part), part)
	}

	mac := hmac.New(sha256.New, []byte(t.config.SecretKey))
	mac.Write([]byte(sb.String()))
	signature := strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	return fmt.Sprintf(`<sig algo="sha256" date="%s">%s</sig>`, date, signature)
}

// firstIPNValue resolves the first element of an IPN array field, which
// arrives under a bracketed key depending on how the form was encoded.
func firstIPNValue(params map[string]string, field string) string {
	return firstNonEmpty(params[field+"[0]"], params[field+"[]"], params[field])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
