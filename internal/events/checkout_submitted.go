package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/pricing"
)

const (
	EventsExchange              = "ecommerce.events"
	CheckoutSubmittedRoutingKey = "checkout.submitted.v1"
	EventTypeCheckoutSubmitted  = "CheckoutSubmitted"
	checkoutSubmittedVersion    = 1
	checkoutSubmittedSchema     = "contracts/events/checkout/CheckoutSubmitted.v1.payload.schema.json"
	defaultProducer             = "storefront-go"
)

type CheckoutSubmittedPayload struct {
	UserID           string        `json:"userId"`
	OrderID          string        `json:"orderId,omitempty"`
	ProductIDs       []string      `json:"productIds"`
	ShippingMethodID int64         `json:"shippingMethodId"`
	VoucherID        int64         `json:"voucherId"`
	PaymentMethod    string        `json:"paymentMethod"`
	Subtotal         pricing.Money `json:"subtotal"`
	Discount         pricing.Money `json:"discount"`
	ShippingCost     pricing.Money `json:"shippingCost"`
	GrandTotal       pricing.Money `json:"grandTotal"`
	SubmittedAt      time.Time     `json:"submittedAt"`
}

type CheckoutSubmittedEvent = EventEnvelope[CheckoutSubmittedPayload]

// BuildCheckoutSubmittedEvent wraps payload, partitioned by user so one
// user's checkouts stay ordered.
func BuildCheckoutSubmittedEvent(payload CheckoutSubmittedPayload, opts EnvelopeOptions) (CheckoutSubmittedEvent, error) {
	if payload.UserID == "" {
		return CheckoutSubmittedEvent{}, fmt.Errorf("checkout submitted: missing userId")
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	producer := opts.Producer
	if producer == "" {
		producer = defaultProducer
	}
	occurred := now().UTC()
	if payload.SubmittedAt.IsZero() {
		payload.SubmittedAt = occurred
	}

	return CheckoutSubmittedEvent{
		EventName:     EventTypeCheckoutSubmitted,
		EventVersion:  checkoutSubmittedVersion,
		EventID:       uuid.NewString(),
		CorrelationID: opts.CorrelationID,
		CausationID:   opts.CausationID,
		Producer:      producer,
		PartitionKey:  payload.UserID,
		OccurredAt:    occurred,
		Schema:        checkoutSubmittedSchema,
		Payload:       payload,
	}, nil
}

func ValidateCheckoutSubmitted(ev CheckoutSubmittedEvent) error {
	return ev.Validate(EventTypeCheckoutSubmitted, checkoutSubmittedVersion)
}
